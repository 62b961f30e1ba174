package launch

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/agentic-research/rosgraph/api"
	"github.com/agentic-research/rosgraph/internal/meta"
)

// SyntaxError reports launch XML that could not be read.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("launch: line %d: %s", e.Line, e.Msg)
	}
	return "launch: " + e.Msg
}

// Parse reads roslaunch XML into an element tree. Known tags are replaced by
// their category names and attributes by their model names (an include's
// file becomes its name, and so on); unknown tags and attributes are kept as
// written. The root element must be <launch>.
func Parse(r io.Reader) (*api.Element, error) {
	dec := xml.NewDecoder(r)
	var (
		root  *api.Element
		stack []*api.Element
		text  []*strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return nil, &SyntaxError{Line: se.Line, Msg: se.Msg}
			}
			return nil, fmt.Errorf("launch: read: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := newElement(t)
			if len(stack) == 0 {
				if root != nil {
					return nil, &SyntaxError{Line: line(dec), Msg: "multiple root elements"}
				}
				if el.Tag != meta.LaunchFile.String() {
					return nil, &SyntaxError{Line: line(dec), Msg: fmt.Sprintf("root element is <%s>, want <launch>", t.Name.Local)}
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
			text = append(text, &strings.Builder{})
		case xml.EndElement:
			el := stack[len(stack)-1]
			if body := text[len(text)-1].String(); strings.TrimSpace(body) != "" {
				el.Text = body
			}
			stack, text = stack[:len(stack)-1], text[:len(text)-1]
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		}
	}
	if root == nil {
		return nil, &SyntaxError{Msg: "no <launch> element"}
	}
	return root, nil
}

func line(dec *xml.Decoder) int {
	l, _ := dec.InputPos()
	return l
}

func newElement(t xml.StartElement) *api.Element {
	tag := t.Name.Local
	cat, known := meta.FromMarkupTag(tag)
	if known {
		tag = cat.String()
	}
	el := &api.Element{Tag: tag, Attributes: make(map[string]string, len(t.Attr))}
	for _, a := range t.Attr {
		key := a.Name.Local
		if known {
			key = modelKey(cat, key)
		}
		el.Attributes[key] = a.Value
	}
	return el
}

// modelKey maps a markup attribute name of c to its model attribute name.
func modelKey(c meta.Category, markup string) string {
	for _, spec := range meta.Attributes(c) {
		if spec.Markup == markup {
			return spec.Key
		}
	}
	return markup
}

// Package launch renders a launch model subtree as roslaunch XML and parses
// roslaunch XML back into element trees for import.
package launch

import (
	"encoding/xml"
	"sort"
	"strings"

	"github.com/agentic-research/rosgraph/internal/args"
	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/meta"
	"github.com/agentic-research/rosgraph/internal/report"
)

const indentStep = 2

// precedence is the order sibling elements are written in. Categories not
// listed sort after all listed ones.
var precedence = map[meta.Category]int{
	meta.Argument:  0,
	meta.RosParam:  1,
	meta.Parameter: 2,
	meta.Env:       3,
	meta.Remap:     4,
	meta.Include:   5,
	meta.Group:     6,
	meta.Machine:   7,
	meta.Node:      8,
	meta.Test:      9,
}

func rank(c meta.Category) int {
	if r, ok := precedence[c]; ok {
		return r
	}
	return len(precedence)
}

// containers hold nested elements.
var containers = map[meta.Category]bool{
	meta.Node:     true,
	meta.Group:    true,
	meta.Include:  true,
	meta.Machine:  true,
	meta.RosParam: true,
	meta.Test:     true,
}

type serializer struct {
	g       graph.Graph
	rep     report.Report
	visited map[string]struct{}
}

// Serialize renders the children of rootID, normally a LaunchFile, inside a
// <launch> element. Problems that do not prevent output, such as argument
// cycles, are returned as diagnostics.
func Serialize(g graph.Graph, rootID string) (string, report.Report) {
	s := &serializer{g: g, visited: map[string]struct{}{rootID: {}}}
	var b strings.Builder
	b.WriteString("<launch>\n")
	if root, err := g.GetNode(rootID); err != nil {
		s.rep.Errorf(rootID, "load: %v", err)
	} else if c := meta.Classify(g, root); c != meta.LaunchFile {
		s.rep.Warnf(rootID, "rendering a %s as a launch file", c)
	}
	s.children(&b, rootID, indentStep)
	b.WriteString("</launch>\n")
	return b.String(), s.rep
}

type entry struct {
	n   *graph.Node
	cat meta.Category
}

// ordered returns the emittable children of id: arguments in dependency
// order, then every other category by precedence, declaration order within
// a category.
func (s *serializer) ordered(id string) []entry {
	children, err := graph.Children(s.g, id)
	if err != nil {
		s.rep.Skip(id, "load children: %v", err)
		return nil
	}
	argOrder := make(map[string]int)
	declared := args.FromNodes(s.g, children)
	if sorted, err := args.Order(declared); err != nil {
		s.rep.Warnf(id, "%v; arguments kept in declaration order", err)
	} else {
		for i, a := range sorted {
			argOrder[a.ID] = i
		}
	}

	out := make([]entry, 0, len(children))
	for _, n := range children {
		c := meta.Classify(s.g, n)
		if c == meta.Undefined || c == meta.Topic || c == meta.LaunchFile || c.IsEndpoint() {
			continue
		}
		out = append(out, entry{n: n, cat: c})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i].cat), rank(out[j].cat)
		if ri != rj {
			return ri < rj
		}
		if out[i].cat == meta.Argument && len(argOrder) > 0 {
			return argOrder[out[i].n.ID] < argOrder[out[j].n.ID]
		}
		return false
	})
	return out
}

func (s *serializer) children(b *strings.Builder, id string, indent int) {
	for _, e := range s.ordered(id) {
		s.element(b, e, indent)
	}
}

func (s *serializer) element(b *strings.Builder, e entry, indent int) {
	pad := strings.Repeat(" ", indent)
	if e.cat == meta.RosParamBody {
		writeBody(b, meta.String(s.g, e.n, meta.BodyKey), pad)
		return
	}
	tag := meta.MarkupTag(e.cat)
	if tag == "" {
		return
	}

	b.WriteString(pad)
	b.WriteByte('<')
	b.WriteString(tag)
	s.attributes(b, e)

	if !containers[e.cat] {
		b.WriteString("/>\n")
		return
	}
	if _, seen := s.visited[e.n.ID]; seen {
		s.rep.Warnf(e.n.ID, "already rendered; not expanded again")
		b.WriteString("/>\n")
		return
	}
	s.visited[e.n.ID] = struct{}{}

	var inner strings.Builder
	s.children(&inner, e.n.ID, indent+indentStep)
	if inner.Len() == 0 {
		b.WriteString("/>\n")
		return
	}
	b.WriteString(">\n")
	b.WriteString(inner.String())
	b.WriteString(pad)
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">\n")
}

// attributes writes the declared attributes of e that carry a value
// different from the launch default.
func (s *serializer) attributes(b *strings.Builder, e entry) {
	for _, spec := range meta.Attributes(e.cat) {
		v, ok := meta.Attr(s.g, e.n, spec.Key)
		if !ok {
			continue
		}
		text := graph.FormatValue(v)
		if text == "" {
			continue
		}
		if spec.Default != nil && text == graph.FormatValue(spec.Default) {
			continue
		}
		if e.cat == meta.Include && spec.Markup == "file" && !strings.Contains(text, ".launch") {
			text += ".launch"
		}
		b.WriteByte(' ')
		b.WriteString(spec.Markup)
		b.WriteString(`="`)
		_ = xml.EscapeText(b, []byte(text))
		b.WriteByte('"')
	}
}

// writeBody writes a rosparam YAML body under its element, dropping blank
// lines and replacing the common leading indentation with pad.
func writeBody(b *strings.Builder, text, pad string) {
	var lines []string
	common := -1
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}
		lead := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || lead < common {
			common = lead
		}
		lines = append(lines, line)
	}
	for _, line := range lines {
		b.WriteString(pad)
		var esc strings.Builder
		_ = xml.EscapeText(&esc, []byte(line[common:]))
		b.WriteString(unescapeWhitespace(esc.String()))
		b.WriteByte('\n')
	}
}

// xml.EscapeText also escapes tabs and quotes, which are legal in element
// text and would make YAML bodies unreadable.
var whitespaceUnescaper = strings.NewReplacer("&#x9;", "\t", "&#34;", `"`, "&#39;", "'")

func unescapeWhitespace(s string) string {
	return whitespaceUnescaper.Replace(s)
}

// FileName returns the artifact name for a model: the sanitized model name
// with a .launch extension.
func FileName(modelName string) string {
	return SanitizeFilename(modelName) + ".launch"
}

// SanitizeFilename removes characters that are illegal in common
// filesystems and trailing dots and spaces. An empty result becomes
// "output".
func SanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(`<>:"/\|?*`, r) {
			return -1
		}
		return r
	}, name)
	cleaned = strings.TrimRight(cleaned, ". ")
	if cleaned == "" {
		return "output"
	}
	return cleaned
}

// Package ingest turns parsed launch markup into launch model nodes.
package ingest

import (
	"context"
	"fmt"

	"github.com/agentic-research/rosgraph/api"
	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/meta"
	"github.com/agentic-research/rosgraph/internal/report"
)

// Importer builds LaunchFile subtrees from parsed launch markup.
type Importer struct {
	Store graph.Store
}

func NewImporter(s graph.Store) *Importer {
	return &Importer{Store: s}
}

type importRun struct {
	g      graph.Graph
	cs     *graph.ChangeSet
	rep    *report.Report
	protos map[meta.Category]string
	// templates indexes library entries by package and executable.
	templates map[meta.Category]map[[2]string]*graph.Node
}

// Import creates a LaunchFile under parentID holding one node per element
// below root, which must be a LaunchFile element as returned by
// launch.Parse. The launch file is named after root's name attribute.
// Node and Test elements whose pkg and type match a library template are
// instantiated from it. Unknown elements are reported and skipped. The
// whole import is applied as one change set; the ID of the new LaunchFile
// is returned.
func (im *Importer) Import(ctx context.Context, parentID string, root *api.Element) (string, report.Report, error) {
	var rep report.Report
	if root == nil || root.Tag != meta.LaunchFile.String() {
		return "", rep, fmt.Errorf("ingest: root element must be a launch file")
	}
	if _, err := im.Store.GetNode(parentID); err != nil {
		return "", rep, fmt.Errorf("ingest: parent %q: %w", parentID, err)
	}
	protos, err := meta.Prototypes(im.Store)
	if err != nil {
		return "", rep, fmt.Errorf("ingest: load prototypes: %w", err)
	}
	if _, ok := protos[meta.LaunchFile]; !ok {
		return "", rep, fmt.Errorf("ingest: prototype %s: %w", meta.LaunchFile, graph.ErrNotFound)
	}

	r := &importRun{
		g:      im.Store,
		cs:     &graph.ChangeSet{},
		rep:    &rep,
		protos: protos,
		templates: map[meta.Category]map[[2]string]*graph.Node{
			meta.Node: loadTemplates(im.Store, meta.NodeLibrary, meta.Node),
			meta.Test: loadTemplates(im.Store, meta.TestLibrary, meta.Test),
		},
	}

	lf := r.cs.Create(parentID, "launch", protos[meta.LaunchFile], r.taken)
	if name := root.Attributes["name"]; name != "" {
		lf.Attributes["name"] = name
	}
	r.children(lf, root)

	if err := ctx.Err(); err != nil {
		return "", rep, err
	}
	if err := im.Store.Apply(ctx, r.cs); err != nil {
		return "", rep, fmt.Errorf("ingest: apply %s: %w", r.cs, err)
	}
	rep.Created = len(r.cs.Creates)
	return lf.ID, rep, nil
}

func (r *importRun) taken(id string) bool {
	_, err := r.g.GetNode(id)
	return err == nil
}

// loadTemplates indexes the entries of a library container by (pkg, type).
// A missing library yields an empty index.
func loadTemplates(g graph.Graph, library string, c meta.Category) map[[2]string]*graph.Node {
	out := make(map[[2]string]*graph.Node)
	entries, err := graph.Children(g, meta.LibraryID(library))
	if err != nil {
		return out
	}
	for _, n := range entries {
		if meta.Classify(g, n) != c {
			continue
		}
		key := [2]string{meta.String(g, n, "pkg"), meta.String(g, n, "type")}
		if _, dup := out[key]; !dup {
			out[key] = n
		}
	}
	return out
}

func (r *importRun) children(parent *graph.Node, el *api.Element) {
	for _, child := range el.Children {
		r.element(parent, child)
	}
}

func (r *importRun) element(parent *graph.Node, el *api.Element) {
	cat, ok := meta.Lookup(el.Tag)
	if !ok || cat == meta.LaunchFile || meta.MarkupTag(cat) == "" {
		r.rep.Skip(parent.ID, "unsupported element <%s> skipped", el.Tag)
		return
	}
	proto, ok := r.protos[cat]
	if !ok {
		r.rep.Skip(parent.ID, "no prototype for %s; element skipped", cat)
		return
	}

	attrs := make(map[string]any, len(el.Attributes))
	for k, raw := range el.Attributes {
		if spec, ok := meta.SpecFor(cat, k); ok {
			attrs[k] = spec.Parse(raw)
		} else {
			attrs[k] = raw
		}
	}

	base := proto
	var template *graph.Node
	if idx := r.templates[cat]; idx != nil {
		if t, ok := idx[[2]string{el.Attributes["pkg"], el.Attributes["type"]}]; ok {
			template, base = t, t.ID
		}
	}

	n := r.cs.Create(parent.ID, meta.MarkupTag(cat), base, r.taken)
	n.Attributes = attrs

	switch cat {
	case meta.RosParam:
		if el.Text != "" {
			if bodyProto, ok := r.protos[meta.RosParamBody]; ok {
				body := r.cs.Create(n.ID, "body", bodyProto, r.taken)
				body.Attributes[meta.BodyKey] = el.Text
			}
		}
		r.children(n, el)
	case meta.Node, meta.Test, meta.Group, meta.Include, meta.Machine:
		r.children(n, el)
	default:
		if len(el.Children) > 0 {
			r.rep.Skip(n.ID, "<%s> cannot hold child elements; %d skipped", el.Tag, len(el.Children))
		}
	}
	if template != nil {
		r.instantiatePorts(n, template)
	}
}

// instantiatePorts gives an instance its own copy of each endpoint of the
// template it derives from. Each copy derives from the template's endpoint,
// so it inherits the endpoint's name.
func (r *importRun) instantiatePorts(n, template *graph.Node) {
	ports, err := graph.Children(r.g, template.ID)
	if err != nil {
		r.rep.Skip(n.ID, "load template %s: %v", template.ID, err)
		return
	}
	seen := make(map[string]bool)
	for _, p := range ports {
		c := meta.Classify(r.g, p)
		if c != meta.Publisher && c != meta.Subscriber {
			continue
		}
		key := c.String() + "/" + meta.String(r.g, p, "name")
		if seen[key] {
			continue
		}
		seen[key] = true
		prefix := "sub"
		if c == meta.Publisher {
			prefix = "pub"
		}
		r.cs.Create(n.ID, prefix, p.ID, r.taken)
	}
}

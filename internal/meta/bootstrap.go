package meta

import (
	"github.com/agentic-research/rosgraph/internal/graph"
)

// Fixed IDs of the containers every project starts with.
const (
	MetaID = "/meta"
	FCOID  = "/meta/FCO"
)

// Names of the three template libraries.
const (
	NodeLibrary    = "NodeLibrary"
	TestLibrary    = "TestLibrary"
	IncludeLibrary = "IncludeLibrary"
)

// PrototypeID returns the ID of the prototype node for c in a project
// created by NewProject.
func PrototypeID(c Category) string {
	return graph.Join(MetaID, c.String())
}

// LibraryID returns the ID of a library container created by NewProject.
func LibraryID(name string) string {
	return graph.Join(graph.RootID, name)
}

// NewProject returns a store holding an empty project: the root, one
// prototype per category under /meta, and the three template libraries.
func NewProject(name string) *graph.MemoryStore {
	s := graph.NewMemoryStore()
	s.AddNode(&graph.Node{ID: graph.RootID, Attributes: map[string]any{"name": name}})
	s.AddNode(&graph.Node{ID: MetaID, Attributes: map[string]any{"name": "META"}})
	s.AddNode(&graph.Node{ID: FCOID, Attributes: map[string]any{"name": "FCO"}})
	for _, c := range All() {
		s.AddNode(&graph.Node{
			ID:         PrototypeID(c),
			Base:       FCOID,
			Attributes: map[string]any{"name": c.String()},
		})
	}
	for _, lib := range []string{NodeLibrary, TestLibrary, IncludeLibrary} {
		s.AddNode(&graph.Node{
			ID:         LibraryID(lib),
			Base:       FCOID,
			Attributes: map[string]any{"name": lib},
		})
	}
	return s
}

// Prototypes maps each category to its prototype in the given store by
// scanning the /meta container. Projects with hand-made meta trees work as
// long as the prototypes are named after their categories.
func Prototypes(g graph.Graph) (map[Category]string, error) {
	children, err := graph.Children(g, MetaID)
	if err != nil {
		return nil, err
	}
	out := make(map[Category]string, len(children))
	for _, n := range children {
		name, _ := n.Attributes["name"].(string)
		if c, ok := Lookup(name); ok {
			if _, dup := out[c]; !dup {
				out[c] = n.ID
			}
		}
	}
	return out, nil
}

// Attr looks key up on n and its prototype chain like graph.Attr, but never
// reads the category prototypes under /meta: their name is the category
// itself, not a default for instances.
func Attr(g graph.Graph, n *graph.Node, key string) (any, bool) {
	seen := make(map[string]struct{})
	for cur := n; cur != nil && !isMeta(cur.ID); {
		if v, ok := cur.Attributes[key]; ok {
			return v, true
		}
		if cur.Base == "" {
			break
		}
		if _, loop := seen[cur.Base]; loop {
			break
		}
		seen[cur.Base] = struct{}{}
		next, err := g.GetNode(cur.Base)
		if err != nil {
			break
		}
		cur = next
	}
	return nil, false
}

// String is Attr formatted as text; missing values are "".
func String(g graph.Graph, n *graph.Node, key string) string {
	v, _ := Attr(g, n, key)
	return graph.FormatValue(v)
}

func isMeta(id string) bool {
	return id == MetaID || graph.IsWithin(id, MetaID)
}

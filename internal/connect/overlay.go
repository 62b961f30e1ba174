package connect

import (
	"github.com/agentic-research/rosgraph/internal/graph"
)

// overlay is the store as it will look once the pending change set is
// applied: deleted subtrees are hidden and created nodes are visible.
type overlay struct {
	base     graph.Graph
	deleted  map[string]struct{}
	added    map[string]*graph.Node
	children map[string][]string // parent → created children
}

func newOverlay(base graph.Graph) *overlay {
	return &overlay{
		base:     base,
		deleted:  make(map[string]struct{}),
		added:    make(map[string]*graph.Node),
		children: make(map[string][]string),
	}
}

func (o *overlay) GetNode(id string) (*graph.Node, error) {
	if n, ok := o.added[id]; ok {
		return n, nil
	}
	if o.hidden(id) {
		return nil, graph.ErrNotFound
	}
	return o.base.GetNode(id)
}

func (o *overlay) ListChildren(id string) ([]string, error) {
	var out []string
	if _, ok := o.added[id]; !ok {
		if o.hidden(id) {
			return nil, graph.ErrNotFound
		}
		ids, err := o.base.ListChildren(id)
		if err != nil {
			return nil, err
		}
		for _, c := range ids {
			if _, gone := o.deleted[c]; !gone {
				out = append(out, c)
			}
		}
	}
	return append(out, o.children[id]...), nil
}

// hidden reports whether id or one of its ancestors is deleted.
func (o *overlay) hidden(id string) bool {
	for cur, ok := id, true; ok; cur, ok = graph.ParentID(cur) {
		if _, gone := o.deleted[cur]; gone {
			return true
		}
	}
	return false
}

func (o *overlay) remove(id string) {
	o.deleted[id] = struct{}{}
}

func (o *overlay) add(n *graph.Node) {
	o.added[n.ID] = n
	if pid, ok := graph.ParentID(n.ID); ok {
		o.children[pid] = append(o.children[pid], n.ID)
	}
}

// taken reports whether id names a live node.
func (o *overlay) taken(id string) bool {
	_, err := o.GetNode(id)
	return err == nil
}

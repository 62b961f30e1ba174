package graph

import (
	"errors"
	"strconv"
	"strings"
)

// SkipChildren is returned by a WalkFunc to skip the current node's subtree.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for each node visited by Walk.
type WalkFunc func(n *Node) error

// Walk visits the subtree rooted at id in pre-order, children in the order
// the store lists them. Nodes already visited are not entered again, so a
// corrupt store with a child cycle still terminates.
func Walk(g Graph, id string, fn WalkFunc) error {
	return walk(g, id, fn, make(map[string]struct{}))
}

func walk(g Graph, id string, fn WalkFunc, visited map[string]struct{}) error {
	if _, seen := visited[id]; seen {
		return nil
	}
	visited[id] = struct{}{}

	n, err := g.GetNode(id)
	if err != nil {
		return err
	}
	if err := fn(n); err != nil {
		if err == SkipChildren {
			return nil
		}
		return err
	}
	children, err := g.ListChildren(id)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := walk(g, c, fn, visited); err != nil {
			return err
		}
	}
	return nil
}

// Subtree returns the nodes below id (id included) in pre-order.
func Subtree(g Graph, id string) ([]*Node, error) {
	var out []*Node
	err := Walk(g, id, func(n *Node) error {
		out = append(out, n)
		return nil
	})
	return out, err
}

// Children loads the child nodes of id.
func Children(g Graph, id string) ([]*Node, error) {
	ids, err := g.ListChildren(id)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(ids))
	for _, c := range ids {
		n, err := g.GetNode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Parent returns the structural parent of n, or ErrNotFound for the root.
func Parent(g Graph, n *Node) (*Node, error) {
	pid, ok := ParentID(n.ID)
	if !ok {
		return nil, ErrNotFound
	}
	return g.GetNode(pid)
}

// Attr looks key up on n and then along its prototype chain. A chain that
// loops back on itself stops at the first repeated prototype.
func Attr(g Graph, n *Node, key string) (any, bool) {
	seen := make(map[string]struct{})
	for cur := n; cur != nil; {
		if v, ok := cur.Attributes[key]; ok {
			return v, true
		}
		if cur.Base == "" {
			return nil, false
		}
		if _, loop := seen[cur.Base]; loop {
			return nil, false
		}
		seen[cur.Base] = struct{}{}
		next, err := g.GetNode(cur.Base)
		if err != nil {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// String returns the attribute as a string; booleans and numbers are
// formatted, missing values are "".
func String(g Graph, n *Node, key string) string {
	v, ok := Attr(g, n, key)
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// Bool returns the attribute as a boolean. ok is false when the attribute
// is unset or not a boolean.
func Bool(g Graph, n *Node, key string) (value, ok bool) {
	v, found := Attr(g, n, key)
	if !found {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Number returns the attribute as a float64. ok is false when the attribute
// is unset or not numeric.
func Number(g Graph, n *Node, key string) (float64, bool) {
	v, found := Attr(g, n, key)
	if !found {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

// FormatValue renders a scalar attribute value as text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case nil:
		return ""
	}
	return ""
}

// CommonAncestor returns the ID of the deepest node that is an ancestor of
// (or equal to) every given ID. ok is false when ids is empty.
func CommonAncestor(ids ...string) (string, bool) {
	if len(ids) == 0 {
		return "", false
	}
	common := strings.Split(ids[0], "/")
	for _, id := range ids[1:] {
		segs := strings.Split(id, "/")
		n := 0
		for n < len(common) && n < len(segs) && common[n] == segs[n] {
			n++
		}
		common = common[:n]
	}
	if len(common) == 0 {
		return RootID, true
	}
	return strings.Join(common, "/"), true
}

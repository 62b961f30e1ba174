package graph

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("node not found")
	ErrConflict = errors.New("conflicting change")
)

// RootID is the ID of the project root. Every other node ID is a slash path
// below it ("/a", "/a/b"), so the number of slashes in an ID is its depth.
const RootID = ""

// Node is the universal primitive: one vertex of the model tree.
//
// Attribute values are scalars (string, bool or float64). Attributes a node
// does not set itself are inherited from its prototype chain; see Attr.
type Node struct {
	ID         string
	Base       string            // prototype node ID ("" when the node has no prototype)
	Attributes map[string]any    // own attribute values
	Pointers   map[string]string // named references to other nodes (Topic src/dst)
	Children   []string          // child IDs in insertion order
}

// Depth returns the number of path separators in the node ID.
func (n *Node) Depth() int {
	return Depth(n.ID)
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := &Node{ID: n.ID, Base: n.Base}
	if n.Attributes != nil {
		c.Attributes = make(map[string]any, len(n.Attributes))
		for k, v := range n.Attributes {
			c.Attributes[k] = v
		}
	}
	if n.Pointers != nil {
		c.Pointers = make(map[string]string, len(n.Pointers))
		for k, v := range n.Pointers {
			c.Pointers[k] = v
		}
	}
	if n.Children != nil {
		c.Children = append([]string(nil), n.Children...)
	}
	return c
}

// Graph is the read side of the model store.
type Graph interface {
	GetNode(id string) (*Node, error)
	ListChildren(id string) ([]string, error)
}

// Store is a Graph that accepts atomic change sets.
type Store interface {
	Graph
	Apply(ctx context.Context, cs *ChangeSet) error
}

// Depth returns the number of path separators in id.
func Depth(id string) int {
	return strings.Count(id, "/")
}

// ParentID returns the ID of the structural parent of id.
// The root has no parent.
func ParentID(id string) (string, bool) {
	if id == RootID {
		return "", false
	}
	i := strings.LastIndex(id, "/")
	if i <= 0 {
		return RootID, true
	}
	return id[:i], true
}

// Join builds the ID of child rel under parent.
func Join(parent, rel string) string {
	return parent + "/" + rel
}

// IsWithin reports whether id lies strictly below scope.
func IsWithin(id, scope string) bool {
	return strings.HasPrefix(id, scope+"/")
}

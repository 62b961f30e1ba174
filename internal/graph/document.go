package graph

import (
	"fmt"

	"github.com/agentic-research/rosgraph/api"
)

// DocumentVersion is written into every exported Document.
const DocumentVersion = "v1"

// FromDocument builds a MemoryStore from a Document.
func FromDocument(doc *api.Document) (*MemoryStore, error) {
	s := NewMemoryStore()
	for i, rec := range doc.Nodes {
		if pid, ok := ParentID(rec.ID); ok {
			if _, err := s.GetNode(pid); err != nil {
				return nil, fmt.Errorf("node %d %q: parent %q must precede it: %w", i, rec.ID, pid, ErrNotFound)
			}
		}
		if _, err := s.GetNode(rec.ID); err == nil {
			return nil, fmt.Errorf("node %d %q: duplicate id: %w", i, rec.ID, ErrConflict)
		}
		s.AddNode(&Node{
			ID:         rec.ID,
			Base:       rec.Base,
			Attributes: normalizeAttributes(rec.Attributes),
			Pointers:   rec.Pointers,
		})
	}
	return s, nil
}

// ToDocument exports the store as a Document.
func ToDocument(s *MemoryStore) *api.Document {
	nodes := s.Snapshot()
	doc := &api.Document{Version: DocumentVersion, Nodes: make([]api.NodeRecord, 0, len(nodes))}
	for _, n := range nodes {
		doc.Nodes = append(doc.Nodes, api.NodeRecord{
			ID:         n.ID,
			Base:       n.Base,
			Attributes: n.Attributes,
			Pointers:   n.Pointers,
		})
	}
	return doc
}

// normalizeAttributes maps decoded JSON values onto the scalar set the model
// supports. Non-scalar values are dropped.
func normalizeAttributes(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch x := v.(type) {
		case string, bool, float64:
			out[k] = x
		case int:
			out[k] = float64(x)
		case int64:
			out[k] = float64(x)
		}
	}
	return out
}

package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// MemoryStore is the in-memory model store. Every command loads a project
// into one, runs against it, and saves the result back in a single write.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	order []string // insertion order, used for deterministic snapshots

	// Roaring bitmap index: prototype ID → set of internal IDs of its
	// direct instances. Lets Apply rebase instances of a deleted prototype
	// without a full scan.
	instances   map[string]*roaring.Bitmap
	nodeIntID   map[string]uint32
	intToNodeID []string
	nextIntID   uint32
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:     make(map[string]*Node),
		instances: make(map[string]*roaring.Bitmap),
		nodeIntID: make(map[string]uint32),
	}
}

// AddNode inserts n as-is and links it under its parent when the parent is
// already present. Loaders call it in pre-order. An existing node with the
// same ID is replaced.
func (s *MemoryStore) AddNode(n *Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(n)
}

func (s *MemoryStore) insert(n *Node) {
	if old, ok := s.nodes[n.ID]; ok {
		s.unindex(old)
	} else {
		s.order = append(s.order, n.ID)
		if pid, ok := ParentID(n.ID); ok {
			if p, ok := s.nodes[pid]; ok {
				p.Children = append(p.Children, n.ID)
			}
		}
	}
	s.nodes[n.ID] = n
	s.index(n)
}

// index assigns an internal bitmap ID and registers n under its prototype.
// Must be called with s.mu held.
func (s *MemoryStore) index(n *Node) {
	intID, ok := s.nodeIntID[n.ID]
	if !ok {
		intID = s.nextIntID
		s.nextIntID++
		s.nodeIntID[n.ID] = intID
		for uint32(len(s.intToNodeID)) <= intID {
			s.intToNodeID = append(s.intToNodeID, "")
		}
		s.intToNodeID[intID] = n.ID
	}
	if n.Base == "" {
		return
	}
	bm, exists := s.instances[n.Base]
	if !exists {
		bm = roaring.New()
		s.instances[n.Base] = bm
	}
	bm.Add(intID)
}

func (s *MemoryStore) unindex(n *Node) {
	intID, ok := s.nodeIntID[n.ID]
	if !ok {
		return
	}
	if bm, ok := s.instances[n.Base]; ok {
		bm.Remove(intID)
		if bm.IsEmpty() {
			delete(s.instances, n.Base)
		}
	}
}

func (s *MemoryStore) forget(id string) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	s.unindex(n)
	if intID, ok := s.nodeIntID[id]; ok {
		delete(s.nodeIntID, id)
		s.intToNodeID[intID] = ""
	}
	delete(s.nodes, id)
}

// GetNode implements Graph. The returned node is owned by the store and
// must not be modified; changes go through Apply.
func (s *MemoryStore) GetNode(id string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

// ListChildren implements Graph.
func (s *MemoryStore) ListChildren(id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]string(nil), n.Children...), nil
}

// Instances returns the IDs of the nodes whose direct prototype is baseID,
// sorted.
func (s *MemoryStore) Instances(baseID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instancesLocked(baseID)
}

func (s *MemoryStore) instancesLocked(baseID string) []string {
	bm, ok := s.instances[baseID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		intID := it.Next()
		if int(intID) < len(s.intToNodeID) && s.intToNodeID[intID] != "" {
			ids = append(ids, s.intToNodeID[intID])
		}
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of nodes in the store.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Snapshot returns copies of all nodes in pre-order (parents before
// children, siblings in insertion order).
func (s *MemoryStore) Snapshot() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Node
	var visit func(id string)
	visit = func(id string) {
		n, ok := s.nodes[id]
		if !ok {
			return
		}
		c := n.Clone()
		c.Children = nil
		out = append(out, c)
		for _, child := range n.Children {
			visit(child)
		}
	}
	// Roots are nodes whose parent is absent (normally just RootID).
	for _, id := range s.order {
		n, ok := s.nodes[id]
		if !ok {
			continue
		}
		pid, hasParent := ParentID(n.ID)
		if hasParent {
			if _, ok := s.nodes[pid]; ok {
				continue
			}
		}
		visit(id)
	}
	return out
}

// Apply implements Store. The whole change set is validated before any of
// it is applied; on error the store is unchanged.
func (s *MemoryStore) Apply(ctx context.Context, cs *ChangeSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := make(map[string]struct{})
	for _, id := range cs.Deletes {
		if id == RootID {
			return fmt.Errorf("delete root: %w", ErrConflict)
		}
		if _, ok := s.nodes[id]; !ok {
			return fmt.Errorf("delete %q: %w", id, ErrNotFound)
		}
		s.collectSubtree(id, deleted)
	}

	created := make(map[string]*Node, len(cs.Creates))
	exists := func(id string) bool {
		if _, ok := created[id]; ok {
			return true
		}
		if _, gone := deleted[id]; gone {
			return false
		}
		_, ok := s.nodes[id]
		return ok
	}

	for _, n := range cs.Creates {
		pid, ok := ParentID(n.ID)
		if !ok {
			return fmt.Errorf("create root: %w", ErrConflict)
		}
		if exists(n.ID) {
			return fmt.Errorf("create %q: %w", n.ID, ErrConflict)
		}
		if !exists(pid) {
			return fmt.Errorf("create %q: parent %q: %w", n.ID, pid, ErrNotFound)
		}
		if n.Base != "" && !exists(n.Base) {
			return fmt.Errorf("create %q: base %q: %w", n.ID, n.Base, ErrNotFound)
		}
		c := n.Clone()
		c.Children = nil
		created[n.ID] = c
	}
	for _, n := range cs.Creates {
		for name, target := range n.Pointers {
			if !exists(target) {
				return fmt.Errorf("create %q: pointer %s -> %q: %w", n.ID, name, target, ErrNotFound)
			}
		}
	}

	// Validation done; from here on nothing fails.
	s.rebaseInstances(deleted)
	s.removeDeleted(deleted)
	for _, n := range cs.Creates {
		s.insert(created[n.ID])
	}
	return nil
}

func (s *MemoryStore) collectSubtree(id string, into map[string]struct{}) {
	if _, seen := into[id]; seen {
		return
	}
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	into[id] = struct{}{}
	for _, c := range n.Children {
		s.collectSubtree(c, into)
	}
}

// rebaseInstances moves surviving instances of deleted prototypes onto the
// nearest surviving ancestor prototype, copying the attribute values they
// used to inherit so that neither their category nor their rendered
// attributes change.
func (s *MemoryStore) rebaseInstances(deleted map[string]struct{}) {
	ids := make([]string, 0, len(deleted))
	for id := range deleted {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, d := range ids {
		for _, instID := range s.instancesLocked(d) {
			if _, gone := deleted[instID]; gone {
				continue
			}
			inst := s.nodes[instID]
			s.unindex(inst)

			base := d
			for base != "" {
				if _, gone := deleted[base]; !gone {
					break
				}
				proto, ok := s.nodes[base]
				if !ok {
					base = ""
					break
				}
				for k, v := range proto.Attributes {
					if _, own := inst.Attributes[k]; own {
						continue
					}
					if inst.Attributes == nil {
						inst.Attributes = make(map[string]any)
					}
					inst.Attributes[k] = v
				}
				base = proto.Base
			}
			inst.Base = base
			s.index(inst)
		}
	}
}

func (s *MemoryStore) removeDeleted(deleted map[string]struct{}) {
	if len(deleted) == 0 {
		return
	}
	for id := range deleted {
		pid, ok := ParentID(id)
		if !ok {
			continue
		}
		if _, gone := deleted[pid]; gone {
			continue
		}
		if p, ok := s.nodes[pid]; ok {
			kept := p.Children[:0]
			for _, c := range p.Children {
				if c != id {
					kept = append(kept, c)
				}
			}
			p.Children = kept
		}
	}
	for id := range deleted {
		s.forget(id)
	}

	// Pointers into deleted nodes are cleared.
	for _, n := range s.nodes {
		for name, target := range n.Pointers {
			if _, gone := deleted[target]; gone {
				delete(n.Pointers, name)
			}
		}
	}

	kept := s.order[:0]
	for _, id := range s.order {
		if _, gone := deleted[id]; !gone {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

package graph

import (
	"fmt"
	"strconv"
)

// ChangeSet is a batch of deletions followed by creations, applied by a
// Store as one atomic update. Deleting a node deletes its subtree. A created
// node's parent must already exist or be created earlier in the same set.
type ChangeSet struct {
	Deletes []string
	Creates []*Node

	used    map[string]int      // parent+prefix → last relid counter
	created map[string]struct{} // IDs handed out by Create
}

// Delete schedules id (and its subtree) for deletion.
func (cs *ChangeSet) Delete(id string) {
	cs.Deletes = append(cs.Deletes, id)
}

// Create schedules a new node under parent with the given prototype and
// returns it so the caller can fill in attributes and pointers. The child
// relid is prefix followed by a per-parent counter; IDs for which taken
// reports true are skipped.
func (cs *ChangeSet) Create(parent, prefix, base string, taken func(id string) bool) *Node {
	if cs.used == nil {
		cs.used = make(map[string]int)
		cs.created = make(map[string]struct{})
	}
	key := parent + "\x00" + prefix
	i := cs.used[key]
	var id string
	for {
		i++
		id = Join(parent, prefix+strconv.Itoa(i))
		if _, dup := cs.created[id]; !dup && (taken == nil || !taken(id)) {
			break
		}
	}
	cs.used[key] = i
	cs.created[id] = struct{}{}

	n := &Node{
		ID:         id,
		Base:       base,
		Attributes: make(map[string]any),
	}
	cs.Creates = append(cs.Creates, n)
	return n
}

// Empty reports whether the change set does nothing.
func (cs *ChangeSet) Empty() bool {
	return len(cs.Deletes) == 0 && len(cs.Creates) == 0
}

func (cs *ChangeSet) String() string {
	return fmt.Sprintf("%d deletes, %d creates", len(cs.Deletes), len(cs.Creates))
}

// Package dag orders vertices so that every vertex comes after the vertices
// it depends on, breaking ties by a caller-assigned declaration order.
package dag

import (
	"container/heap"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Vertex is one node of the graph.
type Vertex[T comparable] struct {
	ID T
	// Order is the declaration position; lower values are emitted first
	// whenever dependencies allow it.
	Order     int
	DependsOn map[T]struct{}
}

// DirectedAcyclicGraph holds vertices and their dependency edges. Edges
// may form cycles while the graph is being built; TopologicalSort reports
// them.
type DirectedAcyclicGraph[T comparable] struct {
	Vertices map[T]*Vertex[T]
}

func NewDirectedAcyclicGraph[T comparable]() *DirectedAcyclicGraph[T] {
	return &DirectedAcyclicGraph[T]{Vertices: make(map[T]*Vertex[T])}
}

// AddVertex adds id with the given declaration order.
func (d *DirectedAcyclicGraph[T]) AddVertex(id T, order int) error {
	if _, exists := d.Vertices[id]; exists {
		return fmt.Errorf("vertex %v already exists", id)
	}
	d.Vertices[id] = &Vertex[T]{ID: id, Order: order, DependsOn: make(map[T]struct{})}
	return nil
}

// AddDependencies records that id depends on every vertex in deps.
func (d *DirectedAcyclicGraph[T]) AddDependencies(id T, deps []T) error {
	v, ok := d.Vertices[id]
	if !ok {
		return fmt.Errorf("vertex %v not found", id)
	}
	for _, dep := range deps {
		if _, ok := d.Vertices[dep]; !ok {
			return fmt.Errorf("dependency %v of %v not found", dep, id)
		}
	}
	for _, dep := range deps {
		v.DependsOn[dep] = struct{}{}
	}
	return nil
}

// CycleError is returned by TopologicalSort when the dependencies loop.
// Cycle lists the members in dependency order, first member repeated at the
// end.
type CycleError[T comparable] struct {
	Cycle []T
}

func (e *CycleError[T]) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, v := range e.Cycle {
		parts[i] = fmt.Sprint(v)
	}
	return "dependency cycle: " + strings.Join(parts, " -> ")
}

// AsCycleError returns err as a *CycleError, or nil when it is not one.
func AsCycleError[T comparable](err error) *CycleError[T] {
	var ce *CycleError[T]
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// TopologicalSort returns the vertex IDs dependencies first. At each step
// the ready vertex with the lowest Order is taken.
func (d *DirectedAcyclicGraph[T]) TopologicalSort() ([]T, error) {
	pending := make(map[T]int, len(d.Vertices))
	dependents := make(map[T][]*Vertex[T], len(d.Vertices))
	ready := &vertexHeap[T]{}
	for _, v := range d.Vertices {
		pending[v.ID] = len(v.DependsOn)
		for dep := range v.DependsOn {
			dependents[dep] = append(dependents[dep], v)
		}
		if len(v.DependsOn) == 0 {
			*ready = append(*ready, v)
		}
	}
	heap.Init(ready)

	out := make([]T, 0, len(d.Vertices))
	for ready.Len() > 0 {
		v := heap.Pop(ready).(*Vertex[T])
		out = append(out, v.ID)
		for _, next := range dependents[v.ID] {
			pending[next.ID]--
			if pending[next.ID] == 0 {
				heap.Push(ready, next)
			}
		}
	}
	if len(out) < len(d.Vertices) {
		return nil, &CycleError[T]{Cycle: d.findCycle(pending)}
	}
	return out, nil
}

// findCycle locates one cycle among the vertices the sort could not emit.
func (d *DirectedAcyclicGraph[T]) findCycle(pending map[T]int) []T {
	var stuck []*Vertex[T]
	for id, n := range pending {
		if n > 0 {
			stuck = append(stuck, d.Vertices[id])
		}
	}
	sort.Slice(stuck, func(i, j int) bool { return stuck[i].Order < stuck[j].Order })

	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[T]int, len(stuck))
	var stack []T
	var visit func(v *Vertex[T]) []T
	visit = func(v *Vertex[T]) []T {
		state[v.ID] = onStack
		stack = append(stack, v.ID)
		for _, dep := range d.sortedDeps(v) {
			switch state[dep.ID] {
			case onStack:
				for i, id := range stack {
					if id == dep.ID {
						cycle := append([]T(nil), stack[i:]...)
						return append(cycle, dep.ID)
					}
				}
			case unvisited:
				if pending[dep.ID] == 0 {
					continue
				}
				if c := visit(dep); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[v.ID] = done
		return nil
	}
	for _, v := range stuck {
		if state[v.ID] == unvisited {
			if c := visit(v); c != nil {
				return c
			}
		}
	}
	return nil
}

func (d *DirectedAcyclicGraph[T]) sortedDeps(v *Vertex[T]) []*Vertex[T] {
	deps := make([]*Vertex[T], 0, len(v.DependsOn))
	for id := range v.DependsOn {
		deps = append(deps, d.Vertices[id])
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Order < deps[j].Order })
	return deps
}

type vertexHeap[T comparable] []*Vertex[T]

func (h vertexHeap[T]) Len() int           { return len(h) }
func (h vertexHeap[T]) Less(i, j int) bool { return h[i].Order < h[j].Order }
func (h vertexHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *vertexHeap[T]) Push(x any)        { *h = append(*h, x.(*Vertex[T])) }
func (h *vertexHeap[T]) Pop() any {
	old := *h
	v := old[len(old)-1]
	*h = old[:len(old)-1]
	return v
}

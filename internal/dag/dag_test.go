package dag

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDAGAddVertex(t *testing.T) {
	d := NewDirectedAcyclicGraph[string]()
	require.NoError(t, d.AddVertex("A", 1))
	assert.Error(t, d.AddVertex("A", 1), "duplicate vertex")
	assert.Len(t, d.Vertices, 1)
}

func TestDAGAddDependencies(t *testing.T) {
	d := NewDirectedAcyclicGraph[string]()
	require.NoError(t, d.AddVertex("A", 1))
	require.NoError(t, d.AddVertex("B", 2))

	assert.NoError(t, d.AddDependencies("A", []string{"B"}))
	assert.Error(t, d.AddDependencies("A", []string{"C"}), "unknown dependency")
	assert.Error(t, d.AddDependencies("C", []string{"A"}), "unknown vertex")
	assert.Len(t, d.Vertices["A"].DependsOn, 1, "failed call adds nothing")
}

func buildDAG(t *testing.T, nodes, edges string) *DirectedAcyclicGraph[string] {
	t.Helper()
	d := NewDirectedAcyclicGraph[string]()
	for i, node := range strings.Split(nodes, ",") {
		require.NoError(t, d.AddVertex(node, i))
	}
	if edges == "" {
		return d
	}
	// "X->Y" means Y depends on X.
	for _, edge := range strings.Split(edges, ",") {
		tokens := strings.SplitN(edge, "->", 2)
		require.NoError(t, d.AddDependencies(tokens[1], []string{tokens[0]}), "edge %q", edge)
	}
	return d
}

func TestDAGTopologicalSort(t *testing.T) {
	grid := []struct {
		Nodes string
		Edges string
		Want  string
	}{
		{Nodes: "A,B", Want: "A,B"},
		{Nodes: "A,B", Edges: "A->B", Want: "A,B"},
		{Nodes: "A,B", Edges: "B->A", Want: "B,A"},
		{Nodes: "A,B,C,D,E,F", Want: "A,B,C,D,E,F"},
		{Nodes: "A,B,C,D,E,F", Edges: "C->D", Want: "A,B,C,D,E,F"},
		{Nodes: "A,B,C,D,E,F", Edges: "D->C", Want: "A,B,D,C,E,F"},
		{Nodes: "A,B,C,D,E,F", Edges: "F->A,F->B,B->A", Want: "C,D,E,F,B,A"},
		{Nodes: "A,B,C,D,E,F", Edges: "B->A,C->A,D->B,D->C,F->E,A->E", Want: "D,B,C,A,F,E"},
	}

	for i, g := range grid {
		t.Run(fmt.Sprintf("[%d] nodes=%s,edges=%s", i, g.Nodes, g.Edges), func(t *testing.T) {
			d := buildDAG(t, g.Nodes, g.Edges)
			order, err := d.TopologicalSort()
			require.NoError(t, err)
			assert.Equal(t, g.Want, strings.Join(order, ","))
			checkDependenciesFirst(t, d, order)
		})
	}
}

func checkDependenciesFirst(t *testing.T, d *DirectedAcyclicGraph[string], order []string) {
	t.Helper()
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for _, id := range order {
		for dep := range d.Vertices[id].DependsOn {
			assert.Less(t, pos[dep], pos[id], "%s must follow its dependency %s in %v", id, dep, order)
		}
	}
}

func TestDAGTopologicalSort_Cycle(t *testing.T) {
	tests := []struct {
		name  string
		nodes string
		edges string
		want  []string
	}{
		{name: "two", nodes: "A,B", edges: "A->B,B->A", want: []string{"A", "B", "A"}},
		{name: "self", nodes: "A,B", edges: "B->B", want: []string{"B", "B"}},
		{name: "behind a dependent", nodes: "X,A,B,C", edges: "A->B,B->C,C->A,C->X", want: []string{"C", "B", "A", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := buildDAG(t, tt.nodes, tt.edges)
			_, err := d.TopologicalSort()
			require.Error(t, err)
			ce := AsCycleError[string](err)
			require.NotNil(t, ce, "unexpected error %T %v", err, err)
			assert.Equal(t, tt.want, ce.Cycle)
			assert.Contains(t, err.Error(), "dependency cycle")
		})
	}
}

func TestAsCycleError_Wrapped(t *testing.T) {
	err := fmt.Errorf("ordering: %w", &CycleError[int]{Cycle: []int{1, 1}})
	ce := AsCycleError[int](err)
	require.NotNil(t, ce)
	assert.Equal(t, []int{1, 1}, ce.Cycle)
	assert.Nil(t, AsCycleError[string](err), "type parameter must match")
}

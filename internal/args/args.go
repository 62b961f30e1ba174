// Package args extracts $(arg name) references from launch attribute values
// and orders argument declarations so that every argument follows the
// arguments its default and value refer to.
package args

import (
	"fmt"
	"regexp"

	"github.com/agentic-research/rosgraph/internal/dag"
	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/meta"
)

var argRef = regexp.MustCompile(`\$\(\s*arg\s+([A-Za-z_][A-Za-z0-9_]*)\s*\)`)

// References returns the argument names referenced in s, in order of
// appearance. Repeated references are kept.
func References(s string) []string {
	matches := argRef.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m[1]
	}
	return out
}

// Argument is one <arg> declaration.
type Argument struct {
	ID      string // model node ID, informational
	Name    string
	Default string
	Value   string
}

// DependsOn returns the names referenced by a's default and value.
func (a Argument) DependsOn() []string {
	return append(References(a.Default), References(a.Value)...)
}

// Order returns arguments with every argument placed after the arguments it
// references. Among arguments that are free to go next, the one declared
// first wins. References to names that are not declared here are ignored.
// A reference cycle (an argument referring to itself included) yields a
// *dag.CycleError[string] listing the argument names.
func Order(arguments []Argument) ([]Argument, error) {
	d := dag.NewDirectedAcyclicGraph[int]()
	byName := make(map[string][]int, len(arguments))
	for i, a := range arguments {
		if err := d.AddVertex(i, i); err != nil {
			return nil, err
		}
		byName[a.Name] = append(byName[a.Name], i)
	}
	for i, a := range arguments {
		var deps []int
		for _, ref := range a.DependsOn() {
			deps = append(deps, byName[ref]...)
		}
		if err := d.AddDependencies(i, deps); err != nil {
			return nil, err
		}
	}

	order, err := d.TopologicalSort()
	if err != nil {
		if ce := dag.AsCycleError[int](err); ce != nil {
			names := make([]string, len(ce.Cycle))
			for i, idx := range ce.Cycle {
				names[i] = arguments[idx].Name
			}
			return nil, &dag.CycleError[string]{Cycle: names}
		}
		return nil, fmt.Errorf("ordering arguments: %w", err)
	}
	out := make([]Argument, len(order))
	for i, idx := range order {
		out[i] = arguments[idx]
	}
	return out, nil
}

// FromNodes collects the Argument nodes among nodes, keeping their order.
func FromNodes(g graph.Graph, nodes []*graph.Node) []Argument {
	var out []Argument
	for _, n := range nodes {
		if meta.Classify(g, n) != meta.Argument {
			continue
		}
		out = append(out, Argument{
			ID:      n.ID,
			Name:    meta.String(g, n, "name"),
			Default: meta.String(g, n, "default"),
			Value:   meta.String(g, n, "value"),
		})
	}
	return out
}

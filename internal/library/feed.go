// Package library rebuilds the node, test and include template libraries of
// a project from a package feed.
package library

import (
	"fmt"

	"github.com/agentic-research/rosgraph/api"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

var (
	packagesPath = jp.MustParseString("$[*]")
	wrappedPath  = jp.MustParseString("$.packages[*]")
	nodesPath    = jp.MustParseString("$.nodes[*]")
	launchPath   = jp.MustParseString("$.launch_files[*].relative_path")
)

// ParseFeed decodes a library feed: a JSON list of packages, an object
// holding that list under "packages", or a single package object. Any other
// object is an error, so a malformed feed never reads as an empty one.
func ParseFeed(data []byte) ([]api.Package, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("library: parse feed: %w", err)
	}
	var entries []any
	switch d := doc.(type) {
	case []any:
		entries = packagesPath.Get(doc)
	case map[string]any:
		switch list := d["packages"].(type) {
		case []any:
			entries = wrappedPath.Get(doc)
		case nil:
			if _, single := d["package"]; !single {
				return nil, fmt.Errorf("library: feed object has neither packages nor package")
			}
			entries = []any{d}
		default:
			return nil, fmt.Errorf("library: packages must be a list, got %T", list)
		}
	default:
		return nil, fmt.Errorf("library: feed must be a list of packages, got %T", doc)
	}

	out := make([]api.Package, 0, len(entries))
	for i, e := range entries {
		obj, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("library: package %d: want object, got %T", i, e)
		}
		name, _ := obj["package"].(string)
		if name == "" {
			return nil, fmt.Errorf("library: package %d: missing package name", i)
		}
		pkg := api.Package{Name: name}
		for j, n := range nodesPath.Get(obj) {
			nobj, ok := n.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("library: package %s: node %d: want object, got %T", name, j, n)
			}
			node, _ := nobj["node"].(string)
			if node == "" {
				return nil, fmt.Errorf("library: package %s: node %d: missing node name", name, j)
			}
			pkg.Nodes = append(pkg.Nodes, api.NodeTemplate{
				Node:        node,
				Publishers:  stringList(nobj["publishers"]),
				Subscribers: stringList(nobj["subscribers"]),
			})
		}
		for _, p := range launchPath.Get(obj) {
			if rel, ok := p.(string); ok && rel != "" {
				pkg.LaunchFiles = append(pkg.LaunchFiles, api.LaunchFileRef{RelativePath: rel})
			}
		}
		out = append(out, pkg)
	}
	return out, nil
}

// stringList keeps the string members of a JSON list; null yields nil.
func stringList(v any) []string {
	list, _ := v.([]any)
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

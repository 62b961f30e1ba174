package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/agentic-research/rosgraph/api"
	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/meta"
	"github.com/agentic-research/rosgraph/internal/report"
)

// ErrLibraryMissing is returned when a library container cannot be found.
var ErrLibraryMissing = errors.New("library container missing")

// Update replaces the contents of the NodeLibrary, TestLibrary and
// IncludeLibrary containers found below rootID with templates built from
// feed. Containers are found by name. The store is left unchanged when one
// is missing. Existing instances of removed templates are rebased by the
// store onto the template's own prototype and keep their attribute values.
func Update(ctx context.Context, s graph.Store, rootID string, feed []api.Package) (report.Report, error) {
	var rep report.Report
	libs, err := findLibraries(s, rootID)
	if err != nil {
		return rep, err
	}
	protos, err := meta.Prototypes(s)
	if err != nil {
		return rep, fmt.Errorf("library: load prototypes: %w", err)
	}
	for _, c := range []meta.Category{meta.Node, meta.Test, meta.Include, meta.Publisher, meta.Subscriber} {
		if _, ok := protos[c]; !ok {
			return rep, fmt.Errorf("library: prototype %s: %w", c, graph.ErrNotFound)
		}
	}

	cs := &graph.ChangeSet{}
	for _, lib := range libs {
		children, err := s.ListChildren(lib)
		if err != nil {
			return rep, fmt.Errorf("library: list %q: %w", lib, err)
		}
		for _, c := range children {
			cs.Delete(c)
		}
	}
	taken := func(id string) bool {
		_, err := s.GetNode(id)
		return err == nil
	}

	nodeLib, testLib, includeLib := libs[0], libs[1], libs[2]
	for _, pkg := range feed {
		for _, nt := range pkg.Nodes {
			node := cs.Create(nodeLib, "node", protos[meta.Node], taken)
			node.Attributes["name"] = nt.Node
			node.Attributes["type"] = nt.Node
			node.Attributes["pkg"] = pkg.Name

			test := cs.Create(testLib, "test", protos[meta.Test], taken)
			test.Attributes["testName"] = nt.Node
			test.Attributes["name"] = "test_" + nt.Node
			test.Attributes["type"] = nt.Node
			test.Attributes["pkg"] = pkg.Name

			for _, owner := range []*graph.Node{node, test} {
				for _, p := range nt.Publishers {
					cs.Create(owner.ID, "pub", protos[meta.Publisher], taken).Attributes["name"] = p
				}
				for _, sub := range nt.Subscribers {
					cs.Create(owner.ID, "sub", protos[meta.Subscriber], taken).Attributes["name"] = sub
				}
			}
		}
		for _, lf := range pkg.LaunchFiles {
			inc := cs.Create(includeLib, "include", protos[meta.Include], taken)
			inc.Attributes["name"] = fmt.Sprintf("$(find %s)/%s", pkg.Name, lf.RelativePath)
		}
	}

	if err := s.Apply(ctx, cs); err != nil {
		return rep, fmt.Errorf("library: apply %s: %w", cs, err)
	}
	rep.Deleted = len(cs.Deletes)
	rep.Created = len(cs.Creates)
	return rep, nil
}

// findLibraries returns the IDs of the node, test and include libraries,
// in that order: the first node below rootID carrying each name.
func findLibraries(g graph.Graph, rootID string) ([3]string, error) {
	want := [3]string{meta.NodeLibrary, meta.TestLibrary, meta.IncludeLibrary}
	var found [3]string
	var ok [3]bool
	err := graph.Walk(g, rootID, func(n *graph.Node) error {
		if n.ID == meta.MetaID {
			return graph.SkipChildren
		}
		name, _ := n.Attributes["name"].(string)
		for i, w := range want {
			if !ok[i] && name == w {
				found[i], ok[i] = n.ID, true
				return graph.SkipChildren
			}
		}
		return nil
	})
	if err != nil {
		return found, fmt.Errorf("library: traverse %q: %w", rootID, err)
	}
	for i, w := range want {
		if !ok[i] {
			return found, fmt.Errorf("library: %s: %w", w, ErrLibraryMissing)
		}
	}
	return found, nil
}

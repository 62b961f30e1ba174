// Package linter checks a launch model for user errors that do not stop
// export or connection but produce launch files roslaunch rejects or
// misbehaves on.
package linter

import (
	"context"
	"fmt"
	"sort"

	"github.com/agentic-research/rosgraph/internal/args"
	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/meta"
	"github.com/agentic-research/rosgraph/internal/names"
	"github.com/agentic-research/rosgraph/internal/report"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/yaml"
)

// Lint checks the subtree below rootID:
//   - Node names and Test test names must resolve to distinct names
//   - an Argument declares a default or a value, not both
//   - the arguments declared in one scope must not reference each other
//     in a cycle
//   - rosparam bodies must be valid YAML
//
// Library templates and prototypes are not checked.
func Lint(ctx context.Context, g graph.Graph, rootID string) ([]report.Diagnostic, error) {
	l := &linter{g: g, owners: make(map[string][]string)}
	err := graph.Walk(g, rootID, func(n *graph.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if skipped(n.ID) {
			return graph.SkipChildren
		}
		return l.visit(ctx, n)
	})
	if err != nil {
		return nil, fmt.Errorf("lint %q: %w", rootID, err)
	}
	l.duplicates()
	return l.diags, nil
}

func skipped(id string) bool {
	switch id {
	case meta.MetaID, meta.LibraryID(meta.NodeLibrary), meta.LibraryID(meta.TestLibrary), meta.LibraryID(meta.IncludeLibrary):
		return true
	}
	return false
}

type linter struct {
	g      graph.Graph
	diags  []report.Diagnostic
	owners map[string][]string // resolved name → Node/Test IDs
	order  []string
}

func (l *linter) add(sev report.Severity, id, format string, a ...any) {
	l.diags = append(l.diags, report.Diagnostic{Severity: sev, NodeID: id, Message: fmt.Sprintf(format, a...)})
}

func (l *linter) visit(ctx context.Context, n *graph.Node) error {
	switch meta.Classify(l.g, n) {
	case meta.Node:
		l.claim(names.Resolve(l.g, n), n.ID)
	case meta.Test:
		l.claim(names.ResolveKey(l.g, n, "testName"), n.ID)
	case meta.Argument:
		if meta.String(l.g, n, "default") != "" && meta.String(l.g, n, "value") != "" {
			l.add(report.Error, n.ID, "argument %q declares both default and value", meta.String(l.g, n, "name"))
		}
	case meta.RosParamBody:
		return l.checkYAML(ctx, n)
	}
	return l.checkArguments(n)
}

func (l *linter) claim(name, id string) {
	if name == "" {
		return
	}
	if _, ok := l.owners[name]; !ok {
		l.order = append(l.order, name)
	}
	l.owners[name] = append(l.owners[name], id)
}

func (l *linter) duplicates() {
	for _, name := range l.order {
		ids := l.owners[name]
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids[1:])
		for _, id := range ids[1:] {
			l.add(report.Error, id, "name %q already used by %s", name, ids[0])
		}
	}
}

// checkArguments reports a reference cycle among the arguments declared
// directly below scope.
func (l *linter) checkArguments(scope *graph.Node) error {
	children, err := graph.Children(l.g, scope.ID)
	if err != nil {
		return err
	}
	declared := args.FromNodes(l.g, children)
	if len(declared) == 0 {
		return nil
	}
	if _, err := args.Order(declared); err != nil {
		l.add(report.Warning, scope.ID, "%v", err)
	}
	return nil
}

func (l *linter) checkYAML(ctx context.Context, n *graph.Node) error {
	text := meta.String(l.g, n, meta.BodyKey)
	if text == "" {
		return nil
	}
	parser := sitter.NewParser()
	parser.SetLanguage(yaml.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, []byte(text))
	if err != nil {
		return fmt.Errorf("parse rosparam body %s: %w", n.ID, err)
	}
	root := tree.RootNode()
	if root == nil || !root.HasError() {
		return nil
	}
	var bad []*sitter.Node
	collectErrors(root, &bad)
	if len(bad) == 0 {
		bad = append(bad, root)
	}
	for _, b := range bad {
		msg := "invalid YAML"
		if b.IsMissing() {
			msg = fmt.Sprintf("invalid YAML: missing %s", b.Type())
		}
		l.diags = append(l.diags, report.Diagnostic{
			Severity: report.Error,
			NodeID:   n.ID,
			Message:  msg,
			Line:     b.StartPoint().Row + 1,
			Column:   b.StartPoint().Column + 1,
		})
	}
	return nil
}

// collectErrors gathers the ERROR and MISSING nodes of a tree.
func collectErrors(node *sitter.Node, out *[]*sitter.Node) {
	if node.IsError() || node.IsMissing() {
		*out = append(*out, node)
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			collectErrors(child, out)
		}
	}
}

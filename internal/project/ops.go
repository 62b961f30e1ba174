package project

import (
	"context"
	"fmt"
	"io"

	"github.com/agentic-research/rosgraph/internal/connect"
	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/ingest"
	"github.com/agentic-research/rosgraph/internal/launch"
	"github.com/agentic-research/rosgraph/internal/linter"
	"github.com/agentic-research/rosgraph/internal/meta"
	"github.com/agentic-research/rosgraph/internal/report"
)

// LaunchFiles returns the IDs of the launch files that are not nested in
// another launch file, in model order.
func (p *Project) LaunchFiles() ([]string, error) {
	var ids []string
	err := graph.Walk(p.Store, graph.RootID, func(n *graph.Node) error {
		if n.ID == meta.MetaID {
			return graph.SkipChildren
		}
		if meta.Classify(p.Store, n) == meta.LaunchFile {
			ids = append(ids, n.ID)
			return graph.SkipChildren
		}
		return nil
	})
	return ids, err
}

// Import parses a launch file from r and adds it below the project root.
// name is used when the markup does not name the launch file.
func (p *Project) Import(ctx context.Context, name string, r io.Reader) (string, report.Report, error) {
	root, err := launch.Parse(r)
	if err != nil {
		return "", report.Report{}, fmt.Errorf("import %s: %w", name, err)
	}
	if root.Attributes == nil {
		root.Attributes = map[string]string{}
	}
	if root.Attributes["name"] == "" {
		root.Attributes["name"] = name
	}
	return ingest.NewImporter(p.Store).Import(ctx, graph.RootID, root)
}

// Connect derives the Topic edges of launchID, or of every top-level
// launch file when launchID is empty.
func (p *Project) Connect(ctx context.Context, launchID string) (report.Report, error) {
	ids := []string{launchID}
	if launchID == "" {
		var err error
		if ids, err = p.LaunchFiles(); err != nil {
			return report.Report{}, err
		}
	}
	var rep report.Report
	resolver := connect.NewResolver(p.Store)
	for _, id := range ids {
		r, err := resolver.Resolve(ctx, id)
		rep.Merge(r)
		if err != nil {
			return rep, err
		}
	}
	return rep, nil
}

// Check lints every top-level launch file, or only rootID when given.
func (p *Project) Check(ctx context.Context, rootID string) ([]report.Diagnostic, error) {
	ids := []string{rootID}
	if rootID == "" {
		var err error
		if ids, err = p.LaunchFiles(); err != nil {
			return nil, err
		}
	}
	var diags []report.Diagnostic
	for _, id := range ids {
		d, err := linter.Lint(ctx, p.Store, id)
		if err != nil {
			return diags, err
		}
		diags = append(diags, d...)
	}
	return diags, nil
}

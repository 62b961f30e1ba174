// Package artifact writes the launch files generated from a model into a
// billy filesystem and serves that filesystem over NFS.
package artifact

import (
	"context"
	"fmt"
	"sort"

	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/launch"
	"github.com/agentic-research/rosgraph/internal/meta"
	"github.com/agentic-research/rosgraph/internal/report"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Writer renders launch files into FS.
type Writer struct {
	FS billy.Filesystem
}

// NewWriter returns a Writer that writes into fs.
func NewWriter(fs billy.Filesystem) *Writer {
	return &Writer{FS: fs}
}

// Write serializes the LaunchFile launchID and stores it under its
// sanitized model name. It returns the file name.
func (w *Writer) Write(g graph.Graph, launchID string) (string, report.Report, error) {
	n, err := g.GetNode(launchID)
	if err != nil {
		return "", report.Report{}, fmt.Errorf("write %q: %w", launchID, err)
	}
	text, rep := launch.Serialize(g, launchID)
	name := launch.FileName(meta.String(g, n, "name"))
	if err := util.WriteFile(w.FS, name, []byte(text), 0o644); err != nil {
		return "", rep, fmt.Errorf("write %s: %w", name, err)
	}
	return name, rep, nil
}

// WriteAll writes every LaunchFile below rootID, nested ones included. Two
// models that map onto the same file name are reported; the one written
// last wins.
func (w *Writer) WriteAll(ctx context.Context, g graph.Graph, rootID string) ([]string, report.Report, error) {
	var rep report.Report
	var ids []string
	err := graph.Walk(g, rootID, func(n *graph.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if n.ID == meta.MetaID {
			return graph.SkipChildren
		}
		if meta.Classify(g, n) == meta.LaunchFile {
			ids = append(ids, n.ID)
		}
		return nil
	})
	if err != nil {
		return nil, rep, err
	}

	owner := make(map[string]string, len(ids))
	var files []string
	for _, id := range ids {
		name, r, err := w.Write(g, id)
		rep.Merge(r)
		if err != nil {
			return files, rep, err
		}
		if prev, dup := owner[name]; dup {
			rep.Warnf(id, "%s overwrites the file written for %s", name, prev)
		} else {
			files = append(files, name)
		}
		owner[name] = id
	}
	sort.Strings(files)
	return files, rep, nil
}

// Package report collects the non-fatal findings of a resolution, export or
// check run.
package report

import (
	"fmt"
	"strings"
)

type Severity uint8

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Diagnostic is one finding, attached to the node it concerns.
type Diagnostic struct {
	Severity Severity
	NodeID   string
	Message  string
	// Line and Column locate the finding inside a multi-line attribute
	// (1-based); zero when not applicable.
	Line, Column uint32
}

func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Severity.String())
	if d.NodeID != "" {
		fmt.Fprintf(&b, " %s", d.NodeID)
	}
	if d.Line > 0 {
		fmt.Fprintf(&b, ":%d:%d", d.Line, d.Column)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// Report is the outcome of a run: diagnostics plus counters of items that
// were skipped and of nodes deleted and created.
type Report struct {
	Diagnostics []Diagnostic
	Skipped     int
	Deleted     int
	Created     int
}

func (r *Report) Add(sev Severity, nodeID, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Severity: sev,
		NodeID:   nodeID,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *Report) Warnf(nodeID, format string, args ...any) {
	r.Add(Warning, nodeID, format, args...)
}

func (r *Report) Errorf(nodeID, format string, args ...any) {
	r.Add(Error, nodeID, format, args...)
}

// Skip counts an item that could not be processed and records why.
func (r *Report) Skip(nodeID, format string, args ...any) {
	r.Skipped++
	r.Add(Info, nodeID, format, args...)
}

// HasErrors reports whether any diagnostic has Error severity.
func (r *Report) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Merge appends other's diagnostics and adds its counters.
func (r *Report) Merge(other Report) {
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
	r.Skipped += other.Skipped
	r.Deleted += other.Deleted
	r.Created += other.Created
}

func (r Report) String() string {
	return fmt.Sprintf("%d deleted, %d created, %d skipped, %d diagnostics",
		r.Deleted, r.Created, r.Skipped, len(r.Diagnostics))
}

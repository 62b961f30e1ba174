package project

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/meta"
	"github.com/agentic-research/rosgraph/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pairLaunch = `<launch>
  <node name="talker" pkg="demo" type="talker.py"/>
  <node name="talker" pkg="demo" type="listener.py"/>
</launch>
`

func newProject(t *testing.T) *Project {
	t.Helper()
	p, err := Create(context.Background(), filepath.Join(t.TempDir(), "p.json"), "p")
	require.NoError(t, err)
	return p
}

func TestProject_ImportCheckConnect(t *testing.T) {
	ctx := context.Background()
	p := newProject(t)

	id, rep, err := p.Import(ctx, "pair", strings.NewReader(pairLaunch))
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Created)

	lf, err := p.Store.GetNode(id)
	require.NoError(t, err)
	assert.Equal(t, "pair", lf.Attributes["name"])

	ids, err := p.LaunchFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)

	diags, err := p.Check(ctx, "")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, report.Error, diags[0].Severity)

	children, err := graph.Children(p.Store, id)
	require.NoError(t, err)
	require.Len(t, children, 2)
	p.Store.AddNode(&graph.Node{
		ID: children[0].ID + "/p", Base: meta.PrototypeID(meta.Publisher),
		Attributes: map[string]any{"name": "chatter"},
	})
	p.Store.AddNode(&graph.Node{
		ID: children[1].ID + "/s", Base: meta.PrototypeID(meta.Subscriber),
		Attributes: map[string]any{"name": "chatter"},
	})

	rep, err = p.Connect(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Created)
}

func TestProject_ImportSyntaxError(t *testing.T) {
	p := newProject(t)
	_, _, err := p.Import(context.Background(), "bad", strings.NewReader("<launch><node></launch>"))
	assert.Error(t, err)
}

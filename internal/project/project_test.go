package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOpenSave(t *testing.T) {
	for _, file := range []string{"robot.db", "robot.json"} {
		t.Run(file, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), file)

			p, err := Create(ctx, path, "robot")
			require.NoError(t, err)
			p.Store.AddNode(&graph.Node{
				ID:         "/l",
				Base:       meta.PrototypeID(meta.LaunchFile),
				Attributes: map[string]any{"name": "main", "x": 1.5, "flag": true},
			})
			require.NoError(t, p.Save(ctx))
			require.NoError(t, p.Close())

			q, err := Open(ctx, path)
			require.NoError(t, err)
			defer func() { _ = q.Close() }()

			root, err := q.Store.GetNode(graph.RootID)
			require.NoError(t, err)
			assert.Equal(t, "robot", root.Attributes["name"])

			l, err := q.Store.GetNode("/l")
			require.NoError(t, err)
			assert.Equal(t, meta.LaunchFile, meta.Classify(q.Store, l))
			assert.Equal(t, map[string]any{"name": "main", "x": 1.5, "flag": true}, l.Attributes)
			assert.Equal(t, p.Store.Len(), q.Store.Len())
		})
	}
}

func TestCreate_Exists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	_, err := Create(context.Background(), path, "robot")
	assert.ErrorIs(t, err, ErrExists)
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	_, err := Open(ctx, filepath.Join(dir, "missing.db"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(dir, "missing.db"))
	assert.ErrorIs(t, err, os.ErrNotExist, "opening must not create the database")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = Open(ctx, bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"version":"v1","nodes":[]}`), 0o644))
	_, err = Open(ctx, empty)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

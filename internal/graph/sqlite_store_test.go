package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "project.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	src := newTestStore()
	src.AddNode(&Node{
		ID:         "/a/b/t",
		Attributes: map[string]any{"name": "topic", "required": false, "timeout": 12.5},
		Pointers:   map[string]string{"src": "/a", "dst": "/inst"},
	})
	require.NoError(t, store.Save(ctx, src))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, src.Snapshot(), loaded.Snapshot())

	n, err := loaded.GetNode("/a/b/t")
	require.NoError(t, err)
	assert.Equal(t, false, n.Attributes["required"])
	assert.Equal(t, 12.5, n.Attributes["timeout"])
	assert.Equal(t, []string{"/inst"}, loaded.Instances("/proto"))
}

func TestSQLiteStore_SaveReplacesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "project.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, newTestStore()))

	smaller := NewMemoryStore()
	smaller.AddNode(&Node{ID: RootID})
	smaller.AddNode(&Node{ID: "/only"})
	require.NoError(t, store.Save(ctx, smaller))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	children, err := loaded.ListChildren(RootID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/only"}, children)
}

func TestSQLiteStore_SaveHonorsCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.db")
	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Save(context.Background(), newTestStore()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, store.Save(ctx, NewMemoryStore()))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, loaded.Len(), "failed save keeps previous snapshot")
}

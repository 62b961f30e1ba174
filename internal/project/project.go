// Package project opens and saves project files. A ".json" path holds a
// Document; any other path is a SQLite database.
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/rosgraph/api"
	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/meta"
)

// ErrExists is returned by Create when the project file is already there.
var ErrExists = errors.New("project already exists")

// ErrNotInitialized is returned by Open for a file without a project root.
var ErrNotInitialized = errors.New("project not initialized")

// Project is a loaded project file. Commands mutate Store and call Save.
type Project struct {
	Path  string
	Store *graph.MemoryStore
	db    *graph.SQLiteStore
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Create writes a fresh project named name at path.
func Create(ctx context.Context, path, name string) (*Project, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("create %s: %w", path, ErrExists)
	}
	p := &Project{Path: path, Store: meta.NewProject(name)}
	if !isJSON(path) {
		db, err := graph.OpenSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		p.db = db
	}
	if err := p.Save(ctx); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

// Open loads the project at path.
func Open(ctx context.Context, path string) (*Project, error) {
	p := &Project{Path: path}
	if isJSON(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("open project: %w", err)
		}
		var doc api.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if p.Store, err = graph.FromDocument(&doc); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	} else {
		// sql.Open would create a missing database silently.
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open project: %w", err)
		}
		db, err := graph.OpenSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		p.db = db
		if p.Store, err = db.Load(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if _, err := p.Store.GetNode(graph.RootID); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNotInitialized)
	}
	return p, nil
}

// Save writes Store back to Path.
func (p *Project) Save(ctx context.Context) error {
	if p.db != nil {
		return p.db.Save(ctx, p.Store)
	}
	data, err := json.MarshalIndent(graph.ToDocument(p.Store), "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", p.Path, err)
	}
	if err := os.WriteFile(p.Path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// Close releases the database handle, if any. It does not save.
func (p *Project) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists a project as one row per node. It is a snapshot
// store: Load reads the whole tree into a MemoryStore and Save replaces the
// stored tree with a MemoryStore's contents inside a single transaction, so
// a failed save leaves the previous snapshot intact.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLiteStore opens (creating if needed) the project database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	// journal_mode=DELETE: after commit, the .db file is self-contained.
	if _, err := db.Exec("PRAGMA journal_mode=DELETE"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		parent_id TEXT,
		base_id TEXT NOT NULL DEFAULT '',
		seq INTEGER NOT NULL,
		attributes JSON,
		pointers JSON
	);
	CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id, seq);
	CREATE INDEX IF NOT EXISTS idx_nodes_base ON nodes(base_id);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Load reads the stored tree into a new MemoryStore.
func (s *SQLiteStore) Load(ctx context.Context) (*MemoryStore, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, base_id, attributes, pointers FROM nodes ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	m := NewMemoryStore()
	for rows.Next() {
		var (
			id, base        string
			attrsJSON, ptrs sql.NullString
		)
		if err := rows.Scan(&id, &base, &attrsJSON, &ptrs); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		n := &Node{ID: id, Base: base}
		if attrsJSON.Valid && attrsJSON.String != "" {
			var attrs map[string]any
			if err := json.Unmarshal([]byte(attrsJSON.String), &attrs); err != nil {
				return nil, fmt.Errorf("node %q attributes: %w", id, err)
			}
			n.Attributes = normalizeAttributes(attrs)
		}
		if ptrs.Valid && ptrs.String != "" {
			if err := json.Unmarshal([]byte(ptrs.String), &n.Pointers); err != nil {
				return nil, fmt.Errorf("node %q pointers: %w", id, err)
			}
		}
		m.AddNode(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return m, nil
}

// Save replaces the stored tree with the contents of m.
func (s *SQLiteStore) Save(ctx context.Context, m *MemoryStore) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op once committed

	if _, err := tx.ExecContext(ctx, "DELETE FROM nodes"); err != nil {
		return fmt.Errorf("clear nodes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (id, parent_id, base_id, seq, attributes, pointers)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare node insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for seq, n := range m.Snapshot() {
		var parentID *string
		if pid, ok := ParentID(n.ID); ok {
			parentID = &pid
		}
		var attrs, ptrs []byte
		if len(n.Attributes) > 0 {
			if attrs, err = json.Marshal(n.Attributes); err != nil {
				return fmt.Errorf("encode %q attributes: %w", n.ID, err)
			}
		}
		if len(n.Pointers) > 0 {
			if ptrs, err = json.Marshal(n.Pointers); err != nil {
				return fmt.Errorf("encode %q pointers: %w", n.ID, err)
			}
		}
		if _, err := stmt.ExecContext(ctx, n.ID, parentID, n.Base, seq, nullable(attrs), nullable(ptrs)); err != nil {
			return fmt.Errorf("insert %q: %w", n.ID, err)
		}
	}
	return tx.Commit()
}

func nullable(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

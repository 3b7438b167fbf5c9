// Package store persists the learned value table between runs. The table is
// keyed by the state-layout signature: a table saved under one discretization
// layout is never loaded into another.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/sangeeta1998/het-sys/engine"

	_ "modernc.org/sqlite"
)

// ErrLayoutMismatch is returned when the persisted table was saved under a
// different state-space layout than the current build's.
var ErrLayoutMismatch = errors.New("persisted value table has a different state layout")

// SQLiteStore holds the value table in a local SQLite database.
type SQLiteStore struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteStore creates a store backed by the database file at path.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and creates the schema. Idempotent.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("store: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	s.db = db
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS value_table (
			state    TEXT NOT NULL,
			strategy TEXT NOT NULL,
			value    REAL NOT NULL,
			PRIMARY KEY (state, strategy)
		);
	`)
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errors.New("store: not initialized; call Init first")
	}
	return s.db, nil
}

// SaveTable replaces the persisted table with the given entries and records
// the layout signature they were exported under.
func (s *SQLiteStore) SaveTable(ctx context.Context, signature string, entries []engine.ValueEntry) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES ('layout', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, signature); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM value_table`); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO value_table (state, strategy, value) VALUES (?, ?, ?)
		`, e.StateKey, e.Strategy, e.Value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadTable returns the persisted entries, verifying the layout signature
// first. An empty database (no layout recorded) returns nil entries and no
// error so a fresh run can proceed.
func (s *SQLiteStore) LoadTable(ctx context.Context, signature string) ([]engine.ValueEntry, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var stored string
	err = db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'layout'`).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if stored != signature {
		return nil, fmt.Errorf("%w: stored %q, current %q", ErrLayoutMismatch, stored, signature)
	}

	rows, err := db.QueryContext(ctx, `SELECT state, strategy, value FROM value_table ORDER BY state, strategy`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []engine.ValueEntry
	for rows.Next() {
		var e engine.ValueEntry
		if err := rows.Scan(&e.StateKey, &e.Strategy, &e.Value); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

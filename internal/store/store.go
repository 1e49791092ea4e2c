// Package store persists match runs and their coordinate maps.
// Runs are stored in DuckDB, or in SQLite when the path ends in .sqlite
// or .sqlite3.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	_ "modernc.org/sqlite"
)

// Store manages a database connection holding match runs.
type Store struct {
	db     *sql.DB
	path   string
	driver string
}

// driverFor picks the database driver from the file extension.
func driverFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".sqlite3":
		return "sqlite"
	}
	return "duckdb"
}

// Open opens or creates a database at the given path.
// Use an empty string for an in-memory DuckDB database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	driver := driverFor(path)
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	s := &Store{db: db, path: path, driver: driver}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the name of the database driver in use.
func (s *Store) Driver() string {
	return s.driver
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR PRIMARY KEY,
			created_at VARCHAR,
			queries_path VARCHAR,
			queries_size BIGINT,
			queries_modtime VARCHAR,
			targets_path VARCHAR,
			targets_size BIGINT,
			targets_modtime VARCHAR,
			min_identity DOUBLE,
			base BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			run_id VARCHAR,
			ord BIGINT,
			query_id VARCHAR,
			original_id VARCHAR,
			target_id VARCHAR,
			reversed BOOLEAN,
			score DOUBLE,
			identity DOUBLE,
			matches BIGINT,
			aligned_length BIGINT,
			PRIMARY KEY (run_id, query_id)
		)`,
		`CREATE TABLE IF NOT EXISTS coord_maps (
			run_id VARCHAR,
			query_id VARCHAR,
			target_id VARCHAR,
			idx BIGINT,
			pos BIGINT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

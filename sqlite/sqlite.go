// Package sqlite provides SQLite-based storage for parsed documents and the
// batch manifest.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; batch workers share one connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL is unavailable for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	db.db = conn

	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// createSchema creates the database tables if they don't exist.
// Documents are stored as JSON alongside the columns used for filtering.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			name TEXT NOT NULL,
			section INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			complexity TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL DEFAULT '',
			parse_version TEXT NOT NULL DEFAULT '',
			parsed_at TEXT NOT NULL,
			body TEXT NOT NULL,
			PRIMARY KEY (name, section)
		);

		CREATE TABLE IF NOT EXISTS manifest (
			name TEXT NOT NULL,
			section INTEGER NOT NULL,
			content_hash TEXT NOT NULL,
			render_hash TEXT NOT NULL DEFAULT '',
			parse_version TEXT NOT NULL,
			run_id TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL,
			PRIMARY KEY (name, section)
		);

		CREATE INDEX IF NOT EXISTS idx_documents_complexity ON documents(complexity);
		CREATE INDEX IF NOT EXISTS idx_manifest_run_id ON manifest(run_id);
	`

	_, err := db.db.Exec(schema)
	return err
}

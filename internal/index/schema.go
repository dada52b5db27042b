// Package index provides SQLite-backed persistence for parsed dream
// entries, their metrics, and per-file diagnostics, with optional FTS5
// full-text search over entry content.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS files (
	path       TEXT PRIMARY KEY,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entries (
	source_file TEXT NOT NULL,
	source_id   TEXT NOT NULL DEFAULT '',
	date        TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL DEFAULT '',
	word_count  INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (source_file, source_id)
);

CREATE TABLE IF NOT EXISTS metrics (
	source_file TEXT NOT NULL,
	source_id   TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL,
	num_value   REAL NOT NULL DEFAULT 0,
	str_value   TEXT NOT NULL DEFAULT '',
	is_numeric  INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS diagnostics (
	source_file  TEXT NOT NULL,
	severity     TEXT NOT NULL,
	code         TEXT NOT NULL,
	message      TEXT NOT NULL,
	line         INTEGER NOT NULL DEFAULT 0,
	callout_path TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date);
CREATE INDEX IF NOT EXISTS idx_metrics_file ON metrics(source_file, source_id);
CREATE INDEX IF NOT EXISTS idx_diagnostics_file ON diagnostics(source_file);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

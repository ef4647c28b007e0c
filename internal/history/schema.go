// Package history journals validation runs in SQLite so callers can see how
// a deck's findings evolved, with optional FTS5 search over the messages.
package history

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS validation_runs (
	id             TEXT PRIMARY KEY,
	path           TEXT NOT NULL,
	slide_count    INTEGER NOT NULL DEFAULT 0,
	assets_checked INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS findings (
	run_id   TEXT NOT NULL REFERENCES validation_runs(id) ON DELETE CASCADE,
	kind     TEXT NOT NULL,
	position INTEGER NOT NULL,
	message  TEXT NOT NULL,
	UNIQUE(run_id, kind, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_path ON validation_runs(path, created_at);
CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
`

// Finding kinds.
const (
	KindError   = "error"
	KindWarning = "warning"
)

// DB wraps a sql.DB with journal-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

//go:build sqlite_fts5

package history

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS findings_fts USING fts5(
			run_id UNINDEXED,
			path UNINDEXED,
			kind UNINDEXED,
			message,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, runID, path, kind, message string) error {
	_, err := tx.Exec(`INSERT INTO findings_fts (run_id, path, kind, message) VALUES (?, ?, ?, ?)`,
		runID, path, kind, message)
	if err != nil {
		return fmt.Errorf("history: insert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, runID string) {
	_, _ = tx.Exec(`DELETE FROM findings_fts WHERE run_id = ?`, runID)
}

// Search performs an FTS5 full-text search over journaled findings. The
// query is matched as a single phrase, so FTS operators and punctuation in
// it are plain text.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if strings.TrimSpace(query) == "" {
		return []SearchResult{}, nil
	}
	rows, err := db.conn.Query(`
		SELECT f.run_id, f.path, f.kind, f.message, r.created_at
		FROM findings_fts f
		JOIN validation_runs r ON r.id = f.run_id
		WHERE findings_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, ftsPhrase(query), limit)
	if err != nil {
		return nil, fmt.Errorf("history: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.RunID, &r.Path, &r.Kind, &r.Message, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ftsPhrase quotes q as an FTS5 string; embedded quotes are doubled.
func ftsPhrase(q string) string {
	return `"` + strings.ReplaceAll(q, `"`, `""`) + `"`
}

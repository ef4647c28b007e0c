package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kristianernst/fast-slides/internal/models"
)

// SearchResult is one journaled finding matching a search query.
type SearchResult struct {
	RunID     string    `json:"run_id"`
	Path      string    `json:"path"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Journal defines the operations the project service needs. Consumers
// depend on it rather than on *DB.
type Journal interface {
	Record(r *models.ValidationReport) (models.ValidationRun, error)
	Recent(path string, limit int) ([]models.ValidationRun, error)
	Search(query string, limit int) ([]SearchResult, error)
	Prune(path string, keep int) (int, error)
	Close() error
}

// Verify *DB satisfies Journal at compile time.
var _ Journal = (*DB)(nil)

// Record stores a report as a new run with its findings in one transaction.
func (db *DB) Record(r *models.ValidationReport) (models.ValidationRun, error) {
	run := models.ValidationRun{
		ID:            uuid.NewString(),
		Path:          r.Path,
		SlideCount:    r.SlideCount,
		AssetsChecked: r.AssetsChecked,
		Errors:        append([]string{}, r.Errors...),
		Warnings:      append([]string{}, r.Warnings...),
		CreatedAt:     time.Now().UTC(),
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return models.ValidationRun{}, fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO validation_runs (id, path, slide_count, assets_checked, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Path, run.SlideCount, run.AssetsChecked, run.CreatedAt)
	if err != nil {
		return models.ValidationRun{}, fmt.Errorf("history: insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO findings (run_id, kind, position, message) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return models.ValidationRun{}, fmt.Errorf("history: prepare finding insert: %w", err)
	}
	defer stmt.Close()
	for kind, messages := range map[string][]string{KindError: run.Errors, KindWarning: run.Warnings} {
		for i, msg := range messages {
			if _, err := stmt.Exec(run.ID, kind, i, msg); err != nil {
				return models.ValidationRun{}, fmt.Errorf("history: insert finding: %w", err)
			}
			if err := ftsInsert(tx, run.ID, run.Path, kind, msg); err != nil {
				return models.ValidationRun{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return models.ValidationRun{}, fmt.Errorf("history: commit: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs for path, newest first.
func (db *DB) Recent(path string, limit int) ([]models.ValidationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id, path, slide_count, assets_checked, created_at
		FROM validation_runs
		WHERE path = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, path, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	out := []models.ValidationRun{}
	for rows.Next() {
		run := models.ValidationRun{Errors: []string{}, Warnings: []string{}}
		if err := rows.Scan(&run.ID, &run.Path, &run.SlideCount, &run.AssetsChecked, &run.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := db.loadFindings(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (db *DB) loadFindings(run *models.ValidationRun) error {
	rows, err := db.conn.Query(`
		SELECT kind, message FROM findings WHERE run_id = ? ORDER BY kind, position
	`, run.ID)
	if err != nil {
		return fmt.Errorf("history: findings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind, msg string
		if err := rows.Scan(&kind, &msg); err != nil {
			return err
		}
		if kind == KindError {
			run.Errors = append(run.Errors, msg)
		} else {
			run.Warnings = append(run.Warnings, msg)
		}
	}
	return rows.Err()
}

// Prune deletes all but the newest keep runs for path and returns how many
// were removed. A non-positive keep disables pruning.
func (db *DB) Prune(path string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.Query(`
		SELECT id FROM validation_runs
		WHERE path = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT -1 OFFSET ?
	`, path, keep)
	if err != nil {
		return 0, fmt.Errorf("history: prune select: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		stale = append(stale, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range stale {
		if err := deleteRun(tx, id); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("history: commit: %w", err)
	}
	return len(stale), nil
}

func deleteRun(tx *sql.Tx, id string) error {
	ftsDelete(tx, id)
	if _, err := tx.Exec(`DELETE FROM findings WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("history: delete findings: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM validation_runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("history: delete run: %w", err)
	}
	return nil
}

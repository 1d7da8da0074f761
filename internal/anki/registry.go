package anki

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// MarkerRegistry remembers which note types were created by this tool.
// AnkiConnect cannot store custom keys on a model, so the marker lives here,
// keyed by model ID, which survives renames.
type MarkerRegistry struct {
	db *sql.DB
}

// OpenMarkerRegistry opens or creates the registry database. ":memory:" keeps
// it in memory.
func OpenMarkerRegistry(dbPath string) (*MarkerRegistry, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create registry dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	r := &MarkerRegistry{db: db}
	if err := r.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *MarkerRegistry) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS note_type_markers (
  model_id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT NOT NULL
);
`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create markers table: %w", err)
	}
	return nil
}

func (r *MarkerRegistry) Mark(ctx context.Context, modelID int64, name string) error {
	const stmt = `
INSERT INTO note_type_markers (model_id, name, created_at)
VALUES (?, ?, ?)
ON CONFLICT(model_id) DO UPDATE SET
  name=excluded.name;
`
	if _, err := r.db.ExecContext(ctx, stmt, modelID, name, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("mark note type %d: %w", modelID, err)
	}
	return nil
}

func (r *MarkerRegistry) Unmark(ctx context.Context, modelID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM note_type_markers WHERE model_id = ?`, modelID); err != nil {
		return fmt.Errorf("unmark note type %d: %w", modelID, err)
	}
	return nil
}

// Marked returns the set of marked model IDs.
func (r *MarkerRegistry) Marked(ctx context.Context) (map[int64]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT model_id FROM note_type_markers`)
	if err != nil {
		return nil, fmt.Errorf("list markers: %w", err)
	}
	defer rows.Close()

	marked := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan marker: %w", err)
		}
		marked[id] = true
	}
	return marked, rows.Err()
}

func (r *MarkerRegistry) Close() error {
	return r.db.Close()
}

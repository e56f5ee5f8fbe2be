// Package history persists frame snapshots to a local SQLite
// database, so row counts and column summaries can be compared
// across reloads.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"gridwatch/internal/dataset"
	griderrors "gridwatch/internal/errors"
	"gridwatch/internal/logging"
)

// DefaultFilename is the default database filename.
const DefaultFilename = "history.db"

// Snapshot is one recorded observation of a frame.
type Snapshot struct {
	ID      int64
	TakenAt time.Time
	Frame   string
	Rows    int
	Bytes   int64
	Note    string
	// Summary is the parsed column summary taken with the snapshot.
	// Nil when the stored JSON cannot be parsed.
	Summary *dataset.Summary
}

// Store records and retrieves snapshots.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes the SQLite database at the given path, creating
// the schema on first use.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, griderrors.HistoryOpenError(path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, griderrors.HistoryOpenError(path, err)
	}
	// A single connection sidesteps table locking between writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.Debug("failed to set sqlite busy_timeout", "error", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.Debug("failed to set sqlite journal_mode", "error", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.Debug("failed to set sqlite synchronous", "error", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, griderrors.HistoryOpenError(path, err)
	}
	return s, nil
}

// OpenInDir opens the default history.db in the given directory.
func OpenInDir(dir string) (*Store, error) {
	return Open(filepath.Join(dir, DefaultFilename))
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		taken_at TEXT NOT NULL,
		frame TEXT NOT NULL,
		rows INTEGER NOT NULL,
		bytes INTEGER NOT NULL,
		note TEXT,
		summary TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_frame ON snapshots(frame, id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record summarizes the frame and persists the snapshot. The summary
// is computed under ctx, so a cancelled scan records nothing.
func (s *Store) Record(ctx context.Context, f *dataset.Frame, note string) (*Snapshot, error) {
	summary, err := f.Summarize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize %s: %w", f.Name(), err)
	}
	blob, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}

	takenAt := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (taken_at, frame, rows, bytes, note, summary) VALUES (?, ?, ?, ?, ?, ?)`,
		takenAt.Format(time.RFC3339Nano), f.Name(), f.Len(), f.Bytes(), note, string(blob),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot id: %w", err)
	}

	logging.Debug("snapshot recorded", "frame", f.Name(), "rows", f.Len(), "id", id)
	return &Snapshot{
		ID:      id,
		TakenAt: takenAt,
		Frame:   f.Name(),
		Rows:    f.Len(),
		Bytes:   f.Bytes(),
		Note:    note,
		Summary: summary,
	}, nil
}

// List returns snapshots newest first. An empty frame matches every
// frame; a limit of zero or less returns everything.
func (s *Store) List(ctx context.Context, frame string, limit int) ([]*Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}

	var (
		rows *sql.Rows
		err  error
	)
	if frame == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, taken_at, frame, rows, bytes, note, summary FROM snapshots ORDER BY id DESC LIMIT ?`,
			limit,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, taken_at, frame, rows, bytes, note, summary FROM snapshots WHERE frame = ? ORDER BY id DESC LIMIT ?`,
			frame, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snaps, nil
}

// Latest returns the newest snapshot for a frame, or nil when the
// frame has none.
func (s *Store) Latest(ctx context.Context, frame string) (*Snapshot, error) {
	snaps, err := s.List(ctx, frame, 1)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return snaps[0], nil
}

// Frames returns every frame name with at least one snapshot.
func (s *Store) Frames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT frame FROM snapshots ORDER BY frame`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot frames: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan frame name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list snapshot frames: %w", err)
	}
	return names, nil
}

// Count returns the total number of stored snapshots.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}

// Prune deletes all but the newest keep snapshots per frame and
// returns how many were removed. A keep of zero removes everything.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY frame ORDER BY id DESC) AS rn
				FROM snapshots
			) WHERE rn <= ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned snapshots: %w", err)
	}
	if removed > 0 {
		logging.Debug("snapshots pruned", "removed", removed, "keep", keep)
	}
	return removed, nil
}

// scanSnapshot reads one row from a snapshot SELECT. A summary that
// fails to parse is dropped; the snapshot metadata still comes back.
func scanSnapshot(rows *sql.Rows) (*Snapshot, error) {
	var (
		snap    Snapshot
		takenAt string
		summary sql.NullString
		note    sql.NullString
	)
	if err := rows.Scan(&snap.ID, &takenAt, &snap.Frame, &snap.Rows, &snap.Bytes, &note, &summary); err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	snap.Note = note.String

	t, err := time.Parse(time.RFC3339Nano, takenAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot time %q: %w", takenAt, err)
	}
	snap.TakenAt = t

	if summary.Valid && summary.String != "" {
		var parsed dataset.Summary
		if err := json.Unmarshal([]byte(summary.String), &parsed); err != nil {
			logging.Warn("snapshot summary unreadable", "id", snap.ID, "error", err)
		} else {
			snap.Summary = &parsed
		}
	}
	return &snap, nil
}

// Package history keeps a local log of pipeline runs in a SQLite database
// under the settings directory. Recording is strictly best-effort for
// callers: a broken history store must never fail a build, so the CLI logs
// append errors and moves on.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the database file inside the settings directory.
const FileName = "history.db"

// DefaultListLimit caps List when the caller passes no limit.
const DefaultListLimit = 20

// Record is one completed pipeline run.
type Record struct {
	RunID       string
	Mode        string
	InputPath   string
	OutputPath  string
	Outcome     string
	Errors      int
	Warnings    int
	Fingerprint string
	Commit      string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Duration returns the wall time of the recorded run.
func (r Record) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store is a SQLite-backed run log. Safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and if needed creates) the run log at dbPath.
// Use ":memory:" for an ephemeral store.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize run log schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		input_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		outcome TEXT NOT NULL,
		errors INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		fingerprint TEXT,
		commit_hash TEXT,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_run_id ON runs(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records one finished run.
func (s *Store) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, mode, input_path, output_path, outcome,
			errors, warnings, fingerprint, commit_hash, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Mode, rec.InputPath, rec.OutputPath, rec.Outcome,
		rec.Errors, rec.Warnings, rec.Fingerprint, rec.Commit,
		rec.StartedAt.Unix(), rec.FinishedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first. limit <= 0 applies
// DefaultListLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, mode, input_path, output_path, outcome,
			errors, warnings, fingerprint, commit_hash, started_at, finished_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query run records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var started, finished int64
		err := rows.Scan(&rec.RunID, &rec.Mode, &rec.InputPath, &rec.OutputPath,
			&rec.Outcome, &rec.Errors, &rec.Warnings, &rec.Fingerprint,
			&rec.Commit, &started, &finished)
		if err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		rec.StartedAt = time.Unix(started, 0)
		rec.FinishedAt = time.Unix(finished, 0)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run records: %w", err)
	}
	return records, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

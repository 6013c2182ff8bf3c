// Package history persists run outcomes to a local SQLite database.
// Recording is opt-in and best-effort: the tool's review semantics never
// depend on it, and a storage error must not fail a batch.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at TEXT NOT NULL,
	plan       TEXT NOT NULL,
	endpoint   TEXT NOT NULL,
	ok         INTEGER NOT NULL,
	failed     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS outcomes (
	run_id     INTEGER NOT NULL REFERENCES runs(id),
	position   INTEGER NOT NULL,
	hotspot    TEXT NOT NULL,
	resolution TEXT NOT NULL,
	label      TEXT NOT NULL,
	ok         INTEGER NOT NULL,
	error      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
`

// Store is a run-history database.
type Store struct {
	db *sql.DB
}

// Run is one recorded batch.
type Run struct {
	ID        int64
	StartedAt time.Time
	Plan      string
	Endpoint  string
	OK        int
	Failed    int
}

// Outcome is one recorded submission within a run.
type Outcome struct {
	Hotspot    string
	Resolution string
	Label      string
	OK         bool
	Error      string
}

// Open opens (or creates) the history database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("history: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores one run and its per-entry outcomes atomically and
// returns the new run ID.
func (s *Store) RecordRun(startedAt time.Time, planPath, endpoint string, outcomes []Outcome) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	ok, failed := 0, 0
	for _, o := range outcomes {
		if o.OK {
			ok++
		} else {
			failed++
		}
	}

	res, err := tx.Exec(
		`INSERT INTO runs (started_at, plan, endpoint, ok, failed) VALUES (?, ?, ?, ?, ?)`,
		startedAt.UTC().Format(time.RFC3339), planPath, endpoint, ok, failed,
	)
	if err != nil {
		return 0, fmt.Errorf("history: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: run id: %w", err)
	}

	for i, o := range outcomes {
		if _, err := tx.Exec(
			`INSERT INTO outcomes (run_id, position, hotspot, resolution, label, ok, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, i, o.Hotspot, o.Resolution, o.Label, o.OK, o.Error,
		); err != nil {
			return 0, fmt.Errorf("history: insert outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("history: commit: %w", err)
	}
	return runID, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, plan, endpoint, ok, failed FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var ts string
		if err := rows.Scan(&r.ID, &ts, &r.Plan, &r.Endpoint, &r.OK, &r.Failed); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.StartedAt, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("history: run %d: malformed started_at %q: %w", r.ID, ts, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunOutcomes returns a run's per-entry outcomes in submission order.
func (s *Store) RunOutcomes(runID int64) ([]Outcome, error) {
	rows, err := s.db.Query(
		`SELECT hotspot, resolution, label, ok, error FROM outcomes
		 WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var o Outcome
		if err := rows.Scan(&o.Hotspot, &o.Resolution, &o.Label, &o.OK, &o.Error); err != nil {
			return nil, fmt.Errorf("history: scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

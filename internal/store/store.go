// Package store persists harness outcomes in a sqlite database: one row per
// fixture/mode chain and one per executed step. The database outlives a
// single invocation so flaky pipelines can be compared across runs.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Step and run statuses as stored.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	fixture     TEXT NOT NULL,
	mode        TEXT NOT NULL,
	device      TEXT NOT NULL,
	status      TEXT NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS steps (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      INTEGER NOT NULL REFERENCES runs(id),
	node_id     TEXT NOT NULL,
	kind        TEXT NOT NULL,
	status      TEXT NOT NULL,
	exit_code   INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	log_tail    TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_steps_run ON steps(run_id);
`

// Store wraps the results database.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the results database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening results db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing results schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunRecord is one fixture/mode chain outcome.
type RunRecord struct {
	Name       string
	Fixture    string
	Mode       string
	Device     string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// StepRecord is one executed (or skipped) step within a run.
type StepRecord struct {
	NodeID   string
	Kind     string
	Status   string
	ExitCode int
	Duration time.Duration
	LogTail  string
	Error    string
}

// RecordRun inserts a run row and returns its ID for step records.
func (s *Store) RecordRun(r RunRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (name, fixture, mode, device, status, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Name, r.Fixture, r.Mode, r.Device, r.Status, r.StartedAt, r.FinishedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("recording run %q: %w", r.Name, err)
	}
	return res.LastInsertId()
}

// RecordStep inserts a step row under a previously recorded run.
func (s *Store) RecordStep(runID int64, step StepRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO steps (run_id, node_id, kind, status, exit_code, duration_ms, log_tail, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, step.NodeID, step.Kind, step.Status, step.ExitCode,
		step.Duration.Milliseconds(), step.LogTail, step.Error,
	)
	if err != nil {
		return fmt.Errorf("recording step %q: %w", step.NodeID, err)
	}
	return nil
}

// RunSummary is one row of the end-of-run summary.
type RunSummary struct {
	Name   string
	Mode   string
	Device string
	Status string
}

// Summary aggregates the stored outcomes of the latest harness invocation,
// identified by the run IDs passed in.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Runs    []RunSummary
}

// Summarize builds a Summary over the given run IDs.
func (s *Store) Summarize(runIDs []int64) (*Summary, error) {
	summary := &Summary{}
	for _, id := range runIDs {
		var row RunSummary
		err := s.db.QueryRow(
			`SELECT name, mode, device, status FROM runs WHERE id = ?`, id,
		).Scan(&row.Name, &row.Mode, &row.Device, &row.Status)
		if err != nil {
			return nil, fmt.Errorf("summarizing run %d: %w", id, err)
		}
		summary.Total++
		switch row.Status {
		case StatusPassed:
			summary.Passed++
		case StatusFailed:
			summary.Failed++
		case StatusSkipped:
			summary.Skipped++
		}
		summary.Runs = append(summary.Runs, row)
	}
	return summary, nil
}

// StepsForRun returns the recorded steps of a run in insertion order.
func (s *Store) StepsForRun(runID int64) ([]StepRecord, error) {
	rows, err := s.db.Query(
		`SELECT node_id, kind, status, exit_code, duration_ms, log_tail, error
		 FROM steps WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying steps for run %d: %w", runID, err)
	}
	defer rows.Close()

	var steps []StepRecord
	for rows.Next() {
		var step StepRecord
		var durationMs int64
		if err := rows.Scan(&step.NodeID, &step.Kind, &step.Status, &step.ExitCode,
			&durationMs, &step.LogTail, &step.Error); err != nil {
			return nil, err
		}
		step.Duration = time.Duration(durationMs) * time.Millisecond
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

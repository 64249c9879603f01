// Package state records import-run history in a local SQLite database.
//
// Every leapcsv import writes one run row: source file, target, table,
// record counts, timing and outcome. The schema is managed by embedded
// goose migrations.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	// sqlite driver for the state database.
	_ "modernc.org/sqlite"
)

// RunStatus describes the outcome of an import run.
type RunStatus string

const (
	// RunStatusRunning marks a run still in progress.
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted marks a successful run.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed marks a failed run.
	RunStatusFailed RunStatus = "failed"
)

// Run is one import run.
type Run struct {
	ID         string
	SourceFile string
	Target     string
	Table      string
	Records    int64
	Skipped    int64
	Status     RunStatus
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Duration returns the run's elapsed time, zero while it is running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store persists import runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the state database and runs pending
// migrations. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing connection without running migrations.
// Used by tests that mock the database.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying connection for read-only query tooling.
func (s *Store) DB() *sql.DB { return s.db }

// CreateRun inserts a new running import run and returns it.
func (s *Store) CreateRun(ctx context.Context, sourceFile, target, table string) (*Run, error) {
	run := &Run{
		ID:         uuid.New().String(),
		SourceFile: sourceFile,
		Target:     target,
		Table:      table,
		Status:     RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_runs (id, source_file, target, table_name, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourceFile, run.Target, run.Table, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run finished with its final counts.
func (s *Store) CompleteRun(ctx context.Context, id string, records, skipped int64) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE import_runs
		 SET status = ?, records = ?, skipped = ?, finished_at = ?
		 WHERE id = ?`,
		RunStatusCompleted, records, skipped, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return checkRowTouched(res, id)
}

// FailRun marks a run failed with its error text and the counts
// reached before the failure.
func (s *Store) FailRun(ctx context.Context, id string, records, skipped int64, runErr error) error {
	now := time.Now().UTC()
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE import_runs
		 SET status = ?, records = ?, skipped = ?, error = ?, finished_at = ?
		 WHERE id = ?`,
		RunStatusFailed, records, skipped, msg, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return checkRowTouched(res, id)
}

// GetRun retrieves one run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_file, target, table_name, records, skipped, status, error, started_at, finished_at
		 FROM import_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_file, target, table_name, records, skipped, status, error, started_at, finished_at
		 FROM import_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	run := &Run{}
	var errMsg sql.NullString
	var finished sql.NullTime
	err := sc.Scan(&run.ID, &run.SourceFile, &run.Target, &run.Table,
		&run.Records, &run.Skipped, &run.Status, &errMsg, &run.StartedAt, &finished)
	if err != nil {
		return nil, err
	}
	run.Error = errMsg.String
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return run, nil
}

func checkRowTouched(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil // driver without RowsAffected; accept
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

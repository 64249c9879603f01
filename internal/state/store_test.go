package state_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapcsv/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *state.Store {
	t.Helper()
	s, err := state.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_RunsMigrations(t *testing.T) {
	s := openStore(t)

	version, err := s.MigrationVersion()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, version, int64(1))
}

func TestRunLifecycle_Completed(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	run, err := s.CreateRun(ctx, "data/users.csv", "sqlite", "users")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, state.RunStatusRunning, run.Status)

	require.NoError(t, s.CompleteRun(ctx, run.ID, 120, 3))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, state.RunStatusCompleted, got.Status)
	assert.Equal(t, int64(120), got.Records)
	assert.Equal(t, int64(3), got.Skipped)
	assert.Empty(t, got.Error)
	require.NotNil(t, got.FinishedAt)
	assert.GreaterOrEqual(t, got.Duration(), time.Duration(0))
}

func TestRunLifecycle_Failed(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	run, err := s.CreateRun(ctx, "data/users.csv", "postgres", "users")
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, run.ID, 10, 0, errors.New("connection refused")))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, state.RunStatusFailed, got.Status)
	assert.Equal(t, int64(10), got.Records)
	assert.Contains(t, got.Error, "connection refused")
}

func TestCompleteRun_UnknownID(t *testing.T) {
	s := openStore(t)
	err := s.CompleteRun(context.Background(), "no-such-run", 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListRuns_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	for _, file := range []string{"a.csv", "b.csv", "c.csv"} {
		run, err := s.CreateRun(ctx, file, "sqlite", "t")
		require.NoError(t, err)
		require.NoError(t, s.CompleteRun(ctx, run.ID, 1, 0))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.False(t, all[0].StartedAt.Before(all[2].StartedAt))
}

func TestCreateRun_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("INSERT INTO import_runs").
		WillReturnError(errors.New("disk full"))

	s := state.NewWithDB(db)
	_, err = s.CreateRun(context.Background(), "x.csv", "sqlite", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRuns_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT id, source_file").
		WillReturnError(errors.New("locked"))

	s := state.NewWithDB(db)
	_, err = s.ListRuns(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list runs")
	assert.NoError(t, mock.ExpectationsWereMet())
}

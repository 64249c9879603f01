package importer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func init() {
	Register("postgres", func(dsn string) Target { return &PostgresTarget{dsn: dsn} })
}

// PostgresTarget imports records into PostgreSQL using the COPY
// protocol for bulk throughput.
type PostgresTarget struct {
	dsn  string
	pool *pgxpool.Pool
}

// Connect establishes the connection pool.
func (t *PostgresTarget) Connect(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, t.dsn)
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}
	t.pool = pool
	return nil
}

// Close releases the connection pool.
func (t *PostgresTarget) Close() error {
	if t.pool != nil {
		t.pool.Close()
	}
	return nil
}

// CreateTable creates the destination table with TEXT columns.
func (t *PostgresTarget) CreateTable(ctx context.Context, table string, columns []string) error {
	if t.pool == nil {
		return fmt.Errorf("postgres target not connected")
	}
	if _, err := t.pool.Exec(ctx, createTableSQL(table, columns)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// CopyRecords streams one batch through COPY FROM.
func (t *PostgresTarget) CopyRecords(ctx context.Context, table string, columns []string, rows [][]string) error {
	if t.pool == nil {
		return fmt.Errorf("postgres target not connected")
	}
	if len(rows) == 0 {
		return nil
	}

	copyRows := make([][]any, len(rows))
	for i, row := range rows {
		copyRows[i] = rowArgs(row, len(columns))
	}

	// pgx lowercases unquoted identifiers; pass names as-is and let
	// CopyFrom quote them.
	cols := make([]string, len(columns))
	copy(cols, columns)

	n, err := t.pool.CopyFrom(ctx, pgx.Identifier{table}, cols, pgx.CopyFromRows(copyRows))
	if err != nil {
		return fmt.Errorf("failed to copy records: %w", err)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("copied %d of %d records to %s", n, len(rows), table)
	}
	return nil
}

// Name returns the registered target name.
func (t *PostgresTarget) Name() string { return "postgres" }

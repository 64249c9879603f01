package importer

import (
	"context"
	"database/sql"
	"fmt"

	// duckdb driver for the duckdb import target.
	_ "github.com/marcboeker/go-duckdb"
)

func init() {
	Register("duckdb", func(dsn string) Target { return &DuckDBTarget{dsn: dsn} })
}

// DuckDBTarget imports records into a DuckDB database file.
type DuckDBTarget struct {
	dsn string
	db  *sql.DB
}

// Connect opens the database. An empty DSN means in-memory.
func (t *DuckDBTarget) Connect(ctx context.Context) error {
	db, err := sql.Open("duckdb", t.dsn)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}
	t.db = db
	return nil
}

// Close closes the database connection.
func (t *DuckDBTarget) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

// CreateTable creates the destination table with TEXT columns.
func (t *DuckDBTarget) CreateTable(ctx context.Context, table string, columns []string) error {
	if t.db == nil {
		return fmt.Errorf("duckdb target not connected")
	}
	if _, err := t.db.ExecContext(ctx, createTableSQL(table, columns)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// CopyRecords inserts one batch inside a transaction.
func (t *DuckDBTarget) CopyRecords(ctx context.Context, table string, columns []string, rows [][]string) error {
	if t.db == nil {
		return fmt.Errorf("duckdb target not connected")
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSQL(table, columns))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, rowArgs(row, len(columns))...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Name returns the registered target name.
func (t *DuckDBTarget) Name() string { return "duckdb" }

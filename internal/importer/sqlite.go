package importer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// sqlite driver for the sqlite import target.
	_ "modernc.org/sqlite"
)

func init() {
	Register("sqlite", func(dsn string) Target { return &SQLiteTarget{dsn: dsn} })
}

// SQLiteTarget imports records into a SQLite database file.
type SQLiteTarget struct {
	dsn string
	db  *sql.DB
}

// Connect opens the database. An empty DSN means in-memory.
func (t *SQLiteTarget) Connect(ctx context.Context) error {
	dsn := t.dsn
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	t.db = db
	return nil
}

// Close closes the database connection.
func (t *SQLiteTarget) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

// CreateTable creates the destination table with TEXT columns.
func (t *SQLiteTarget) CreateTable(ctx context.Context, table string, columns []string) error {
	if t.db == nil {
		return fmt.Errorf("sqlite target not connected")
	}
	if _, err := t.db.ExecContext(ctx, createTableSQL(table, columns)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// CopyRecords inserts one batch inside a transaction.
func (t *SQLiteTarget) CopyRecords(ctx context.Context, table string, columns []string, rows [][]string) error {
	if t.db == nil {
		return fmt.Errorf("sqlite target not connected")
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
func (t *SQLiteTarget) Name() string { return "sqlite" }

func insertSQL(table string, columns []string) string {
	cols := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = quoteIdent(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(cols, ", "), strings.Join(marks, ", "))
}

// rowArgs pads or truncates a row to the column count so ragged records
// never break the insert.
func rowArgs(row []string, n int) []any {
	args := make([]any, n)
	for i := 0; i < n; i++ {
		if i < len(row) {
			args[i] = row[i]
		} else {
			args[i] = ""
		}
	}
	return args
}

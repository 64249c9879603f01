// Package importer streams parsed records into storage targets.
//
// A Target receives the resolved header table as column names, then
// batches of record values. Targets register themselves at init time;
// New builds one from its registered name and a DSN.
package importer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Target is a storage backend for imported records.
type Target interface {
	// Connect establishes the connection described by the DSN.
	Connect(ctx context.Context) error

	// Close releases the connection.
	Close() error

	// CreateTable creates (or replaces) the destination table with one
	// text column per header name.
	CreateTable(ctx context.Context, table string, columns []string) error

	// CopyRecords appends a batch of rows to the table. Rows are
	// positional, matching the columns passed to CreateTable.
	CopyRecords(ctx context.Context, table string, columns []string, rows [][]string) error

	// Name returns the registered target name.
	Name() string
}

// Factory builds an unconnected target from a DSN.
type Factory func(dsn string) Target

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a target factory under a name. Built-in targets
// register at init time.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = f
}

// New builds a target by registered name.
func New(name, dsn string) (Target, error) {
	registryMu.RLock()
	f, ok := registry[strings.ToLower(name)]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown import target %q (available: %s)",
			name, strings.Join(Available(), ", "))
	}
	return f(dsn), nil
}

// Available returns the registered target names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// quoteIdent quotes a column or table name with double quotes, the form
// all three targets accept.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// createTableSQL builds the shared CREATE TABLE statement: every column
// is TEXT, values arrive normalized as strings.
func createTableSQL(table string, columns []string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = quoteIdent(c) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(table), strings.Join(cols, ", "))
}

package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	// sqlite driver for state and import database queries.
	_ "modernc.org/sqlite"
)

// openQueryDB opens a sqlite database read-only.
func openQueryDB(path string) (*sql.DB, error) {
	return sql.Open("sqlite", path+"?mode=ro")
}

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
	DB     string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Query the state or an imported database",
		Long: `Execute SQL against the state database, or against an imported sqlite
file via --db. Supports multiple output formats for scripting.

When invoked without arguments on a terminal, enters interactive REPL
mode.`,
		Example: `  # Inspect import runs
  leapcsv query "SELECT source_file, records, status FROM import_runs"

  # Query an imported sqlite file
  leapcsv query --db users.db "SELECT name FROM users LIMIT 5"

  # List available tables
  leapcsv query tables

  # Show schema for a table
  leapcsv query schema import_runs

  # Output as JSON
  leapcsv query "SELECT * FROM import_runs" --format json

  # Interactive mode
  leapcsv query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database to query (default: the state database)")

	cmd.AddCommand(newQueryTablesCommand(opts))
	cmd.AddCommand(newQuerySchemaCommand(opts))

	return cmd
}

// queryDBPath resolves the database a query session targets.
func queryDBPath(cmd *cobra.Command, opts *QueryOptions) (string, error) {
	path := opts.DB
	if path == "" {
		path = resolveStatePath(GetConfig(cmd.Context()))
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("database not found at %s (run an import first, or pass --db)", path)
	}
	return path, nil
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	dbPath, err := queryDBPath(cmd, opts)
	if err != nil {
		return err
	}

	// Determine SQL source
	var sqlQuery string

	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, dbPath, opts)
	}

	return executeAndRender(cmd.Context(), cmd, dbPath, sqlQuery, opts.Format)
}

func executeAndRender(ctx context.Context, cmd *cobra.Command, dbPath, sqlQuery, format string) error {
	db, err := openQueryDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return renderResults(cmd.OutOrStdout(), rows, format)
}

// newQueryTablesCommand creates the tables subcommand.
func newQueryTablesCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List all tables and views in the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbPath, err := queryDBPath(cmd, opts)
			if err != nil {
				return err
			}
			return listTables(cmd, dbPath, opts.Format)
		},
	}
}

// newQuerySchemaCommand creates the schema subcommand.
func newQuerySchemaCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show schema for a table or view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := queryDBPath(cmd, opts)
			if err != nil {
				return err
			}
			return showSchema(cmd, dbPath, args[0], opts.Format)
		},
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

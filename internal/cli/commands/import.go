package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapcsv/internal/cli/config"
	"github.com/leapstack-labs/leapcsv/internal/importer"
	"github.com/leapstack-labs/leapcsv/internal/state"
	"github.com/leapstack-labs/leapcsv/pkg/reader"
)

// NewImportCommand creates the import command: load a file into a
// database table, recording the run in the state database.
func NewImportCommand() *cobra.Command {
	var (
		target  string
		dsn     string
		table   string
		batch   int
		history int
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Load a file into a database table",
		Long: `Stream a file's records into a database table, batched. Supported
targets: ` + strings.Join(importer.Available(), ", ") + `.

The table is created with one TEXT column per resolved header. Ragged
records are padded or truncated to the column count. Every import is
recorded as a run in the state database; --history lists past runs.`,
		Example: `  leapcsv import data.csv
  leapcsv import data.csv --target duckdb --dsn warehouse.db
  leapcsv import data.csv --target postgres --dsn postgres://localhost/mydb
  leapcsv import --history 20`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if history > 0 {
				return runImportHistory(cmd, history)
			}
			if len(args) == 0 {
				return fmt.Errorf("file argument required (or --history)")
			}
			return runImport(cmd, args[0], target, dsn, table, batch)
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Target backend: "+strings.Join(importer.Available(), ", "))
	cmd.Flags().StringVar(&dsn, "dsn", "", "Target connection string (file path for sqlite/duckdb)")
	cmd.Flags().StringVar(&table, "table", "", "Table name (default derived from the file name)")
	cmd.Flags().IntVar(&batch, "batch", 0, "Records per insert batch")
	cmd.Flags().IntVar(&history, "history", 0, "List the last N import runs instead of importing")
	return cmd
}

func runImport(cmd *cobra.Command, path, targetName, dsn, table string, batch int) error {
	ctx := cmd.Context()
	cfg := GetConfig(cmd.Context())
	out := GetRenderer(cmd.Context())
	log := GetLogger(cmd.Context())

	if targetName == "" {
		targetName = cfg.Import.Target
	}
	if dsn == "" {
		dsn = cfg.Import.DSN
	}
	if dsn == "" {
		dsn = defaultDSN(targetName, path)
	}
	if batch <= 0 {
		batch = cfg.Import.Batch
	}
	if batch <= 0 {
		batch = config.DefaultBatch
	}

	rd, closer, sc, err := openReader(cmd, path)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	if table == "" {
		table = tableName(path, sc)
	}

	tgt, err := importer.New(targetName, dsn)
	if err != nil {
		return err
	}
	if err := tgt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", targetName, err)
	}
	defer func() { _ = tgt.Close() }()

	store, err := openStateStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run, err := store.CreateRun(ctx, path, targetName, table)
	if err != nil {
		return err
	}
	log.Info("import started", "run", run.ID, "file", path, "target", targetName, "table", table)

	records, skipped, err := copyFile(cmd, rd, tgt, table, batch)
	if err != nil {
		if ferr := store.FailRun(ctx, run.ID, records, skipped, err); ferr != nil {
			log.Error("failed to record run failure", "run", run.ID, "error", ferr)
		}
		return err
	}

	if err := store.CompleteRun(ctx, run.ID, records, skipped); err != nil {
		return err
	}

	out.Success(fmt.Sprintf("imported %d records into %s.%s (%d skipped)",
		records, targetName, table, skipped))
	return nil
}

// copyFile streams records into the target in batches, creating the
// table from the first record's resolved headers.
func copyFile(cmd *cobra.Command, rd *reader.Reader, tgt importer.Target, table string, batch int) (records, skipped int64, err error) {
	ctx := cmd.Context()
	out := GetRenderer(cmd.Context())

	var (
		columns []string
		buf     [][]string
	)

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := tgt.CopyRecords(ctx, table, columns, buf); err != nil {
			return fmt.Errorf("failed to copy batch: %w", err)
		}
		records += int64(len(buf))
		buf = buf[:0]
		return nil
	}

	for {
		rec, err := rd.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records, skipped, err
		}

		if columns == nil {
			columns = rd.Header().Names()
			if err := tgt.CreateTable(ctx, table, columns); err != nil {
				return records, skipped, fmt.Errorf("failed to create table %s: %w", table, err)
			}
		}

		values, err := rec.Values()
		if err != nil {
			out.Errorf("skipping line %d: %v\n", rec.Line(), err)
			skipped++
			continue
		}
		buf = append(buf, values)
		if len(buf) >= batch {
			if err := flush(); err != nil {
				return records, skipped, err
			}
		}
	}
	if err := flush(); err != nil {
		return records, skipped, err
	}
	return records, skipped, nil
}

func runImportHistory(cmd *cobra.Command, limit int) error {
	cfg := GetConfig(cmd.Context())
	out := GetRenderer(cmd.Context())

	statePath := resolveStatePath(cfg)
	if _, err := os.Stat(statePath); os.IsNotExist(err) {
		return fmt.Errorf("state database not found at %s (run an import first)", statePath)
	}

	store, err := state.Open(statePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID[:8],
			r.SourceFile,
			r.Target,
			r.Table,
			fmt.Sprintf("%d", r.Records),
			fmt.Sprintf("%d", r.Skipped),
			string(r.Status),
			r.StartedAt.Format(time.RFC3339),
			r.Duration().Round(time.Millisecond).String(),
		})
	}
	return out.Table([]string{"Run", "File", "Target", "Table", "Records", "Skipped", "Status", "Started", "Duration"}, rows)
}

// openStateStore opens (creating if needed) the run bookkeeping database.
func openStateStore(cfg *config.Config) (*state.Store, error) {
	statePath := resolveStatePath(cfg)
	if dir := filepath.Dir(statePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	return state.Open(statePath)
}

func resolveStatePath(cfg *config.Config) string {
	if cfg.StatePath != "" {
		return cfg.StatePath
	}
	return config.DefaultStateFile
}

// defaultDSN picks a sensible connection string for file-backed targets
// when none is configured.
func defaultDSN(target, path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch target {
	case "duckdb":
		return base + ".duckdb"
	case "postgres":
		return ""
	default:
		return base + ".db"
	}
}

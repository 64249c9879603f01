package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapcsv/internal/filter"
	"github.com/leapstack-labs/leapcsv/pkg/reader"
)

// NewSelectCommand creates the select command: project columns and
// filter rows.
func NewSelectCommand() *cobra.Command {
	var (
		columns []string
		where   string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "select <file>",
		Short: "Project columns and filter rows",
		Long: `Read a file and emit selected columns, optionally filtered by a
Starlark expression evaluated per record.

Columns are named (alias-aware) or 0-based positional indexes. The
--where expression sees each column bound by name, the full record as
the dict row, and the 1-based logical line number as n.`,
		Example: `  leapcsv select data.csv --columns name,price
  leapcsv select data.csv --columns 0,2 --limit 100
  leapcsv select data.csv --where 'row["price"] != "" and n > 10'
  leapcsv select data.csv --columns name --where 'category == "tools"'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(cmd, args[0], columns, where, limit)
		},
	}

	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "Columns to emit (names or indexes; default all)")
	cmd.Flags().StringVarP(&where, "where", "w", "", "Row filter expression (Starlark)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Stop after N matching records (0 = all)")
	return cmd
}

func runSelect(cmd *cobra.Command, path string, columns []string, where string, limit int) error {
	out := GetRenderer(cmd.Context())

	rd, closer, _, err := openReader(cmd, path)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	var (
		f        *filter.Filter
		selected []int
		headers  []string
		rows     [][]string
	)

	for limit <= 0 || len(rows) < limit {
		rec, err := rd.Read(cmd.Context())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		// The header table exists after the first read; compile the
		// filter and resolve the projection once, against it.
		if headers == nil {
			all := rd.Header().Names()
			selected, err = resolveColumns(rd, columns)
			if err != nil {
				return err
			}
			headers = projectNames(all, selected)
			if where != "" {
				f, err = filter.Compile(where, all)
				if err != nil {
					return err
				}
			}
		}

		if f != nil {
			ok, err := f.Match(rec)
			if err != nil {
				out.Errorf("skipping line %d: %v\n", rec.Line(), err)
				continue
			}
			if !ok {
				continue
			}
		}

		row, err := projectRecord(rec, selected)
		if err != nil {
			out.Errorf("skipping line %d: %v\n", rec.Line(), err)
			continue
		}
		rows = append(rows, row)
	}

	if headers == nil {
		headers = []string{}
	}
	return out.Table(headers, rows)
}

// resolveColumns maps the --columns argument to field indexes. Nil
// means every column in header order.
func resolveColumns(rd *reader.Reader, columns []string) ([]int, error) {
	table := rd.Header()
	if len(columns) == 0 {
		indexes := make([]int, table.Len())
		for i := range indexes {
			indexes[i] = i
		}
		return indexes, nil
	}

	indexes := make([]int, 0, len(columns))
	for _, col := range columns {
		if n, err := strconv.Atoi(col); err == nil {
			if n < 0 || n >= table.Len() {
				return nil, fmt.Errorf("column index %d out of range (0-%d)", n, table.Len()-1)
			}
			indexes = append(indexes, n)
			continue
		}
		idx, ok := table.Index(strings.TrimSpace(col))
		if !ok {
			return nil, fmt.Errorf("unknown column %q (available: %s)",
				col, strings.Join(table.Names(), ", "))
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}

func projectNames(all []string, selected []int) []string {
	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = all[idx]
	}
	return out
}

func projectRecord(rec *reader.Record, selected []int) ([]string, error) {
	out := make([]string, len(selected))
	for i, idx := range selected {
		v, err := rec.FieldAt(idx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewCountCommand creates the count command: count records, optionally
// per-column non-empty counts.
func NewCountCommand() *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   "count <file>",
		Short: "Count the records of a file",
		Long: `Count accepted records in a file. With --columns, additionally count
non-empty values per named column.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(cmd, args[0], columns)
		},
	}

	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "Columns to count non-empty values for")
	return cmd
}

func runCount(cmd *cobra.Command, path string, columns []string) error {
	out := GetRenderer(cmd.Context())

	rd, closer, _, err := openReader(cmd, path)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	var (
		total    int64
		skipped  int64
		selected []int
		nonEmpty []int64
	)

	for {
		rec, err := rd.Read(cmd.Context())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if selected == nil && len(columns) > 0 {
			selected, err = resolveColumns(rd, columns)
			if err != nil {
				return err
			}
			nonEmpty = make([]int64, len(selected))
		}

		if len(selected) > 0 {
			row, err := projectRecord(rec, selected)
			if err != nil {
				skipped++
				continue
			}
			for i, v := range row {
				if v != "" {
					nonEmpty[i]++
				}
			}
		}
		total++
	}

	pairs := [][2]string{
		{"File", path},
		{"Records", fmt.Sprintf("%d", total)},
	}
	if skipped > 0 {
		pairs = append(pairs, [2]string{"Skipped", fmt.Sprintf("%d", skipped)})
	}
	for i, col := range columns {
		if i < len(nonEmpty) {
			pairs = append(pairs, [2]string{fmt.Sprintf("Non-empty %s", col),
				fmt.Sprintf("%d", nonEmpty[i])})
		}
	}
	return out.KeyValues(pairs)
}

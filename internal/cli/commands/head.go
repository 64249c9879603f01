package commands

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
)

// NewHeadCommand creates the head command: render the first N records.
func NewHeadCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "head <file>",
		Short: "Show the first records of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHead(cmd, args[0], limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of records to show")
	return cmd
}

func runHead(cmd *cobra.Command, path string, limit int) error {
	out := GetRenderer(cmd.Context())

	rd, closer, _, err := openReader(cmd, path)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	var rows [][]string
	for len(rows) < limit {
		rec, err := rd.Read(cmd.Context())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		values, err := rec.Values()
		if err != nil {
			// Per-record failures (count mismatch) skip the record, the
			// sequence itself continues.
			out.Errorf("skipping line %d: %v\n", rec.Line(), err)
			continue
		}
		rows = append(rows, values)
	}

	headers := []string{}
	if table := rd.Header(); table != nil {
		headers = table.Names()
	}
	return out.Table(headers, rows)
}

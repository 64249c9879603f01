package commands

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapcsv/internal/cli/config"
)

// NewConvertCommand creates the convert command: re-emit a file as
// clean CSV with a chosen output separator.
func NewConvertCommand() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Re-emit a file as normalized CSV",
		Long: `Read a file with the configured dialect and write it back out as
RFC-style CSV: one header line, normalized quoting, a single output
separator. Records that fail to normalize are skipped with a warning.`,
		Example: `  leapcsv convert messy.txt > clean.csv
  leapcsv convert data.csv --to tab > data.tsv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], to)
		},
	}

	cmd.Flags().StringVar(&to, "to", "comma", "Output separator (comma, tab, pipe, semicolon, or a character)")
	return cmd
}

func runConvert(cmd *cobra.Command, path, to string) error {
	out := GetRenderer(cmd.Context())

	sep, err := config.ParseSeparator(to)
	if err != nil {
		return err
	}

	rd, closer, _, err := openReader(cmd, path)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	var (
		headers []string
		rows    [][]string
	)
	for {
		rec, err := rd.Read(cmd.Context())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if headers == nil {
			headers = rd.Header().Names()
		}
		values, err := rec.Values()
		if err != nil {
			out.Errorf("skipping line %d: %v\n", rec.Line(), err)
			continue
		}
		rows = append(rows, values)
	}

	if headers == nil {
		headers = []string{}
	}
	return out.CSVWithSeparator(headers, rows, rune(sep))
}

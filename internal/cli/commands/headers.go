package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewHeadersCommand creates the headers command: print the resolved
// header table after deduplication and alias resolution.
func NewHeadersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "headers <file>",
		Short: "Show the resolved header table of a file",
		Long: `Resolve and print the header table: one row per column with its
position and final name, after duplicate renaming and alias resolution.

Fails when strict header mode finds duplicates or an alias group
matches more than one column.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeaders(cmd, args[0])
		},
	}
}

func runHeaders(cmd *cobra.Command, path string) error {
	out := GetRenderer(cmd.Context())

	rd, closer, _, err := openReader(cmd, path)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	// The first read resolves the header table; duplicate-header and
	// ambiguous-alias errors surface here.
	if _, err := rd.Read(cmd.Context()); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	table := rd.Header()
	if table == nil {
		return fmt.Errorf("no header found in %s", path)
	}

	rows := make([][]string, 0, table.Len())
	for i, name := range table.Names() {
		rows = append(rows, []string{fmt.Sprintf("%d", i), name})
	}

	out.Heading(fmt.Sprintf("Columns (%d)", table.Len()))
	return out.Table([]string{"Index", "Name"}, rows)
}

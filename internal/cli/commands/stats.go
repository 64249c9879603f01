package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command: per-column value profile.
func NewStatsCommand() *cobra.Command {
	var distinctCap int

	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Profile the columns of a file",
		Long: `Scan a file once and report, per column: non-empty value count,
distinct value count, and the minimum and maximum value width.

Distinct counting is capped; columns exceeding the cap report the cap
with a + suffix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args[0], distinctCap)
		},
	}

	cmd.Flags().IntVar(&distinctCap, "distinct-cap", 10000, "Stop counting distinct values per column past this many")
	return cmd
}

type columnStats struct {
	nonEmpty int64
	distinct map[string]struct{}
	capped   bool
	minWidth int
	maxWidth int
}

func runStats(cmd *cobra.Command, path string, distinctCap int) error {
	out := GetRenderer(cmd.Context())

	rd, closer, _, err := openReader(cmd, path)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	var (
		stats   []*columnStats
		total   int64
		skipped int64
	)

	for {
		rec, err := rd.Read(cmd.Context())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if stats == nil {
			stats = make([]*columnStats, rd.Header().Len())
			for i := range stats {
				stats[i] = &columnStats{distinct: make(map[string]struct{}), minWidth: -1}
			}
		}

		values, err := rec.Values()
		if err != nil {
			skipped++
			continue
		}
		total++

		for i, v := range values {
			if i >= len(stats) {
				break
			}
			s := stats[i]
			if v != "" {
				s.nonEmpty++
			}
			if s.minWidth < 0 || len(v) < s.minWidth {
				s.minWidth = len(v)
			}
			if len(v) > s.maxWidth {
				s.maxWidth = len(v)
			}
			if !s.capped {
				s.distinct[v] = struct{}{}
				if len(s.distinct) >= distinctCap {
					s.capped = true
				}
			}
		}
	}

	if stats == nil {
		out.Textf("no records in %s\n", path)
		return nil
	}

	names := rd.Header().Names()
	rows := make([][]string, 0, len(stats))
	for i, s := range stats {
		distinct := fmt.Sprintf("%d", len(s.distinct))
		if s.capped {
			distinct += "+"
		}
		minWidth := s.minWidth
		if minWidth < 0 {
			minWidth = 0
		}
		rows = append(rows, []string{
			names[i],
			fmt.Sprintf("%d", s.nonEmpty),
			distinct,
			fmt.Sprintf("%d", minWidth),
			fmt.Sprintf("%d", s.maxWidth),
		})
	}

	out.Heading(fmt.Sprintf("%s: %d records (%d skipped)", path, total, skipped))
	return out.Table([]string{"Column", "Non-empty", "Distinct", "Min width", "Max width"}, rows)
}

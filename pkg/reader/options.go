package reader

import (
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapcsv/pkg/dialect"
	"github.com/leapstack-labs/leapcsv/pkg/header"
)

// SkipRowFunc decides whether a physical line is ignored. It receives
// the line text and the 1-based physical line number.
type SkipRowFunc func(line string, n int) bool

// DefaultSkipRow ignores empty lines and comment lines starting with '#'.
// It is applied when Options.SkipRow is nil; to keep every line, supply
// a predicate that always reports false.
func DefaultSkipRow(line string, _ int) bool {
	return len(line) == 0 || strings.HasPrefix(line, "#")
}

// Options configures one read operation. The reader copies what it needs
// up front; changing an Options value after New has no effect on a
// running read.
type Options struct {
	// SkipRows ignores the first N physical lines unconditionally.
	SkipRows int

	// SkipRow ignores a physical line by content. Nil means
	// DefaultSkipRow. Skipped lines never start a record and never
	// advance the logical line ordinal.
	SkipRow SkipRowFunc

	// Separator is the explicit field separator. Zero means auto-detect
	// from the first accepted line.
	Separator byte

	// Candidates is the ordered separator set considered during
	// auto-detection. Nil means dialect.DefaultCandidates.
	Candidates []byte

	// NoHeader treats the first accepted line as data and synthesizes
	// Column1..ColumnN names from its field count.
	NoHeader bool

	// Strict fails with a duplicate-header error instead of renaming
	// repeated header names.
	Strict bool

	// CaseSensitive makes header name lookups match exact case.
	CaseSensitive bool

	// Aliases are groups of synonym header names; each group resolves to
	// the single member column present in the header.
	Aliases []header.AliasGroup

	// Trim strips surrounding whitespace from fields before unquoting.
	Trim bool

	// QuotedNewlines lets a quoted field span physical lines.
	QuotedNewlines bool

	// Rejoin is the text inserted between merged physical lines. Empty
	// means dialect.DefaultRejoin.
	Rejoin string

	// AllowBackslashEscape accepts \" as an escaped quote inside
	// double-quoted fields.
	AllowBackslashEscape bool

	// AllowSingleQuote accepts 'value' as an enclosed field.
	AllowSingleQuote bool

	// ValidateColumnCount fails a record whose field count differs from
	// the header column count. The failure surfaces on first field
	// access, not while the sequence advances.
	ValidateColumnCount bool

	// EmptyForMissing makes lookups of absent columns yield an empty
	// string instead of a missing-column error.
	EmptyForMissing bool

	// Pool, when set, interns produced field values so repeated values
	// share one string instance.
	Pool Pool

	// Logger receives debug events. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the tolerant baseline: auto-detected separator,
// header row present, duplicates renamed, quoted fields free to span
// physical lines.
func DefaultOptions() Options {
	return Options{
		QuotedNewlines: true,
		Rejoin:         dialect.DefaultRejoin,
	}
}

// base assembles the dialect flags that do not depend on detection.
func (o Options) base() dialect.Dialect {
	rejoin := o.Rejoin
	if rejoin == "" {
		rejoin = dialect.DefaultRejoin
	}
	return dialect.Dialect{
		AllowSingleQuote:     o.AllowSingleQuote,
		AllowBackslashEscape: o.AllowBackslashEscape,
		QuotedNewlines:       o.QuotedNewlines,
		Rejoin:               rejoin,
	}
}

func (o Options) headerOptions() header.Options {
	return header.Options{
		Strict:        o.Strict,
		CaseSensitive: o.CaseSensitive,
		Aliases:       o.Aliases,
	}
}

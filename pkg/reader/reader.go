// Package reader assembles logical records from a line-oriented source.
//
// A Reader pulls physical lines, resolves the dialect and header table
// from the first accepted line, merges physical lines while a quoted
// field stays open, and hands out lazily materialized records. The
// sequence is single-pass and not restartable; reading again means
// building a new Reader over a fresh source.
package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/leapstack-labs/leapcsv/pkg/dialect"
	"github.com/leapstack-labs/leapcsv/pkg/header"
	"github.com/leapstack-labs/leapcsv/pkg/scan"
)

// ErrNilSource is returned by New when no line source is given.
var ErrNilSource = errors.New("nil line source")

// Reader produces records from a line source. Not safe for concurrent
// use; one Reader per read operation.
type Reader struct {
	src  LineSource
	opts Options
	log  *slog.Logger

	d        dialect.Dialect
	resolved bool
	table    *header.Table

	physical int // physical lines consumed
	logical  int // accepted logical lines, header included
	err      error
}

// New builds a Reader over src. The options are captured at this point;
// the zero Options value reads comma-or-detected CSV with a header row
// and no multi-line fields.
func New(src LineSource, opts Options) (*Reader, error) {
	if src == nil {
		return nil, fmt.Errorf("new reader: %w", ErrNilSource)
	}
	if opts.SkipRow == nil {
		opts.SkipRow = DefaultSkipRow
	}
	if len(opts.Candidates) == 0 {
		opts.Candidates = dialect.DefaultCandidates()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Reader{src: src, opts: opts, log: log}, nil
}

// Read returns the next record, or io.EOF when the source is exhausted.
//
// The first call resolves the dialect and the header table; header
// resolution failures (duplicate names in strict mode, ambiguous alias
// groups) are terminal and every later call repeats them. Field-level
// failures are not raised here, they surface when a record's fields are
// accessed, and the sequence continues past them.
func (r *Reader) Read(ctx context.Context) (*Record, error) {
	if r.err != nil {
		return nil, r.err
	}

	for {
		start, err := r.nextStart(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.err = io.EOF
				return nil, io.EOF
			}
			return nil, err
		}

		if !r.resolved {
			r.d = dialect.Resolve(r.opts.Separator, start, r.opts.Candidates, r.opts.base())
			r.resolved = true
			r.log.Debug("dialect resolved",
				"separator", string(r.d.Separator),
				"detected", r.opts.Separator == 0)
		}

		raw, spans, err := r.completeLogical(ctx, start)
		if err != nil {
			return nil, err
		}
		r.logical++

		if r.table == nil {
			if err := r.buildTable(raw, spans); err != nil {
				r.err = err
				return nil, err
			}
			if !r.opts.NoHeader {
				continue // header consumed; next logical line is data
			}
		}

		return r.newRecord(raw), nil
	}
}

// ReadAll drains the sequence. Records are still lazy; only the
// sequence advance is eager.
func (r *Reader) ReadAll(ctx context.Context) ([]*Record, error) {
	var records []*Record
	for {
		rec, err := r.Read(ctx)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// Dialect returns the resolved dialect. The second result is false
// before the first accepted line resolves it.
func (r *Reader) Dialect() (dialect.Dialect, bool) {
	return r.d, r.resolved
}

// Header returns the frozen header table, nil until the first accepted
// logical line builds it.
func (r *Reader) Header() *header.Table {
	return r.table
}

// nextStart returns the next physical line that may start a logical
// line, applying the skip-count and the skip predicate. Lines pulled in
// by quote continuation never pass through here.
func (r *Reader) nextStart(ctx context.Context) (string, error) {
	for {
		line, err := r.readPhysical(ctx)
		if err != nil {
			return "", err
		}
		if r.physical <= r.opts.SkipRows {
			continue
		}
		if r.opts.SkipRow(line, r.physical) {
			continue
		}
		return line, nil
	}
}

func (r *Reader) readPhysical(ctx context.Context) (string, error) {
	line, err := r.src.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("read line %d: %w", r.physical+1, err)
	}
	r.physical++
	return line, nil
}

// completeLogical merges physical lines until no quoted field is left
// open, re-splitting the accumulated text each round. On a source that
// ends mid-quote the text is accepted as-is.
func (r *Reader) completeLogical(ctx context.Context, start string) (string, []scan.Span, error) {
	raw := start
	spans := scan.Split(raw, r.d)
	if !r.d.QuotedNewlines {
		return raw, spans, nil
	}

	for scan.Unterminated(raw, spans, r.d) {
		next, err := r.readPhysical(ctx)
		if errors.Is(err, io.EOF) {
			break // best-effort on truncated input
		}
		if err != nil {
			return "", nil, err
		}
		raw += r.d.Rejoin + next
		spans = scan.Split(raw, r.d)
	}
	return raw, spans, nil
}

// buildTable freezes the header table from the first accepted logical
// line: its fields when a header row is present, synthesized names
// otherwise.
func (r *Reader) buildTable(raw string, spans []scan.Span) error {
	var names []string
	if r.opts.NoHeader {
		names = header.Synthesize(len(spans))
	} else {
		names = make([]string, len(spans))
		for i, sp := range spans {
			names[i] = scan.Normalize(sp.Text(raw), r.d, r.opts.Trim)
		}
	}

	table, err := header.Build(names, r.opts.headerOptions())
	if err != nil {
		return fmt.Errorf("resolve header: %w", err)
	}
	r.table = table
	r.log.Debug("header resolved", "columns", table.Len(), "synthesized", r.opts.NoHeader)
	return nil
}

func (r *Reader) newRecord(raw string) *Record {
	return &Record{
		table:        r.table,
		d:            r.d,
		trim:         r.opts.Trim,
		validate:     r.opts.ValidateColumnCount,
		emptyMissing: r.opts.EmptyForMissing,
		pool:         r.opts.Pool,
		raw:          raw,
		line:         r.logical,
	}
}

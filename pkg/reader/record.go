package reader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapcsv/pkg/dialect"
	"github.com/leapstack-labs/leapcsv/pkg/header"
	"github.com/leapstack-labs/leapcsv/pkg/scan"
)

var (
	// ErrMissingColumn is returned when a lookup names a column that does
	// not exist and the empty-value fallback is off.
	ErrMissingColumn = errors.New("missing column")

	// ErrColumnCount is returned when column-count validation is on and a
	// record's field count differs from the header column count.
	ErrColumnCount = errors.New("column count mismatch")
)

// MissingColumnError reports a failed lookup. Name is empty for
// positional lookups; Index is -1 when the name is not in the header at
// all.
type MissingColumnError struct {
	Name  string
	Index int
}

func (e *MissingColumnError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("missing column %q", e.Name)
	}
	return fmt.Sprintf("missing column %d", e.Index)
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// ColumnCountMismatchError reports a record whose field count differs
// from the header column count.
type ColumnCountMismatchError struct {
	Line    int
	Fields  int
	Columns int
}

func (e *ColumnCountMismatchError) Error() string {
	return fmt.Sprintf("line %d: %d fields for %d columns", e.Line, e.Fields, e.Columns)
}

func (e *ColumnCountMismatchError) Unwrap() error { return ErrColumnCount }

// Record is one logical line bound to the frozen header table of its
// read operation.
//
// Field values materialize lazily: the raw text is split on first
// access, and each field is normalized the first time it is read, then
// cached. A record is not safe for concurrent use; the header table it
// shares with its sibling records is read-only.
type Record struct {
	table        *header.Table
	d            dialect.Dialect
	trim         bool
	validate     bool
	emptyMissing bool
	pool         Pool

	raw  string
	line int

	split    bool
	spans    []scan.Span
	values   []string
	parsed   []bool
	countErr error
	wiped    bool
}

// Raw returns the record's original text, physical lines joined by the
// dialect's rejoin string.
func (r *Record) Raw() string { return r.raw }

// Line returns the record's 1-based ordinal among non-skipped logical
// lines. When a header row is present it occupies ordinal 1.
func (r *Record) Line() int { return r.line }

// Headers returns the ordered column names of the read operation.
func (r *Record) Headers() []string {
	if r.table == nil {
		return nil
	}
	return r.table.Names()
}

// Len returns the record's field count, splitting the raw text if that
// has not happened yet. Count validation failures do not surface here;
// they are reported by the field accessors.
func (r *Record) Len() int {
	r.ensureSplit()
	return len(r.spans)
}

// Field returns the value of the named column.
//
// Absent names fail with a MissingColumnError, or yield "" when the
// empty-value fallback is configured. A name that resolves past the end
// of a short record is treated the same way.
func (r *Record) Field(name string) (string, error) {
	if err := r.ensureSplit(); err != nil {
		return "", err
	}
	idx, ok := -1, false
	if r.table != nil {
		idx, ok = r.table.Index(name)
	}
	if !ok {
		if r.emptyMissing {
			return "", nil
		}
		return "", &MissingColumnError{Name: name, Index: -1}
	}
	if idx >= len(r.spans) {
		if r.emptyMissing {
			return "", nil
		}
		return "", &MissingColumnError{Name: name, Index: idx}
	}
	return r.field(idx), nil
}

// FieldAt returns the value at field position i.
func (r *Record) FieldAt(i int) (string, error) {
	if err := r.ensureSplit(); err != nil {
		return "", err
	}
	if i < 0 || i >= len(r.spans) {
		if r.emptyMissing {
			return "", nil
		}
		return "", &MissingColumnError{Index: i}
	}
	return r.field(i), nil
}

// Range returns the values of field positions [from, to).
func (r *Record) Range(from, to int) ([]string, error) {
	if err := r.ensureSplit(); err != nil {
		return nil, err
	}
	if from < 0 || to < from || to > len(r.spans) {
		if r.emptyMissing {
			return nil, nil
		}
		return nil, &MissingColumnError{Index: to}
	}
	out := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, r.field(i))
	}
	return out, nil
}

// Values returns every field value in order.
func (r *Record) Values() ([]string, error) {
	if err := r.ensureSplit(); err != nil {
		return nil, err
	}
	out := make([]string, len(r.spans))
	for i := range r.spans {
		out[i] = r.field(i)
	}
	return out, nil
}

// Wipe releases the record's retained text: the raw line, the field
// spans, and the cached values. The record stays usable but empty;
// strings already returned to callers remain valid.
func (r *Record) Wipe() {
	r.raw = ""
	r.spans = nil
	r.values = nil
	r.parsed = nil
	r.countErr = nil
	r.split = true
	r.wiped = true
}

// Equal reports whether both records expose the same columns and the
// same values under case-insensitive comparison. Records whose fields
// cannot be materialized compare unequal.
func (r *Record) Equal(o *Record) bool {
	if o == nil {
		return false
	}
	if len(r.Headers()) != len(o.Headers()) {
		return false
	}
	rv, err := r.Values()
	if err != nil {
		return false
	}
	ov, err := o.Values()
	if err != nil {
		return false
	}
	if len(rv) != len(ov) {
		return false
	}
	for i := range rv {
		if !strings.EqualFold(rv[i], ov[i]) {
			return false
		}
	}
	return true
}

// EqualRaw reports whether both records carry identical raw text.
func (r *Record) EqualRaw(o *Record) bool {
	return o != nil && r.raw == o.raw
}

// ensureSplit cuts the raw text into spans on first access and runs
// column-count validation once.
func (r *Record) ensureSplit() error {
	if !r.split {
		r.spans = scan.Split(r.raw, r.d)
		r.values = make([]string, len(r.spans))
		r.parsed = make([]bool, len(r.spans))
		r.split = true
		if r.validate && r.table != nil && len(r.spans) != r.table.Len() {
			r.countErr = &ColumnCountMismatchError{
				Line:    r.line,
				Fields:  len(r.spans),
				Columns: r.table.Len(),
			}
		}
	}
	return r.countErr
}

// field normalizes and caches position i. The caller has bounds-checked.
func (r *Record) field(i int) string {
	if !r.parsed[i] {
		v := scan.Normalize(r.spans[i].Text(r.raw), r.d, r.trim)
		if r.pool != nil {
			v = r.pool.Intern(v)
		}
		r.values[i] = v
		r.parsed[i] = true
	}
	return r.values[i]
}

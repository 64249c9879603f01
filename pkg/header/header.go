// Package header builds the name→index table that binds record fields to
// stable column names.
//
// The table is built exactly once per read operation, from the header
// fields (or from synthesized names when the input has no header row),
// and is immutable afterwards. Duplicate names are either rejected or
// renamed depending on the options, and alias groups let several synonym
// names resolve to one physical column.
package header

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MissingName replaces an empty header cell before deduplication.
const MissingName = "Missing"

var (
	// ErrDuplicateHeader is returned in strict mode when two header cells
	// carry the same name.
	ErrDuplicateHeader = errors.New("duplicate header name")

	// ErrAmbiguousAlias is returned when more than one name of an alias
	// group is present in the header, so the group cannot denote a single
	// column.
	ErrAmbiguousAlias = errors.New("ambiguous alias group")
)

// DuplicateHeaderError reports the offending name in strict mode.
type DuplicateHeaderError struct {
	Name string
}

func (e *DuplicateHeaderError) Error() string {
	return fmt.Sprintf("duplicate header name %q", e.Name)
}

func (e *DuplicateHeaderError) Unwrap() error { return ErrDuplicateHeader }

// AmbiguousAliasError reports an alias group with more than one of its
// names present in the header.
type AmbiguousAliasError struct {
	Group   []string
	Present []string
}

func (e *AmbiguousAliasError) Error() string {
	return fmt.Sprintf("alias group [%s] matches multiple columns: %s",
		strings.Join(e.Group, ", "), strings.Join(e.Present, ", "))
}

func (e *AmbiguousAliasError) Unwrap() error { return ErrAmbiguousAlias }

// AliasGroup is a set of synonym names that should all resolve to
// whichever single column among them is actually present.
type AliasGroup []string

// Options controls table construction.
type Options struct {
	// Strict fails with a DuplicateHeaderError on repeated names instead
	// of renaming them.
	Strict bool

	// CaseSensitive makes name lookups (and duplicate detection) match
	// exact case. The default folds case.
	CaseSensitive bool

	// Aliases are resolved after deduplication, in order.
	Aliases []AliasGroup
}

// Table is the frozen mapping from column names to field indices.
//
// Every key in the mapping resolves to an index within the column count.
// After alias resolution several names may map to one index, but the
// ordered name sequence keeps exactly one name per position.
type Table struct {
	names         []string
	index         map[string]int
	caseSensitive bool
}

// Build constructs the table from the header fields, in order.
//
// Empty names become MissingName. Without Strict, a repeated name keeps
// its first occurrence bare and every later occurrence gets its
// occurrence count as a suffix (second occurrence of Name becomes
// Name2), counting further up while the generated name is itself taken.
// Alias groups are then resolved per Options.Aliases.
func Build(fields []string, opts Options) (*Table, error) {
	t := &Table{
		names:         make([]string, 0, len(fields)),
		index:         make(map[string]int, len(fields)),
		caseSensitive: opts.CaseSensitive,
	}

	if opts.Strict {
		for i, name := range fields {
			key := t.key(name)
			if _, ok := t.index[key]; ok {
				return nil, &DuplicateHeaderError{Name: name}
			}
			t.names = append(t.names, name)
			t.index[key] = i
		}
	} else {
		counts := make(map[string]int, len(fields))
		for i, name := range fields {
			if name == "" {
				name = MissingName
			}
			base := t.key(name)
			counts[base]++
			final := name
			if counts[base] > 1 {
				final = name + strconv.Itoa(counts[base])
			}
			for {
				if _, taken := t.index[t.key(final)]; !taken {
					break
				}
				counts[base]++
				final = name + strconv.Itoa(counts[base])
			}
			t.names = append(t.names, final)
			t.index[t.key(final)] = i
		}
	}

	for _, group := range opts.Aliases {
		if err := t.applyAlias(group); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Synthesize produces Column1..ColumnN names for header-absent input.
func Synthesize(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "Column" + strconv.Itoa(i+1)
	}
	return names
}

func (t *Table) applyAlias(group AliasGroup) error {
	var present []string
	target := -1
	for _, name := range group {
		if idx, ok := t.index[t.key(name)]; ok {
			present = append(present, name)
			target = idx
		}
	}

	switch len(present) {
	case 0:
		return nil // nothing to denote
	case 1:
		for _, name := range group {
			t.index[t.key(name)] = target
		}
		return nil
	default:
		return &AmbiguousAliasError{Group: group, Present: present}
	}
}

func (t *Table) key(name string) string {
	if t.caseSensitive {
		return name
	}
	return strings.ToLower(name)
}

// Len returns the column count.
func (t *Table) Len() int {
	return len(t.names)
}

// Names returns the ordered column names, one per position.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Name returns the column name at position i.
func (t *Table) Name(i int) string {
	return t.names[i]
}

// Index resolves a column name to its field position.
func (t *Table) Index(name string) (int, bool) {
	idx, ok := t.index[t.key(name)]
	return idx, ok
}

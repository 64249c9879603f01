// Package dialect defines the separator and quoting rules applied to one
// read operation, and the detection logic that picks a separator from a
// sample line when none was configured.
//
// A Dialect is resolved once at the start of a read and treated as an
// immutable value afterwards. Components that consume it (the splitter,
// the continuation logic, the normalizer) receive it by value and never
// mutate it.
package dialect

// Quote is the primary enclosure character. It is fixed: every dialect
// quotes with double quotes, optionally also accepting single-quote
// enclosure (see Dialect.AllowSingleQuote).
const Quote byte = '"'

// SingleQuote is the alternate enclosure character, honored only when
// Dialect.AllowSingleQuote is set.
const SingleQuote byte = '\''

// DefaultRejoin is the text inserted between physical lines merged into
// one logical line.
const DefaultRejoin = "\n"

// DefaultCandidates is the ordered set of separator characters considered
// during auto-detection. Order matters: ties are broken in favor of the
// earlier candidate.
func DefaultCandidates() []byte {
	return []byte{',', '\t', '|', ';'}
}

// Dialect is the resolved rule set for one read operation.
type Dialect struct {
	// Separator splits unquoted fields.
	Separator byte

	// AllowSingleQuote accepts 'value' as an enclosed field in addition
	// to "value". Single-quoted content is stripped but never unescaped.
	AllowSingleQuote bool

	// AllowBackslashEscape accepts \" as an escaped quote inside a
	// double-quoted field, in addition to the doubled-quote form.
	AllowBackslashEscape bool

	// QuotedNewlines allows a quoted field to span physical lines. When
	// set, a line whose quoting is left open pulls in the next physical
	// line during reading.
	QuotedNewlines bool

	// Rejoin is the text inserted between merged physical lines.
	Rejoin string
}

// Default returns the comma dialect with tolerant multi-line quoting.
func Default() Dialect {
	return Dialect{
		Separator:      ',',
		QuotedNewlines: true,
		Rejoin:         DefaultRejoin,
	}
}

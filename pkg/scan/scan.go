// Package scan turns one physical line of delimited text into raw field
// spans under a dialect, and normalizes spans into logical field values.
//
// Splitting is zero-copy: a Span records where a field sits inside the
// line it was cut from, quotes and all. Unquoting and unescaping happen
// later, in Normalize, and only for the fields a caller actually reads.
package scan

import (
	"github.com/leapstack-labs/leapcsv/pkg/dialect"
)

// Span is a borrowed view of one raw field: Len bytes of the original
// line starting at Start. It stays valid as long as the line it was cut
// from is retained.
type Span struct {
	Start int
	Len   int
}

// Text returns the raw field text from the line the span was cut from.
func (s Span) Text(line string) string {
	return line[s.Start : s.Start+s.Len]
}

// End returns the offset just past the span.
func (s Span) End() int {
	return s.Start + s.Len
}

// splitter walks one line byte by byte. Separator candidates and quote
// characters are ASCII, so UTF-8 continuation bytes pass through
// untouched.
type splitter struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	dialect dialect.Dialect
}

func newSplitter(input string, d dialect.Dialect) *splitter {
	s := &splitter{input: input, dialect: d}
	s.readChar()
	return s
}

// readChar advances to the next character.
func (s *splitter) readChar() {
	if s.readPos >= len(s.input) {
		s.ch = 0 // ASCII NUL = EOF
	} else {
		s.ch = s.input[s.readPos]
	}
	s.pos = s.readPos
	s.readPos++
}

// peekChar returns the next character without advancing.
func (s *splitter) peekChar() byte {
	if s.readPos >= len(s.input) {
		return 0
	}
	return s.input[s.readPos]
}

// Split cuts line into raw field spans under d.
//
// Two states: unquoted and quoted. Unquoted, the separator ends the
// field, and a quote character opens a quoted run only when it is the
// first character of the field. Quoted, the separator is literal; a
// doubled quote is an escaped quote, and a lone quote closes the run,
// after which any text before the next separator is taken literally.
// Joining the spans back together with the separator reproduces line
// exactly.
//
// Split never fails: a quote left open simply runs to the end of the
// line. Callers that allow multi-line fields detect that case with
// Unterminated and re-split after appending the next physical line.
func Split(line string, d dialect.Dialect) []Span {
	s := newSplitter(line, d)
	spans := make([]Span, 0, 8)

	fieldStart := 0
	quoted := false
	var quoteCh byte

	for s.ch != 0 {
		switch {
		case !quoted && s.ch == d.Separator:
			spans = append(spans, Span{Start: fieldStart, Len: s.pos - fieldStart})
			fieldStart = s.readPos
			s.readChar()

		case !quoted && s.pos == fieldStart && s.ch == dialect.Quote:
			quoted = true
			quoteCh = dialect.Quote
			s.readChar()

		case !quoted && s.pos == fieldStart && s.ch == dialect.SingleQuote && d.AllowSingleQuote:
			quoted = true
			quoteCh = dialect.SingleQuote
			s.readChar()

		case quoted && s.ch == quoteCh:
			if quoteCh == dialect.Quote && s.peekChar() == dialect.Quote {
				// Doubled quote escape
				s.readChar() // skip first quote
				s.readChar() // skip second quote
			} else {
				quoted = false // closing quote; trailing text is literal
				s.readChar()
			}

		default:
			s.readChar()
		}
	}

	spans = append(spans, Span{Start: fieldStart, Len: len(line) - fieldStart})
	return spans
}

// Unterminated reports whether any span in line opens a quoted field
// that never closes, meaning the logical line continues on the next
// physical line when the dialect permits that.
//
// The check is a parity count: doubled quotes are consumed as escape
// pairs, and an odd number of remaining quote characters in the span
// (the opener included) means the field is still open. Text after a
// closing quote can fool the count; that is accepted, the whole design
// is best-effort on malformed quoting.
func Unterminated(line string, spans []Span, d dialect.Dialect) bool {
	for _, sp := range spans {
		if spanUnterminated(sp.Text(line), d) {
			return true
		}
	}
	return false
}

func spanUnterminated(text string, d dialect.Dialect) bool {
	if len(text) == 0 {
		return false
	}

	var quote byte
	switch text[0] {
	case dialect.Quote:
		quote = dialect.Quote
	case dialect.SingleQuote:
		if !d.AllowSingleQuote {
			return false
		}
		quote = dialect.SingleQuote
	default:
		return false
	}

	n := 0
	for i := 0; i < len(text); i++ {
		if text[i] != quote {
			continue
		}
		if quote == dialect.Quote && i > 0 && i+1 < len(text) && text[i+1] == quote {
			i++ // escaped pair
			continue
		}
		n++
	}
	return n%2 == 1
}

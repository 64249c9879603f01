package scan

import (
	"strings"

	"github.com/leapstack-labs/leapcsv/pkg/dialect"
)

// Normalize converts one raw field into its logical value.
//
// Steps, in order: trim surrounding whitespace when trim is set; if the
// result is wrapped in double quotes and longer than one character,
// strip the enclosure and collapse doubled quotes (plus backslash-quote
// when the dialect allows it); otherwise, if the dialect accepts
// single-quote enclosure and the result is wrapped in single quotes,
// strip them without unescaping. Anything else passes through as-is.
//
// Normalize is pure, and a no-op on values that carry no enclosure,
// so normalizing an already-normalized unquoted value changes nothing.
func Normalize(text string, d dialect.Dialect, trim bool) string {
	if trim {
		text = strings.TrimSpace(text)
	}

	if len(text) > 1 && text[0] == dialect.Quote && text[len(text)-1] == dialect.Quote {
		inner := text[1 : len(text)-1]
		inner = strings.ReplaceAll(inner, `""`, `"`)
		if d.AllowBackslashEscape {
			inner = strings.ReplaceAll(inner, `\"`, `"`)
		}
		return inner
	}

	if d.AllowSingleQuote && len(text) > 1 &&
		text[0] == dialect.SingleQuote && text[len(text)-1] == dialect.SingleQuote {
		return text[1 : len(text)-1]
	}

	return text
}

package reader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LineSource yields one physical line of text at a time, without its
// line terminator, and io.EOF at exhaustion. Implementations may block
// on ctx.
type LineSource interface {
	ReadLine(ctx context.Context) (string, error)
}

// maxLineBytes bounds one physical line; quoted fields spanning lines
// are merged above this layer, so the bound applies per physical line.
const maxLineBytes = 1 << 20

// ScannerSource reads physical lines from an io.Reader. CRLF and LF
// endings are both accepted.
type ScannerSource struct {
	scanner *bufio.Scanner
}

// NewScannerSource wraps r in a line source.
func NewScannerSource(r io.Reader) *ScannerSource {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &ScannerSource{scanner: s}
}

// ReadLine returns the next physical line.
func (s *ScannerSource) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", fmt.Errorf("scan line: %w", err)
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

// SliceSource yields lines from memory. Useful for tests and for text
// already split elsewhere.
type SliceSource struct {
	lines []string
	pos   int
}

// NewSliceSource builds a source over the given lines.
func NewSliceSource(lines ...string) *SliceSource {
	return &SliceSource{lines: lines}
}

// ReadLine returns the next line or io.EOF.
func (s *SliceSource) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.pos]
	s.pos++
	return line, nil
}

// NewDecodeSource wraps r with a character decoder before line
// splitting. The empty name and "utf-8" decode UTF-8 with an optional
// byte order mark stripped; legacy single-byte encodings are translated
// to UTF-8.
func NewDecodeSource(r io.Reader, encName string) (*ScannerSource, error) {
	enc, err := lookupEncoding(encName)
	if err != nil {
		return nil, err
	}
	return NewScannerSource(transform.NewReader(r, enc.NewDecoder())), nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

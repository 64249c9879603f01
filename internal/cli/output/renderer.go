// Package output provides rendering for CLI command results.
//
// A Renderer picks the concrete output form (styled text, markdown,
// JSON, CSV) once, from the configured mode and TTY detection, and
// every command renders through it instead of printing directly.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
)

// OutputMode determines the output format.
type OutputMode string

const (
	// ModeAuto selects text on a TTY and markdown otherwise.
	ModeAuto OutputMode = "auto"
	// ModeText renders styled tables and headings.
	ModeText OutputMode = "text"
	// ModeMarkdown renders pipe tables and # headings.
	ModeMarkdown OutputMode = "markdown"
	// ModeJSON renders a JSON document per call.
	ModeJSON OutputMode = "json"
	// ModeCSV renders comma-separated values.
	ModeCSV OutputMode = "csv"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

// Renderer writes command results in the resolved output mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   OutputMode
	isTTY  bool
}

// NewRenderer creates a renderer, detecting TTY state from stdout.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state.
// Used by tests to pin the resolved mode.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	return &Renderer{out: out, errOut: errOut, mode: mode, isTTY: isTTY}
}

// Mode returns the resolved output mode, with auto already decided.
func (r *Renderer) Mode() OutputMode {
	if r.mode == ModeAuto || r.mode == "" {
		if r.isTTY {
			return ModeText
		}
		return ModeMarkdown
	}
	return r.mode
}

// Out returns the underlying output writer.
func (r *Renderer) Out() io.Writer { return r.out }

// Heading writes a section heading. Styled in text mode, a markdown
// heading otherwise; JSON and CSV output carry no headings.
func (r *Renderer) Heading(text string) {
	switch r.Mode() {
	case ModeText:
		if r.isTTY {
			fmt.Fprintln(r.out, headingStyle.Render(text))
		} else {
			fmt.Fprintln(r.out, text)
		}
	case ModeMarkdown:
		fmt.Fprintf(r.out, "## %s\n\n", text)
	}
}

// Table writes a header row plus data rows in the resolved mode.
func (r *Renderer) Table(headers []string, rows [][]string) error {
	switch r.Mode() {
	case ModeJSON:
		return r.tableJSON(headers, rows)
	case ModeCSV:
		return r.tableCSV(headers, rows)
	case ModeMarkdown:
		r.prettyTable(headers, rows, true)
		return nil
	default:
		r.prettyTable(headers, rows, false)
		return nil
	}
}

func (r *Renderer) prettyTable(headers []string, rows [][]string, markdown bool) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				tr[i] = row[i]
			} else {
				tr[i] = ""
			}
		}
		t.AppendRow(tr)
	}

	if markdown {
		t.RenderMarkdown()
	} else {
		t.Render()
	}
}

func (r *Renderer) tableJSON(headers []string, rows [][]string) error {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				m[h] = row[i]
			} else {
				m[h] = ""
			}
		}
		out = append(out, m)
	}
	return r.JSON(out)
}

func (r *Renderer) tableCSV(headers []string, rows [][]string) error {
	w := csv.NewWriter(r.out)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// CSVWithSeparator writes rows as delimited text with a custom
// separator, bypassing the mode. Used by convert, which re-emits data
// rather than displaying it.
func (r *Renderer) CSVWithSeparator(headers []string, rows [][]string, sep rune) error {
	w := csv.NewWriter(r.out)
	w.Comma = sep
	if headers != nil {
		if err := w.Write(headers); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// JSON writes v as an indented JSON document regardless of mode.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// KeyValues writes aligned key/value pairs, or a JSON object in JSON
// mode. Pair order is preserved.
func (r *Renderer) KeyValues(pairs [][2]string) error {
	if r.Mode() == ModeJSON {
		m := make(map[string]string, len(pairs))
		for _, p := range pairs {
			m[p[0]] = p[1]
		}
		return r.JSON(m)
	}

	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	for _, p := range pairs {
		fmt.Fprintf(r.out, "%-*s  %s\n", width+1, p[0]+":", p[1])
	}
	return nil
}

// Textf writes formatted text to the output stream.
func (r *Renderer) Textf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Errorf writes formatted text to the error stream.
func (r *Renderer) Errorf(format string, args ...any) {
	fmt.Fprintf(r.errOut, format, args...)
}

// Success writes a completion message, prefixed in text mode.
func (r *Renderer) Success(msg string) {
	if r.Mode() == ModeText {
		fmt.Fprintf(r.out, "✓ %s\n", msg)
		return
	}
	fmt.Fprintln(r.out, msg)
}

// ParseMode normalizes a mode string; unknown values fall back to auto.
func ParseMode(s string) OutputMode {
	switch strings.ToLower(s) {
	case "text":
		return ModeText
	case "markdown", "md":
		return ModeMarkdown
	case "json":
		return ModeJSON
	case "csv":
		return ModeCSV
	default:
		return ModeAuto
	}
}

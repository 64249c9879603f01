// Package config provides configuration management for the leapcsv CLI.
//
// Configuration merges four layers, lowest to highest precedence:
// built-in defaults, an optional YAML config file, LEAPCSV_* environment
// variables, and explicitly set command-line flags. A per-file sidecar
// (<data>.leapcsv.yml) can additionally override read options for one
// input file.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapcsv/pkg/dialect"
	"github.com/leapstack-labs/leapcsv/pkg/header"
	"github.com/leapstack-labs/leapcsv/pkg/reader"
)

// Config holds all CLI configuration options.
type Config struct {
	Read      ReadConfig   `koanf:"read"`
	Import    ImportConfig `koanf:"import"`
	Serve     ServeConfig  `koanf:"serve"`
	Output    string       `koanf:"output"`
	LogLevel  string       `koanf:"log_level"`
	StatePath string       `koanf:"state_path"`
}

// ReadConfig holds the options of one read operation.
type ReadConfig struct {
	// Dialect names a preset (csv, tsv, pipe, semicolon, or one added
	// via dialect.Register) that seeds separator and quoting rules.
	// Individual options below override what the preset sets.
	Dialect string `koanf:"dialect"`

	// Separator is the explicit field separator; empty means auto-detect.
	Separator string `koanf:"separator"`

	// Candidates are the separators considered during auto-detection, in
	// tie-breaking order. Tab may be written as "\t" or "tab".
	Candidates []string `koanf:"candidates"`

	// NoHeader treats the first line as data and synthesizes ColumnN names.
	NoHeader bool `koanf:"no_header"`

	// StrictHeaders fails on duplicate header names instead of renaming.
	StrictHeaders bool `koanf:"strict_headers"`

	// CaseSensitive makes header lookups match exact case.
	CaseSensitive bool `koanf:"case_sensitive"`

	// Aliases are groups of synonym header names.
	Aliases [][]string `koanf:"aliases"`

	// Trim strips surrounding whitespace from fields.
	Trim bool `koanf:"trim"`

	// SkipRows ignores the first N physical lines.
	SkipRows int `koanf:"skip_rows"`

	// Multiline lets quoted fields span physical lines.
	Multiline bool `koanf:"multiline"`

	// Rejoin is the text inserted between merged physical lines.
	Rejoin string `koanf:"rejoin"`

	// BackslashEscape accepts \" inside double-quoted fields.
	BackslashEscape bool `koanf:"backslash_escape"`

	// SingleQuote accepts 'value' as an enclosed field.
	SingleQuote bool `koanf:"single_quote"`

	// ValidateColumns fails records whose field count differs from the
	// header column count.
	ValidateColumns bool `koanf:"validate_columns"`

	// EmptyMissing yields "" for absent columns instead of an error.
	EmptyMissing bool `koanf:"empty_missing"`

	// Encoding names the input character encoding (utf-8, latin1,
	// windows-1251, windows-1252).
	Encoding string `koanf:"encoding"`
}

// ImportConfig holds the import target settings.
type ImportConfig struct {
	// Target names the storage backend: sqlite, duckdb or postgres.
	Target string `koanf:"target"`

	// DSN is the target connection string. For sqlite and duckdb this is
	// a file path (or :memory:); for postgres a pgx URL.
	DSN string `koanf:"dsn"`

	// Batch is the number of records buffered per insert batch.
	Batch int `koanf:"batch"`
}

// ServeConfig holds the preview API server settings.
type ServeConfig struct {
	Port    int    `koanf:"port"`
	DataDir string `koanf:"data_dir"`
	Watch   bool   `koanf:"watch"`
	Preview int    `koanf:"preview"`
}

// Default configuration values.
const (
	DefaultStateFile = ".leapcsv/state.db"
	DefaultOutput    = "auto"
	DefaultLogLevel  = "warn"
	DefaultTarget    = "sqlite"
	DefaultBatch     = 500
	DefaultPort      = 8765
	DefaultPreview   = 10
)

// ReaderOptions translates the read configuration into engine options.
func (c *Config) ReaderOptions() (reader.Options, error) {
	opts := reader.Options{
		SkipRows:             c.Read.SkipRows,
		NoHeader:             c.Read.NoHeader,
		Strict:               c.Read.StrictHeaders,
		CaseSensitive:        c.Read.CaseSensitive,
		Trim:                 c.Read.Trim,
		QuotedNewlines:       c.Read.Multiline,
		Rejoin:               c.Read.Rejoin,
		AllowBackslashEscape: c.Read.BackslashEscape,
		AllowSingleQuote:     c.Read.SingleQuote,
		ValidateColumnCount:  c.Read.ValidateColumns,
		EmptyForMissing:      c.Read.EmptyMissing,
	}

	if c.Read.Dialect != "" {
		d, ok := dialect.Get(c.Read.Dialect)
		if !ok {
			return reader.Options{}, fmt.Errorf("unknown dialect %q (available: %s)",
				c.Read.Dialect, strings.Join(dialect.List(), ", "))
		}
		opts.Separator = d.Separator
		opts.QuotedNewlines = opts.QuotedNewlines || d.QuotedNewlines
		opts.AllowSingleQuote = opts.AllowSingleQuote || d.AllowSingleQuote
		opts.AllowBackslashEscape = opts.AllowBackslashEscape || d.AllowBackslashEscape
		if opts.Rejoin == "" {
			opts.Rejoin = d.Rejoin
		}
	}

	// An explicit separator overrides the preset's.
	if c.Read.Separator != "" {
		sep, err := ParseSeparator(c.Read.Separator)
		if err != nil {
			return reader.Options{}, err
		}
		opts.Separator = sep
	}

	for _, cand := range c.Read.Candidates {
		sep, err := ParseSeparator(cand)
		if err != nil {
			return reader.Options{}, fmt.Errorf("candidate separator: %w", err)
		}
		opts.Candidates = append(opts.Candidates, sep)
	}

	for _, group := range c.Read.Aliases {
		opts.Aliases = append(opts.Aliases, header.AliasGroup(group))
	}

	return opts, nil
}

// ParseSeparator maps a separator spelling to its character. Single
// characters stand for themselves; "tab", "\t", "comma", "pipe",
// "semicolon" and "space" are accepted names.
func ParseSeparator(s string) (byte, error) {
	switch strings.ToLower(s) {
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "pipe":
		return '|', nil
	case "semicolon":
		return ';', nil
	case "space":
		return ' ', nil
	}
	if len(s) == 1 && s[0] < 0x80 {
		return s[0], nil
	}
	return 0, fmt.Errorf("invalid separator %q", s)
}

// Level maps the configured log level to slog.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

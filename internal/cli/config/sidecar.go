package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sidecar carries per-file overrides, loaded from a <data>.leapcsv.yml
// file next to the data file. Pointer fields distinguish "absent" from
// "explicitly false", so a sidecar only overrides what it names.
type Sidecar struct {
	Dialect         *string    `yaml:"dialect"`
	Separator       *string    `yaml:"separator"`
	NoHeader        *bool      `yaml:"no_header"`
	StrictHeaders   *bool      `yaml:"strict_headers"`
	CaseSensitive   *bool      `yaml:"case_sensitive"`
	Aliases         [][]string `yaml:"aliases"`
	Trim            *bool      `yaml:"trim"`
	SkipRows        *int       `yaml:"skip_rows"`
	Multiline       *bool      `yaml:"multiline"`
	Rejoin          *string    `yaml:"rejoin"`
	BackslashEscape *bool      `yaml:"backslash_escape"`
	SingleQuote     *bool      `yaml:"single_quote"`
	ValidateColumns *bool      `yaml:"validate_columns"`
	EmptyMissing    *bool      `yaml:"empty_missing"`
	Encoding        *string    `yaml:"encoding"`

	// Table overrides the table name derived from the file name on import.
	Table string `yaml:"table"`
}

// SidecarPath returns the sidecar file path for a data file:
// data/users.csv -> data/users.leapcsv.yml.
func SidecarPath(dataFile string) string {
	base := dataFile
	if i := strings.LastIndex(base, "."); i > strings.LastIndex(base, "/") {
		base = base[:i]
	}
	return base + ".leapcsv.yml"
}

// LoadSidecar reads the sidecar for dataFile, if one exists. A missing
// sidecar is not an error; unknown keys in an existing one are.
func LoadSidecar(dataFile string) (*Sidecar, error) {
	path := SidecarPath(dataFile)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sidecar %s: %w", path, err)
	}

	var sc Sidecar
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse sidecar %s: %w", path, err)
	}
	return &sc, nil
}

// ApplySidecar overlays sidecar values onto a copy of the read config.
func ApplySidecar(rc ReadConfig, sc *Sidecar) ReadConfig {
	if sc == nil {
		return rc
	}
	if sc.Dialect != nil {
		rc.Dialect = *sc.Dialect
	}
	if sc.Separator != nil {
		rc.Separator = *sc.Separator
	}
	if sc.NoHeader != nil {
		rc.NoHeader = *sc.NoHeader
	}
	if sc.StrictHeaders != nil {
		rc.StrictHeaders = *sc.StrictHeaders
	}
	if sc.CaseSensitive != nil {
		rc.CaseSensitive = *sc.CaseSensitive
	}
	if len(sc.Aliases) > 0 {
		rc.Aliases = sc.Aliases
	}
	if sc.Trim != nil {
		rc.Trim = *sc.Trim
	}
	if sc.SkipRows != nil {
		rc.SkipRows = *sc.SkipRows
	}
	if sc.Multiline != nil {
		rc.Multiline = *sc.Multiline
	}
	if sc.Rejoin != nil {
		rc.Rejoin = *sc.Rejoin
	}
	if sc.BackslashEscape != nil {
		rc.BackslashEscape = *sc.BackslashEscape
	}
	if sc.SingleQuote != nil {
		rc.SingleQuote = *sc.SingleQuote
	}
	if sc.ValidateColumns != nil {
		rc.ValidateColumns = *sc.ValidateColumns
	}
	if sc.EmptyMissing != nil {
		rc.EmptyMissing = *sc.EmptyMissing
	}
	if sc.Encoding != nil {
		rc.Encoding = *sc.Encoding
	}
	return rc
}

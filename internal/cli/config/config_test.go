package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapcsv/internal/cli/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultOutput, cfg.Output)
	assert.Equal(t, config.DefaultStateFile, cfg.StatePath)
	assert.Equal(t, config.DefaultTarget, cfg.Import.Target)
	assert.Equal(t, config.DefaultBatch, cfg.Import.Batch)
	assert.Equal(t, config.DefaultPort, cfg.Serve.Port)
	assert.True(t, cfg.Read.Multiline, "multiline quoting is on by default")
	assert.False(t, cfg.Read.NoHeader)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "leapcsv.yaml")
	content := `
output: json
read:
  separator: ";"
  trim: true
  aliases:
    - [Cat, Category]
import:
  target: duckdb
  dsn: warehouse.db
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	cfg, err := config.Load(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, ";", cfg.Read.Separator)
	assert.True(t, cfg.Read.Trim)
	assert.Equal(t, [][]string{{"Cat", "Category"}}, cfg.Read.Aliases)
	assert.Equal(t, "duckdb", cfg.Import.Target)
	assert.Equal(t, "warehouse.db", cfg.Import.DSN)
	assert.Equal(t, cfgPath, config.GetConfigFileUsed())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "leapcsv.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: json\n"), 0o644))

	t.Setenv("LEAPCSV_OUTPUT", "csv")
	t.Setenv("LEAPCSV_READ__SEPARATOR", "tab")

	cfg, err := config.Load(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Output)
	assert.Equal(t, "tab", cfg.Read.Separator)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	t.Setenv("LEAPCSV_OUTPUT", "csv")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	flags.String("separator", "", "")
	flags.Bool("no-header", false, "")
	require.NoError(t, flags.Parse([]string{"--output=markdown", "--separator=|", "--no-header"}))

	cfg, err := config.Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.Output)
	assert.Equal(t, "|", cfg.Read.Separator)
	assert.True(t, cfg.Read.NoHeader)
}

func TestLoad_UnchangedFlagIgnored(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "text", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := config.Load("", flags)
	require.NoError(t, err)

	// Flag default must not shadow the config default.
	assert.Equal(t, config.DefaultOutput, cfg.Output)
}

func TestParseSeparator(t *testing.T) {
	tests := []struct {
		in      string
		want    byte
		wantErr bool
	}{
		{",", ',', false},
		{";", ';', false},
		{"tab", '\t', false},
		{`\t`, '\t', false},
		{"pipe", '|', false},
		{"comma", ',', false},
		{"", 0, true},
		{"ab", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := config.ParseSeparator(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReaderOptions(t *testing.T) {
	cfg := &config.Config{
		Read: config.ReadConfig{
			Separator:       ";",
			Candidates:      []string{",", "tab"},
			Trim:            true,
			Multiline:       true,
			Aliases:         [][]string{{"Cat", "Category"}},
			ValidateColumns: true,
		},
	}

	opts, err := cfg.ReaderOptions()
	require.NoError(t, err)

	assert.Equal(t, byte(';'), opts.Separator)
	assert.Equal(t, []byte{',', '\t'}, opts.Candidates)
	assert.True(t, opts.Trim)
	assert.True(t, opts.QuotedNewlines)
	assert.True(t, opts.ValidateColumnCount)
	require.Len(t, opts.Aliases, 1)
	assert.Equal(t, []string{"Cat", "Category"}, []string(opts.Aliases[0]))
}

func TestReaderOptions_BadSeparator(t *testing.T) {
	cfg := &config.Config{Read: config.ReadConfig{Separator: "nope"}}
	_, err := cfg.ReaderOptions()
	require.Error(t, err)
}

func TestReaderOptions_DialectPreset(t *testing.T) {
	cfg := &config.Config{Read: config.ReadConfig{Dialect: "tsv"}}

	opts, err := cfg.ReaderOptions()
	require.NoError(t, err)

	assert.Equal(t, byte('\t'), opts.Separator)
	assert.True(t, opts.QuotedNewlines)
}

func TestReaderOptions_SeparatorOverridesDialect(t *testing.T) {
	cfg := &config.Config{Read: config.ReadConfig{Dialect: "tsv", Separator: "pipe"}}

	opts, err := cfg.ReaderOptions()
	require.NoError(t, err)

	assert.Equal(t, byte('|'), opts.Separator)
}

func TestReaderOptions_UnknownDialect(t *testing.T) {
	cfg := &config.Config{Read: config.ReadConfig{Dialect: "excel95"}}

	_, err := cfg.ReaderOptions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dialect")
	assert.Contains(t, err.Error(), "tsv", "the error lists the registered presets")
}

func TestSidecar(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "users.csv")

	sidecar := `
separator: ";"
no_header: true
table: app_users
aliases:
  - [Cat, Category]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.leapcsv.yml"), []byte(sidecar), 0o644))

	sc, err := config.LoadSidecar(dataFile)
	require.NoError(t, err)
	require.NotNil(t, sc)
	assert.Equal(t, "app_users", sc.Table)

	rc := config.ApplySidecar(config.ReadConfig{Trim: true}, sc)
	assert.Equal(t, ";", rc.Separator)
	assert.True(t, rc.NoHeader)
	assert.True(t, rc.Trim, "unmentioned options survive the overlay")
	assert.Equal(t, [][]string{{"Cat", "Category"}}, rc.Aliases)
}

func TestSidecar_Missing(t *testing.T) {
	sc, err := config.LoadSidecar(filepath.Join(t.TempDir(), "absent.csv"))
	require.NoError(t, err)
	assert.Nil(t, sc)
}

func TestSidecar_UnknownKeyRejected(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "users.csv")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.leapcsv.yml"),
		[]byte("separater: \";\"\n"), 0o644))

	_, err := config.LoadSidecar(dataFile)
	require.Error(t, err)
}

func TestSidecarPath(t *testing.T) {
	assert.Equal(t, "data/users.leapcsv.yml", config.SidecarPath("data/users.csv"))
	assert.Equal(t, "plain.leapcsv.yml", config.SidecarPath("plain"))
}

package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapcsv/internal/cli/config"
	"github.com/leapstack-labs/leapcsv/pkg/reader"
)

// openReader builds a Reader over a data file, with the file's sidecar
// overrides (if any) applied on top of the global read config. The
// returned closer owns the file handle.
func openReader(cmd *cobra.Command, path string) (*reader.Reader, io.Closer, *config.Sidecar, error) {
	cfg := GetConfig(cmd.Context())

	sc, err := config.LoadSidecar(path)
	if err != nil {
		return nil, nil, nil, err
	}

	fileCfg := *cfg
	fileCfg.Read = config.ApplySidecar(cfg.Read, sc)

	opts, err := fileCfg.ReaderOptions()
	if err != nil {
		return nil, nil, nil, err
	}
	opts.Logger = GetLogger(cmd.Context())

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var src reader.LineSource
	if enc := fileCfg.Read.Encoding; enc != "" {
		src, err = reader.NewDecodeSource(f, enc)
		if err != nil {
			_ = f.Close()
			return nil, nil, nil, err
		}
	} else {
		src = reader.NewScannerSource(f)
	}

	rd, err := reader.New(src, opts)
	if err != nil {
		_ = f.Close()
		return nil, nil, nil, err
	}
	return rd, f, sc, nil
}

// tableName derives the import table name for a data file: the sidecar
// override when present, otherwise the base file name with its
// extension stripped and non-identifier characters flattened.
func tableName(path string, sc *config.Sidecar) string {
	if sc != nil && sc.Table != "" {
		return sc.Table
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "data"
	}
	return b.String()
}

// printSeparator renders a separator byte readably.
func printSeparator(sep byte) string {
	switch sep {
	case '\t':
		return `\t`
	default:
		return string(sep)
	}
}

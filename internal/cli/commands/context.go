// Package commands implements the leapcsv subcommands.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/leapstack-labs/leapcsv/internal/cli/config"
	"github.com/leapstack-labs/leapcsv/internal/cli/output"
)

// Context keys, populated by the root command's PersistentPreRunE.
type (
	configKey   struct{}
	rendererKey struct{}
	loggerKey   struct{}
)

// WithConfig stores the loaded config in the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithRenderer stores the renderer in the context.
func WithRenderer(ctx context.Context, r *output.Renderer) context.Context {
	return context.WithValue(ctx, rendererKey{}, r)
}

// WithLogger stores the logger in the context.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Safe fallback for commands run outside the root wiring (tests).
	return &config.Config{
		Read:      config.ReadConfig{Multiline: true},
		Output:    config.DefaultOutput,
		StatePath: config.DefaultStateFile,
		Import: config.ImportConfig{
			Target: config.DefaultTarget,
			Batch:  config.DefaultBatch,
		},
		Serve: config.ServeConfig{
			Port:    config.DefaultPort,
			DataDir: ".",
			Preview: config.DefaultPreview,
		},
	}
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapcsv/internal/serve"
)

// NewServeCommand creates the serve command: a local HTTP preview API
// over a directory of data files.
func NewServeCommand() *cobra.Command {
	var (
		port    int
		dataDir string
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve a preview API over a directory of data files",
		Long: `Start a local HTTP server exposing the data files in a directory:

  GET /healthz                        liveness check
  GET /api/files                      list data files
  GET /api/files/{name}/preview       first records of a file, as JSON

Files are parsed with the configured read options. With --watch the
file list follows filesystem changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dataDir
			if len(args) > 0 {
				dir = args[0]
			}
			return runServe(cmd, dir, port, watch)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on")
	cmd.Flags().StringVar(&dataDir, "dir", "", "Directory of data files (default current directory)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Follow filesystem changes")
	return cmd
}

func runServe(cmd *cobra.Command, dir string, port int, watch bool) error {
	cfg := GetConfig(cmd.Context())
	out := GetRenderer(cmd.Context())
	log := GetLogger(cmd.Context())

	if dir == "" {
		dir = cfg.Serve.DataDir
	}
	if dir == "" {
		dir = "."
	}
	if port <= 0 {
		port = cfg.Serve.Port
	}

	opts, err := cfg.ReaderOptions()
	if err != nil {
		return err
	}

	srv := serve.NewServer(serve.Config{
		Port:    port,
		DataDir: dir,
		Watch:   watch || cfg.Serve.Watch,
		Preview: cfg.Serve.Preview,
		Options: opts,
		Logger:  log,
	})

	out.Textf("serving %s on http://localhost:%d\n", dir, port)
	if err := srv.Serve(cmd.Context()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

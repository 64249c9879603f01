// Package serve exposes parsed CSV previews over a small HTTP API.
//
//	GET /healthz                   liveness probe
//	GET /api/files                 data files found in the data directory
//	GET /api/files/{name}/preview  first N records of one file as JSON
//
// The file listing is scanned once at startup and, with watching
// enabled, re-scanned when the data directory changes.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapcsv/pkg/reader"
)

// dataExtensions are the file suffixes treated as delimited data.
var dataExtensions = map[string]bool{
	".csv": true,
	".tsv": true,
	".txt": true,
	".psv": true,
}

// Config holds server settings.
type Config struct {
	Port    int
	DataDir string
	Watch   bool

	// Preview is the default record count per preview response.
	Preview int

	// Options configures every read operation the server performs.
	Options reader.Options

	Logger *slog.Logger
}

// Server serves CSV previews from a data directory.
type Server struct {
	cfg Config
	log *slog.Logger

	mu    sync.RWMutex
	files []string
}

// NewServer creates a server. The data directory is scanned on Serve.
func NewServer(cfg Config) *Server {
	if cfg.Preview <= 0 {
		cfg.Preview = 10
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{cfg: cfg, log: log}
}

// Serve starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.rescan(); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.log.Info("starting preview server",
		"addr", fmt.Sprintf("http://localhost:%d", s.cfg.Port),
		"data_dir", s.cfg.DataDir)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.log.Debug("shutting down preview server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// routes builds the chi router. Exposed for handler tests.
func (s *Server) routes() http.Handler {
	r := chi.NewMux()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/files", s.handleFiles)
	r.Get("/api/files/{name}/preview", s.handlePreview)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type fileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func (s *Server) handleFiles(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	names := make([]string, len(s.files))
	copy(names, s.files)
	s.mu.RUnlock()

	infos := make([]fileInfo, 0, len(names))
	for _, name := range names {
		fi, err := os.Stat(filepath.Join(s.cfg.DataDir, name))
		if err != nil {
			continue
		}
		infos = append(infos, fileInfo{Name: name, Size: fi.Size()})
	}
	writeJSON(w, http.StatusOK, infos)
}

type previewResponse struct {
	File    string              `json:"file"`
	Headers []string            `json:"headers"`
	Records []map[string]string `json:"records"`
	Total   int                 `json:"shown"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.knownFile(name) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown file %q", name))
		return
	}

	limit := s.cfg.Preview
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	resp, err := s.preview(r.Context(), name, limit)
	if err != nil {
		s.log.Error("preview failed", "file", name, "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// preview reads the first limit records of one data file.
func (s *Server) preview(ctx context.Context, name string, limit int) (*previewResponse, error) {
	f, err := os.Open(filepath.Join(s.cfg.DataDir, name))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	rd, err := reader.New(reader.NewScannerSource(f), s.cfg.Options)
	if err != nil {
		return nil, err
	}

	resp := &previewResponse{File: name, Records: []map[string]string{}}
	for len(resp.Records) < limit {
		rec, err := rd.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		values, err := rec.Values()
		if err != nil {
			return nil, err
		}
		headers := rec.Headers()
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(values) {
				row[h] = values[i]
			} else {
				row[h] = ""
			}
		}
		resp.Records = append(resp.Records, row)
	}

	if table := rd.Header(); table != nil {
		resp.Headers = table.Names()
	}
	resp.Total = len(resp.Records)
	return resp, nil
}

func (s *Server) knownFile(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.files {
		if f == name {
			return true
		}
	}
	return false
}

// rescan rebuilds the file listing from the data directory.
func (s *Server) rescan() error {
	entries, err := os.ReadDir(s.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("scan data directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if dataExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	s.mu.Lock()
	s.files = files
	s.mu.Unlock()

	s.log.Debug("data directory scanned", "files", len(files))
	return nil
}

// watchFiles re-scans the listing when the data directory changes.
// Events are debounced, editors tend to fire several per save.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.cfg.DataDir); err != nil {
		s.log.Error("failed to watch data directory", "error", err)
		return nil // keep serving without watching
	}

	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				if err := s.rescan(); err != nil {
					s.log.Error("rescan failed", "error", err)
				}
			})

		case err := <-watcher.Errors:
			s.log.Error("watcher error", "error", err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

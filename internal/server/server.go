// Package server exposes dependency resolution over HTTP.
//
// Routes:
//
//	GET  /healthz              build info
//	GET  /v1/managers          supported managers
//	POST /v1/resolve           {"root": "/abs/dir", "manager": "dep"}
//	POST /v1/parse/{manager}   manifest body; {manager} may also be a file name
//
// The resolve endpoint follows the collection contract of the library: a
// manifest that cannot be read yields 200 with an empty dependency list and
// a single diagnostic in "error". Only malformed requests are rejected.
package server

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/godepscan/pkg/pipeline"
)

const shutdownTimeout = 10 * time.Second

// Config configures the HTTP server.
type Config struct {
	Addr string

	// AllowedRoots restricts the directories /v1/resolve may read. Empty
	// means any absolute directory.
	AllowedRoots []string

	// DefaultManager is used when a resolve request names no manager.
	DefaultManager string

	FlushTrailingStanza bool
	CacheTTL            time.Duration
}

// Server serves the HTTP API on top of a pipeline.Runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
	router chi.Router
}

// New creates a server. The runner is shared by all requests.
func New(runner *pipeline.Runner, logger *log.Logger, cfg Config) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, logger: logger, cfg: cfg}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/managers", s.handleManagers)
		r.Post("/resolve", s.handleResolve)
		r.Post("/parse/{manager}", s.handleParse)
	})
	return r
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// rootAllowed reports whether root lies inside one of allowed. An empty
// allow list permits every root.
func rootAllowed(root string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	root = filepath.Clean(root)
	for _, a := range allowed {
		rel, err := filepath.Rel(filepath.Clean(a), root)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}

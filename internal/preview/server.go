// Package preview serves a generated report directory over HTTP for local
// inspection.
package preview

import (
	"context"
	"net/http"
	"os"
	"time"

	"datascope/internal"
	"datascope/internal/errors"
	"datascope/internal/report"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config holds preview server settings.
type Config struct {
	Addr string
	Dir  string
}

// Server serves one report directory. The root path redirects to the
// report page; everything else maps straight onto directory contents.
type Server struct {
	router *chi.Mux
	cfg    Config
	log    *internal.Logger
}

// NewServer validates the report directory and builds the router.
func NewServer(cfg Config, logger *internal.Logger) (*Server, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, errors.DataAccess("report directory not found: "+cfg.Dir, err)
	}
	if !info.IsDir() {
		return nil, errors.DataAccess(cfg.Dir+" is not a directory", nil)
	}

	s := &Server{router: chi.NewRouter(), cfg: cfg, log: logger}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/"+report.FileName, http.StatusFound)
	})
	s.router.Handle("/*", http.FileServer(http.Dir(s.cfg.Dir)))
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the listener fails or ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("preview server listening on %s (serving %s)", s.cfg.Addr, s.cfg.Dir)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

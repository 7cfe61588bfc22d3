package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/search"
)

const (
	// DefaultMaxPerPage caps the per_page query parameter.
	DefaultMaxPerPage = 100

	shutdownTimeout = 10 * time.Second
)

// Backend is what the HTTP API serves.
type Backend interface {
	SearchPage(ctx context.Context, query string, page, perPage int) (*search.Page, error)
	GetSnippet(ctx context.Context, id core.DocumentID, query string) string
	// Manifest returns the serving snapshot's manifest, or nil when nothing
	// is being served.
	Manifest() *core.Manifest
	Reload(ctx context.Context) error
}

// Server exposes a Backend over JSON HTTP.
type Server struct {
	backend    Backend
	maxPerPage int
	logger     *slog.Logger
	mux        *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxPerPage caps how many results one request may ask for.
func WithMaxPerPage(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxPerPage = n
		}
	}
}

// New creates a Server for backend.
func New(backend Backend, opts ...Option) (*Server, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	s := &Server{
		backend:    backend,
		maxPerPage: DefaultMaxPerPage,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/api/search", s.HandleSearch)
	s.mux.HandleFunc("/api/snippet", s.HandleSnippet)
	s.mux.HandleFunc("/api/status", s.HandleStatus)
	s.mux.HandleFunc("/api/reload", s.HandleReload)
	return s, nil
}

// Handler returns the request router with access logging.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.mux.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Package server provides the HTTP server for the evidentry API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/evidentry/evidentry/internal/citations"
	"github.com/evidentry/evidentry/internal/evidence"
	"github.com/evidentry/evidentry/internal/registry"
	"github.com/evidentry/evidentry/pkg/logging"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	store    *evidence.Store
	ledger   *citations.Ledger
	registry *registry.Registry
	logger   *zerolog.Logger
	config   Config
	httpSrv  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server over the given record store, ledger, and registry.
func New(store *evidence.Store, ledger *citations.Ledger, reg *registry.Registry, cfg Config, opts ...Option) *Server {
	s := &Server{
		store:    store,
		ledger:   ledger,
		registry: reg,
		logger:   logging.Default(),
		config:   cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the fully wired HTTP handler, including middleware.
// Exposed for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// ListenAndServe runs the server until the context is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("API server listening")
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serving on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown() error {
	if s.httpSrv == nil {
		return nil
	}
	s.logger.Info().Msg("API server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}

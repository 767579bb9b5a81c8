// Package server exposes the dashboard data over an HTTP JSON API.
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/centsible/centsible/internal/service"
)

// DefaultDetectionWindow is how far back the recurring endpoint looks for
// transactions. Two years gives monthly-cadence merchants enough samples.
const DefaultDetectionWindow = 2 * 365 * 24 * time.Hour

// Server serves the dashboard API.
type Server struct {
	storage    service.Storage
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a Server listening on addr, backed by the given storage.
func New(addr string, storage service.Storage) *Server {
	s := &Server{
		storage: storage,
		logger:  slog.Default().With("component", "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/v1/recurring", s.handleListRecurring)
	mux.HandleFunc("PUT /api/v1/recurring/overrides", s.handleUpsertOverride)
	mux.HandleFunc("DELETE /api/v1/recurring/overrides/{merchantKey}", s.handleDeleteOverride)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.logRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the server's HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// UseTLS installs a certificate so the server listens over HTTPS.
func (s *Server) UseTLS(cert tls.Certificate) {
	s.httpServer.TLSConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
}

// ListenAndServe runs the server until the context is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.httpServer.Addr, "tls", s.httpServer.TLSConfig != nil)
		var err error
		if s.httpServer.TLSConfig != nil {
			err = s.httpServer.ListenAndServeTLS("", "")
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/recall-oss/recall/internal/config"
	"github.com/recall-oss/recall/internal/lifecycle"
	"github.com/recall-oss/recall/internal/memory"
	"github.com/recall-oss/recall/internal/telemetry"
)

// Server is the recall HTTP API server.
type Server struct {
	cfg     *config.Config
	lc      *lifecycle.Manager
	svc     *memory.Service
	metrics *telemetry.Metrics
	logger  *telemetry.Logger
}

// New creates a new server instance. metrics may be nil.
func New(cfg *config.Config, lc *lifecycle.Manager, svc *memory.Service, metrics *telemetry.Metrics, logger *telemetry.Logger) *Server {
	return &Server{
		cfg:     cfg,
		lc:      lc,
		svc:     svc,
		metrics: metrics,
		logger:  logger,
	}
}

// Start starts the HTTP server and blocks until the context is cancelled.
// In-flight requests get a grace period to finish before the listener
// closes.
func (s *Server) Start(ctx context.Context, addr string) error {
	mux := s.setupRoutes()

	srv := &http.Server{
		Addr:              addr,
		Handler:           corsMiddleware(s.requestMiddleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting recall API", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// Handler returns the routed handler without starting a listener.
// Used by tests.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.requestMiddleware(s.setupRoutes()))
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /health", s.handleHealth)

	// Memory records
	mux.HandleFunc("POST /memory", s.handleCreateMemory)
	mux.HandleFunc("GET /memory/search", s.handleSearchMemories)
	mux.HandleFunc("GET /memory/user/{user_id}", s.handleGetUserMemories)
	mux.HandleFunc("GET /memory/history/{user_id}", s.handleGetHistory)
	mux.HandleFunc("GET /memory/{memory_id}", s.handleGetMemory)
	mux.HandleFunc("PUT /memory/{memory_id}", s.handleUpdateMemory)
	mux.HandleFunc("DELETE /memory/{memory_id}", s.handleDeleteMemory)

	return mux
}

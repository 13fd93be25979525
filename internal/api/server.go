package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"roboquant/internal/config"
	"roboquant/internal/journal"
)

// Server runs the HTTP/WebSocket metrics query API. It is a read-only
// view over a journal.MetricsLogger — it never drives a run, only
// reports on one already in progress or finished.
type Server struct {
	cfg      config.DashboardConfig
	hub      *journal.Hub
	handlers *Handlers
	server   *http.Server
	logger   *slog.Logger
}

// NewServer creates a new API server backed by logger.
func NewServer(cfg config.DashboardConfig, logger journal.MetricsLogger, slogger *slog.Logger) *Server {
	hub := journal.NewHub(slogger)
	handlers := NewHandlers(logger, cfg, hub, slogger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.HandleHealth)
	mux.HandleFunc("/runs", handlers.HandleRuns)
	mux.HandleFunc("/metrics", handlers.HandleMetric)
	mux.HandleFunc("/ws", handlers.HandleWebSocket)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		cfg:      cfg,
		hub:      hub,
		handlers: handlers,
		server:   server,
		logger:   slogger.With("component", "api-server"),
	}
}

// Start runs the websocket hub and serves HTTP until Stop is called or
// the server errors.
func (s *Server) Start() error {
	go s.hub.Run()

	s.logger.Info("api server starting", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts the HTTP server down.
func (s *Server) Stop() error {
	s.logger.Info("stopping api server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

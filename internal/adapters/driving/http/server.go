// Package http is a thin demo transport over the four tool operations plus
// the resource GET surface. It is not the production RPC/tool-routing layer;
// that is out of scope (spec §1).
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driving"
)

// Server is the demo HTTP server exposing fetch/extract/chunk/compact and
// the resource-URI GET surface.
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	fetchService    driving.FetchService
	extractService  driving.ExtractService
	chunkService    driving.ChunkService
	compactService  driving.CompactService
	resourceService driving.ResourceService
	registry        prometheus.Gatherer
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
	Logger         *slog.Logger
	Registry       prometheus.Gatherer // optional; nil omits the /metrics route
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
	}
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg Config,
	fetchService driving.FetchService,
	extractService driving.ExtractService,
	chunkService driving.ChunkService,
	compactService driving.CompactService,
	resourceService driving.ResourceService,
) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:          http.NewServeMux(),
		version:         cfg.Version,
		logger:          logger,
		fetchService:    fetchService,
		extractService:  extractService,
		chunkService:    chunkService,
		compactService:  compactService,
		resourceService: resourceService,
		registry:        cfg.Registry,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.wrapMiddleware(s.router, cfg.AllowedOrigins),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

func (s *Server) wrapMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	h := next
	h = NewCORSMiddleware(allowedOrigins).Handler(h)
	h = NewRecoveryMiddleware(s.logger).Handler(h)
	h = NewLoggingMiddleware(s.logger).Handler(h)
	return h
}

// setupRoutes configures all HTTP routes. There is no auth middleware: this
// demo surface has no user/session domain concept (spec §1).
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /version", s.handleVersion)

	s.router.HandleFunc("POST /fetch", s.handleFetch)
	s.router.HandleFunc("POST /extract", s.handleExtract)
	s.router.HandleFunc("POST /chunk", s.handleChunk)
	s.router.HandleFunc("POST /compact", s.handleCompact)

	s.router.HandleFunc("GET /resources", s.handleListResources)
	s.router.HandleFunc("GET /resources/{kind}/{sourceID}", s.handleGetResource)

	if s.registry != nil {
		s.router.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
}

// Start starts the HTTP server with graceful shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

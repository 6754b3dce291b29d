package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"embacle-hq/embacle/pkg/audit"
	"embacle-hq/embacle/pkg/config"
	"embacle-hq/embacle/pkg/multiplex"
	"embacle-hq/embacle/pkg/proxy/handlers"
	"embacle-hq/embacle/pkg/proxy/middleware"
	"embacle-hq/embacle/pkg/telemetry/metrics"
)

// Server is the gateway's HTTP server.
type Server struct {
	config       config.ServerConfig
	source       handlers.AdapterSource
	metrics      *metrics.GatewayMetrics
	audit        *audit.Recorder
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server over the given adapter source. Metrics and
// audit may be nil; the /metrics route is mounted only when metrics
// are present.
func New(cfg config.ServerConfig, source handlers.AdapterSource, gm *metrics.GatewayMetrics, rec *audit.Recorder) *Server {
	return &Server{
		config:  cfg,
		source:  source,
		metrics: gm,
		audit:   rec,
	}
}

// Addr returns the listen address in host:port form.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// Start starts the HTTP server and blocks until shutdown, which is
// triggered by context cancellation, SIGINT/SIGTERM, or a listener
// error.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	// WriteTimeout must stay at its zero default while streaming is
	// served: SSE responses hold the connection open indefinitely.
	s.httpServer = &http.Server{
		Addr:           s.Addr(),
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server",
			"address", s.httpServer.Addr,
			"default_provider", s.config.DefaultProvider,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server, waiting up to the
// configured shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown",
			"timeout", s.config.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is accepting requests.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler builds the full route and middleware stack. Exposed so
// tests can drive the server through httptest without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	engine := multiplex.NewEngine(s.source)
	chatHandler := handlers.NewChatHandler(s.source, engine, s.metrics, s.audit)
	modelsHandler := handlers.NewModelsHandler(s.source, nil)
	healthHandler := handlers.NewHealthHandler(s.source, nil, s.metrics)

	mux.Handle("POST /v1/chat/completions", chatHandler)
	mux.Handle("GET /v1/models", modelsHandler)
	mux.Handle("GET /health", healthHandler)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// Middleware apply inside-out: auth closest to the mux, recovery
	// outermost so panics anywhere in the chain produce a 500 envelope.
	var handler http.Handler = mux
	handler = middleware.Auth(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Recovery(handler)

	return handler
}

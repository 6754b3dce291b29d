package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"embacle-hq/embacle/pkg/proxy"
)

// httpShutdownTimeout bounds graceful shutdown of the HTTP transport.
const httpShutdownTimeout = 10 * time.Second

// HTTPTransport serves MCP over a single POST /mcp endpoint
// (Streamable HTTP). Responses are JSON, or a single SSE event when
// the client's Accept header asks for text/event-stream.
type HTTPTransport struct {
	host         string
	port         int
	server       *Server
	httpServer   *http.Server
	shutdownOnce sync.Once
}

// NewHTTPTransport creates a transport bound to the given host and
// port.
func NewHTTPTransport(host string, port int, server *Server) *HTTPTransport {
	return &HTTPTransport{
		host:   host,
		port:   port,
		server: server,
	}
}

// Addr returns the listen address in host:port form.
func (t *HTTPTransport) Addr() string {
	return net.JoinHostPort(t.host, strconv.Itoa(t.port))
}

// Serve starts the HTTP transport and blocks until shutdown, which is
// triggered by context cancellation, SIGINT/SIGTERM, or a listener
// error.
func (t *HTTPTransport) Serve(ctx context.Context) error {
	t.httpServer = &http.Server{
		Addr:        t.Addr(),
		Handler:     t.Handler(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("MCP HTTP transport listening", "address", t.httpServer.Addr)

		if err := t.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("MCP HTTP transport error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, stopping MCP HTTP transport")
		return t.shutdown()
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return t.shutdown()
	case err := <-errChan:
		return err
	}
}

// shutdown drains in-flight requests, bounded by httpShutdownTimeout.
func (t *HTTPTransport) shutdown() error {
	var shutdownErr error

	t.shutdownOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()

		if t.httpServer != nil {
			if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
				shutdownErr = fmt.Errorf("MCP HTTP transport shutdown error: %w", err)
			}
		}

		slog.Info("MCP HTTP transport stopped")
	})

	return shutdownErr
}

// Handler builds the transport's route table. Exposed so tests can
// drive it through httptest without a listener.
func (t *HTTPTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /mcp", t.handleMCP)
	return mux
}

// handleMCP parses one JSON-RPC message from the body and writes the
// response in the format the client asked for.
func (t *HTTPTransport) handleMCP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxLineBytes))
	if err != nil {
		slog.ErrorContext(ctx, "failed to read MCP request body", "error", err)
		writeHTTPResponse(ctx, w, NewErrorResponse(nil, CodeParseError, "Parse error: "+err.Error()))
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		slog.ErrorContext(ctx, "failed to parse JSON-RPC body", "error", err)
		writeHTTPResponse(ctx, w, NewErrorResponse(nil, CodeParseError, "Parse error: "+err.Error()))
		return
	}

	slog.DebugContext(ctx, "handling HTTP MCP request", "method", req.Method)

	resp := t.server.HandleRequest(ctx, &req)
	if resp == nil {
		// Notification: acknowledged, nothing to send back.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		proxy.SetSSEHeaders(w)
		if err := proxy.WriteSSEEvent(w, resp); err != nil {
			slog.ErrorContext(ctx, "failed to write SSE response", "error", err)
		}
		return
	}

	writeHTTPResponse(ctx, w, resp)
}

// writeHTTPResponse writes a JSON-RPC response as plain JSON. JSON-RPC
// failures ride on HTTP 200; transport-level problems are the only
// thing HTTP status codes report.
func writeHTTPResponse(ctx context.Context, w http.ResponseWriter, resp *Response) {
	if err := proxy.WriteJSON(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write MCP response", "error", err)
	}
}

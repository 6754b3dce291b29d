package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"embacle-hq/embacle/pkg/config"
	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/proxy/types"
	"embacle-hq/embacle/pkg/telemetry/metrics"
)

type stubProvider struct {
	name string
	kind providers.Kind
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) DisplayName() string { return s.name }

func (s *stubProvider) Kind() providers.Kind { return s.kind }

func (s *stubProvider) Capabilities() providers.Features { return 0 }

func (s *stubProvider) DefaultModel() string { return "stub-model" }

func (s *stubProvider) AvailableModels() []string { return []string{"stub-model"} }

func (s *stubProvider) HealthCheck(context.Context) (bool, error) { return true, nil }

func (s *stubProvider) Complete(context.Context, *providers.ChatRequest) (*providers.ChatResponse, error) {
	return &providers.ChatResponse{Content: "stub reply", Model: "stub-model"}, nil
}

func (s *stubProvider) CompleteStream(context.Context, *providers.ChatRequest) (<-chan *providers.StreamChunk, error) {
	return nil, providers.NewInternalError(s.name, "streaming not stubbed")
}

type stubSource struct {
	adapters map[providers.Kind]providers.Provider
}

func (s *stubSource) Get(kind providers.Kind) (providers.Provider, error) {
	if adapter, ok := s.adapters[kind]; ok {
		return adapter, nil
	}
	return nil, errors.New("no adapter configured")
}

func (s *stubSource) DefaultKind() providers.Kind { return providers.Copilot }

func testSource() *stubSource {
	return &stubSource{adapters: map[providers.Kind]providers.Provider{
		providers.Copilot: &stubProvider{name: "copilot", kind: providers.Copilot},
	}}
}

func testServer(gm *metrics.GatewayMetrics) *Server {
	return New(config.DefaultConfig().Server, testSource(), gm, nil)
}

func TestHandlerServesChatCompletions(t *testing.T) {
	t.Setenv("EMBACLE_API_KEY", "")
	handler := testServer(nil).Handler()

	body := `{"model":"copilot","messages":[{"role":"user","content":"Hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a request ID header from the middleware chain")
	}

	var resp types.ChatCompletionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Choices[0].Message.Content != "stub reply" {
		t.Errorf("Unexpected content: %q", resp.Choices[0].Message.Content)
	}
}

func TestHandlerRejectsWrongMethod(t *testing.T) {
	t.Setenv("EMBACLE_API_KEY", "")
	handler := testServer(nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/completions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestHandlerUnknownRoute(t *testing.T) {
	t.Setenv("EMBACLE_API_KEY", "")
	handler := testServer(nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v2/everything", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestHandlerMountsMetricsWhenEnabled(t *testing.T) {
	gm := metrics.New(config.MetricsConfig{Enabled: true, Path: "/metrics"}, nil)
	handler := testServer(gm).Handler()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "embacle_") {
		t.Errorf("Expected gateway metrics in exposition, got: %.200s", rec.Body.String())
	}
}

func TestHandlerOmitsMetricsWhenDisabled(t *testing.T) {
	handler := testServer(nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without metrics, got %d", rec.Code)
	}
}

func TestHandlerAppliesAuth(t *testing.T) {
	t.Setenv("EMBACLE_API_KEY", "sekrit")
	handler := testServer(nil).Handler()

	body := `{"model":"copilot","messages":[{"role":"user","content":"Hi"}]}`

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with key, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAddr(t *testing.T) {
	srv := New(config.ServerConfig{Host: "127.0.0.1", Port: 3000}, testSource(), nil, nil)

	if got := srv.Addr(); got != "127.0.0.1:3000" {
		t.Errorf("Expected 127.0.0.1:3000, got %q", got)
	}
}

func TestStartFailsOnBusyPort(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to grab a port: %v", err)
	}
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	cfg := config.DefaultConfig().Server
	cfg.Host = "127.0.0.1"
	cfg.Port = port

	srv := New(cfg, testSource(), nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Start(ctx); err == nil {
		t.Error("Expected a listen error on a busy port")
	}
}

func TestShutdownWithoutStart(t *testing.T) {
	srv := testServer(nil)

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Expected no-op shutdown to succeed, got %v", err)
	}
	if srv.IsRunning() {
		t.Error("Server should not report running")
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	cfg := config.DefaultConfig().Server
	cfg.Host = "127.0.0.1"
	cfg.Port = 0

	srv := New(cfg, testSource(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	// Give the listener goroutine a moment, then cancel.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}

	if srv.IsRunning() {
		t.Error("Server should report stopped after shutdown")
	}
}

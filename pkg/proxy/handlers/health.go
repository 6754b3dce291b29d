package handlers

import (
	"log/slog"
	"net/http"

	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/proxy"
	"embacle-hq/embacle/pkg/proxy/types"
	"embacle-hq/embacle/pkg/telemetry/metrics"
)

// Per-provider health states reported by GET /health.
const (
	healthReady    = "ready"
	healthNotReady = "not_ready"
	healthNotFound = "not_found"
)

// HealthHandler serves GET /health. It reports per-provider readiness
// and answers 200 when at least one provider is ready, 503 otherwise.
// Each probe also publishes the provider_up gauge.
type HealthHandler struct {
	source  AdapterSource
	resolve BinaryResolver
	metrics *metrics.GatewayMetrics
}

// NewHealthHandler creates the health handler. A nil resolver falls
// back to the environment-aware default; metrics may be nil.
func NewHealthHandler(source AdapterSource, resolve BinaryResolver, gm *metrics.GatewayMetrics) *HealthHandler {
	if resolve == nil {
		resolve = DefaultBinaryResolver
	}
	return &HealthHandler{source: source, resolve: resolve, metrics: gm}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	statuses := make(map[string]string)
	anyReady := false

	for _, kind := range providers.AllKinds() {
		name := kind.String()

		if _, err := h.resolve(kind); err != nil {
			statuses[name] = healthNotFound
			h.metrics.SetProviderUp(name, false)
			continue
		}

		adapter, err := h.source.Get(kind)
		if err != nil {
			slog.DebugContext(ctx, "failed to create adapter",
				"provider", name,
				"error", err,
			)
			statuses[name] = "error: " + err.Error()
			h.metrics.SetProviderUp(name, false)
			continue
		}

		ready, err := adapter.HealthCheck(ctx)
		switch {
		case err != nil:
			slog.DebugContext(ctx, "health check failed",
				"provider", name,
				"error", err,
			)
			statuses[name] = "error: " + err.Error()
			h.metrics.SetProviderUp(name, false)
		case ready:
			statuses[name] = healthReady
			anyReady = true
			h.metrics.SetProviderUp(name, true)
		default:
			statuses[name] = healthNotReady
			h.metrics.SetProviderUp(name, false)
		}
	}

	status := "degraded"
	code := http.StatusServiceUnavailable
	if anyReady {
		status = "ok"
		code = http.StatusOK
	}

	resp := &types.HealthResponse{
		Status:    status,
		Providers: statuses,
	}

	if err := proxy.WriteJSON(w, code, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write health response", "error", err)
	}
}

// Package metrics provides Prometheus metrics for the Embacle gateway.
//
// # Overview
//
// GatewayMetrics tracks the request flow through both gateway surfaces
// (REST and MCP): per-provider request counts and latencies, error
// counts by kind, provider availability, and multiplex fan-out volume.
// All metrics live on a private registry so tests and embedding
// programs never collide with the global default.
//
// # Metrics
//
//   - embacle_requests_total{provider,model,surface}
//   - embacle_errors_total{provider,error_kind}
//   - embacle_request_duration_seconds{provider,model}
//   - embacle_provider_up{provider}
//   - embacle_multiplex_fanout_total
//
// # Usage
//
//	gm := metrics.New(cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, gm.Handler())
//
//	start := time.Now()
//	resp, err := provider.Complete(ctx, req)
//	gm.RecordRequest("copilot", "gpt-5", metrics.SurfaceREST, time.Since(start))
//
// The duration histogram buckets span 100ms to 120s. CLI-backed
// completions routinely take tens of seconds, so the upper buckets are
// much wider than typical HTTP service defaults.
package metrics

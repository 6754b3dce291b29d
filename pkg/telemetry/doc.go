// Package telemetry groups the gateway's observability concerns.
//
//   - logging: slog setup with hot-reloadable level
//   - metrics: Prometheus metrics and the /metrics handler
//
// Both are optional at the wiring level: the server and the MCP front
// accept nil metrics, and logging falls back to slog defaults when
// Setup is never called.
package telemetry

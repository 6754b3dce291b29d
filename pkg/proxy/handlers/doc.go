// Package handlers implements the HTTP handlers for the REST surface:
// chat completions (single, multiplex, and streaming), the models
// listing, and the provider health report.
//
// Handlers are plain http.Handler implementations wired together by
// pkg/server. They depend on an AdapterSource for provider adapters
// and optionally record metrics and audit records; both integrations
// are nil-safe so tests can construct handlers bare.
package handlers

// Package logging configures the process-wide structured logger.
//
// The gateway logs through log/slog everywhere. Setup installs the
// default handler from configuration and returns the logger; the log
// level lives in a shared slog.LevelVar so configuration reloads can
// adjust it without rebuilding handlers.
//
// All log output goes to stderr by default. This is load-bearing for
// the MCP stdio transport, where stdout carries the JSON-RPC protocol
// stream and a stray log line would corrupt it.
package logging

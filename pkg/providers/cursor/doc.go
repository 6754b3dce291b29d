// Package cursor implements the Cursor Agent CLI provider adapter.
//
// This package provides an implementation of the providers.Provider
// interface over the `cursor-agent` command-line tool. It supports:
//
//   - Blocking completions via `cursor-agent -p --output-format json`
//   - Streaming completions via `--output-format stream-json`
//   - Session resumption via `--resume`, keyed by request model
//   - Token usage reporting
//
// MCP servers are auto-approved with `--approve-mcps` so the CLI never
// blocks on an interactive prompt. The CLI has no system-prompt flag
// and no system message support; system messages are dropped from the
// rendered prompt. Temperature and max-token settings have no CLI
// equivalent and are logged then ignored.
//
// The CLI's JSON envelope matches Claude Code's (`result`, `is_error`,
// `session_id`, `usage`), but its stream events differ: "content"
// events carry text deltas and the "result" event carries the full
// final text.
package cursor

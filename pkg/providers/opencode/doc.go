// Package opencode implements the OpenCode CLI provider adapter.
//
// This package provides an implementation of the providers.Provider
// interface over the `opencode` command-line tool via its `run`
// subcommand with `--format json`. Models use the `provider/model`
// format (e.g. "anthropic/claude-sonnet-4").
//
// The CLI has no streaming mode: CompleteStream always returns an
// internal error, and callers are expected to route streaming requests
// elsewhere or fall back to blocking completions. Session resumption
// uses the `--session` flag, keyed by request model. System messages
// are embedded into the rendered prompt.
package opencode

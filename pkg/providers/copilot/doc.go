// Package copilot implements the GitHub Copilot CLI provider adapter.
//
// This package provides an implementation of the providers.Provider
// interface over the `copilot` command-line tool in non-interactive
// mode. Unlike the other CLI adapters, Copilot prints plain text rather
// than JSON, so the raw stdout is the response content and streaming is
// a line-by-line passthrough.
//
// System messages are embedded into the rendered prompt because the CLI
// has no system-prompt flag. Temperature and max-token settings have no
// CLI equivalent and are logged then ignored.
//
// Model discovery runs `gh copilot models` once at construction time;
// when the GitHub CLI is unavailable or returns nothing, a static model
// list is advertised instead.
package copilot

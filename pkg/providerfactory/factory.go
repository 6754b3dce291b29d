// Package providerfactory constructs provider adapters from runner
// kinds and caches them for reuse.
package providerfactory

import (
	"fmt"
	"log/slog"

	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/providers/claude"
	"embacle-hq/embacle/pkg/providers/copilot"
	"embacle-hq/embacle/pkg/providers/cursor"
	"embacle-hq/embacle/pkg/providers/opencode"
	"embacle-hq/embacle/pkg/runner"
)

// NewProvider creates the adapter for a runner kind over an existing
// runner configuration.
//
// Supported kinds:
//   - providers.ClaudeCode: the `claude` CLI
//   - providers.Copilot: the `copilot` CLI
//   - providers.CursorAgent: the `cursor-agent` CLI
//   - providers.OpenCode: the `opencode` CLI
//
// Example:
//
//	path, err := runner.ResolveBinary(providers.ClaudeCode)
//	if err != nil {
//	    return err
//	}
//	provider, err := providerfactory.NewProvider(providers.ClaudeCode, runner.NewConfig(path))
func NewProvider(kind providers.Kind, cfg *runner.Config) (providers.Provider, error) {
	slog.Debug("creating provider adapter",
		"kind", kind.String(),
		"binary", cfg.BinaryPath)

	var provider providers.Provider
	switch kind {
	case providers.ClaudeCode:
		provider = claude.NewProvider(cfg)
	case providers.Copilot:
		provider = copilot.NewProvider(cfg)
	case providers.CursorAgent:
		provider = cursor.NewProvider(cfg)
	case providers.OpenCode:
		provider = opencode.NewProvider(cfg)
	default:
		return nil, providers.NewConfigError("provider",
			fmt.Sprintf("unsupported provider kind: %q (supported: %s)",
				kind.String(), providers.ValidKindNames()))
	}

	slog.Info("provider adapter created",
		"name", provider.Name(),
		"default_model", provider.DefaultModel())

	return provider, nil
}

// CreateRunner resolves the CLI binary for a kind (environment override
// or PATH lookup) and constructs its adapter with default
// configuration.
func CreateRunner(kind providers.Kind) (providers.Provider, error) {
	path, err := runner.ResolveBinary(kind)
	if err != nil {
		return nil, err
	}
	return NewProvider(kind, runner.NewConfig(path))
}

package handlers

import (
	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/runner"
)

// AdapterSource supplies provider adapters by kind. It is satisfied by
// *providerfactory.Registry.
type AdapterSource interface {
	// Get returns the adapter for the kind, constructing and caching
	// it on first use.
	Get(kind providers.Kind) (providers.Provider, error)

	// DefaultKind returns the provider used when a model string
	// carries no recognized prefix.
	DefaultKind() providers.Kind
}

// BinaryResolver locates a provider's CLI binary, honoring environment
// overrides. The models and health handlers use it to decide which
// providers are installed; tests substitute a fake.
type BinaryResolver func(kind providers.Kind) (string, error)

// DefaultBinaryResolver resolves binaries from the environment
// override or PATH.
func DefaultBinaryResolver(kind providers.Kind) (string, error) {
	return runner.ResolveBinary(kind)
}

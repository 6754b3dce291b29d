package providerfactory

import (
	"log/slog"
	"sync"

	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/runner"
)

// ConfigFunc builds the runner configuration for a kind. Registries use
// it when constructing an adapter for the first time, so deployments
// can apply per-provider models, timeouts, and container settings.
type ConfigFunc func(kind providers.Kind) (*runner.Config, error)

// DefaultConfigFunc resolves the kind's binary and returns a default
// configuration for it.
func DefaultConfigFunc(kind providers.Kind) (*runner.Config, error) {
	path, err := runner.ResolveBinary(kind)
	if err != nil {
		return nil, err
	}
	return runner.NewConfig(path), nil
}

// Registry lazily creates and caches one adapter per runner kind.
//
// Construction failures are returned to the caller but never cached: a
// missing binary that gets installed later succeeds on the next call.
// Registry is safe for concurrent use.
type Registry struct {
	defaultKind providers.Kind
	configure   ConfigFunc

	mu       sync.Mutex
	adapters map[providers.Kind]providers.Provider
}

// NewRegistry creates a registry with the given default kind, using
// DefaultConfigFunc for adapter construction.
func NewRegistry(defaultKind providers.Kind) *Registry {
	return NewRegistryWithConfig(defaultKind, DefaultConfigFunc)
}

// NewRegistryWithConfig creates a registry whose adapters are built
// from configurations produced by configure.
func NewRegistryWithConfig(defaultKind providers.Kind, configure ConfigFunc) *Registry {
	return &Registry{
		defaultKind: defaultKind,
		configure:   configure,
		adapters:    make(map[providers.Kind]providers.Provider),
	}
}

// DefaultKind returns the kind used when a request names no provider.
func (r *Registry) DefaultKind() providers.Kind {
	return r.defaultKind
}

// Get returns the adapter for a kind, creating and caching it on first
// use.
func (r *Registry) Get(kind providers.Kind) (providers.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if adapter, ok := r.adapters[kind]; ok {
		return adapter, nil
	}

	cfg, err := r.configure(kind)
	if err != nil {
		return nil, err
	}
	adapter, err := NewProvider(kind, cfg)
	if err != nil {
		return nil, err
	}

	r.adapters[kind] = adapter
	slog.Debug("adapter cached in registry",
		"kind", kind.String(),
		"cached", len(r.adapters))
	return adapter, nil
}

// Cached reports whether an adapter for the kind has been created.
func (r *Registry) Cached(kind providers.Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.adapters[kind]
	return ok
}

package mcp

import (
	"sync"

	"embacle-hq/embacle/pkg/audit"
	"embacle-hq/embacle/pkg/multiplex"
	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/telemetry/metrics"
)

// AdapterSource yields provider adapters by kind. It is satisfied by
// providerfactory.Registry, which constructs adapters lazily and
// caches them on success.
type AdapterSource interface {
	Get(kind providers.Kind) (providers.Provider, error)
}

// State holds the provider configuration shared by every MCP tool: the
// active provider, an optional model override, and the multiplex
// fan-out list. All access is mutex-guarded because tools run on
// whatever goroutine the transport dispatches from.
type State struct {
	mu             sync.RWMutex
	activeKind     providers.Kind
	activeModel    *string
	multiplexKinds []providers.Kind

	source  AdapterSource
	engine  *multiplex.Engine
	metrics *metrics.GatewayMetrics
	audit   *audit.Recorder
}

// NewState creates tool state with the given default provider. Metrics
// and audit may be nil, which disables those integrations.
func NewState(defaultKind providers.Kind, source AdapterSource, gm *metrics.GatewayMetrics, rec *audit.Recorder) *State {
	return &State{
		activeKind: defaultKind,
		source:     source,
		engine:     multiplex.NewEngine(source),
		metrics:    gm,
		audit:      rec,
	}
}

// ActiveKind returns the provider receiving single-mode prompts.
func (s *State) ActiveKind() providers.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeKind
}

// SetActiveKind switches the active provider and resets the model
// override, since model names do not carry across providers.
func (s *State) SetActiveKind(kind providers.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeKind = kind
	s.activeModel = nil
}

// ActiveModel returns the model override, or nil when the provider
// default applies.
func (s *State) ActiveModel() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeModel == nil {
		return nil
	}
	model := *s.activeModel
	return &model
}

// SetActiveModel sets the model override; nil resets to the provider
// default.
func (s *State) SetActiveModel(model *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if model == nil {
		s.activeModel = nil
		return
	}
	m := *model
	s.activeModel = &m
}

// MultiplexKinds returns the providers receiving multiplex prompts.
func (s *State) MultiplexKinds() []providers.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kinds := make([]providers.Kind, len(s.multiplexKinds))
	copy(kinds, s.multiplexKinds)
	return kinds
}

// SetMultiplexKinds replaces the multiplex fan-out list. An empty list
// clears it.
func (s *State) SetMultiplexKinds(kinds []providers.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.multiplexKinds = make([]providers.Kind, len(kinds))
	copy(s.multiplexKinds, kinds)
}

// Adapter returns the adapter for the given kind, constructing it on
// first use.
func (s *State) Adapter(kind providers.Kind) (providers.Provider, error) {
	return s.source.Get(kind)
}

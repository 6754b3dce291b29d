package config

import "sync"

// Store holds the active configuration behind a read-write lock so the
// watcher can swap in a reloaded configuration while request handlers
// read it concurrently.
//
// Prefer passing *Config explicitly where the value is fixed for the
// component's lifetime; a Store is only for the settings that hot
// reload may change (log level, audit toggles).
type Store struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewStore creates a store holding cfg.
func NewStore(cfg *Config) *Store {
	return &Store{cfg: cfg}
}

// Current returns the active configuration. The returned value must be
// treated as read-only.
func (s *Store) Current() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Swap replaces the active configuration and returns the previous one.
func (s *Store) Swap(cfg *Config) *Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.cfg
	s.cfg = cfg
	return prev
}

package providerfactory

import (
	"testing"

	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/runner"
)

func TestRegistry_LazyCreationAndCaching(t *testing.T) {
	calls := 0
	reg := NewRegistryWithConfig(providers.ClaudeCode, func(kind providers.Kind) (*runner.Config, error) {
		calls++
		return runner.NewConfig("/usr/bin/" + kind.BinaryName()), nil
	})

	if reg.DefaultKind() != providers.ClaudeCode {
		t.Errorf("Expected default kind claude_code, got %v", reg.DefaultKind())
	}
	if reg.Cached(providers.ClaudeCode) {
		t.Error("Expected no adapter before first Get")
	}

	first, err := reg.Get(providers.ClaudeCode)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := reg.Get(providers.ClaudeCode)
	if err != nil {
		t.Fatalf("Second Get failed: %v", err)
	}

	if first != second {
		t.Error("Expected the cached adapter on the second Get")
	}
	if calls != 1 {
		t.Errorf("Expected one construction, got %d", calls)
	}
	if !reg.Cached(providers.ClaudeCode) {
		t.Error("Expected adapter to be cached after Get")
	}
}

func TestRegistry_ErrorsNotCached(t *testing.T) {
	calls := 0
	reg := NewRegistryWithConfig(providers.OpenCode, func(kind providers.Kind) (*runner.Config, error) {
		calls++
		if calls == 1 {
			return nil, providers.NewBinaryNotFoundError(kind.String(), kind.BinaryName())
		}
		return runner.NewConfig("/usr/bin/" + kind.BinaryName()), nil
	})

	if _, err := reg.Get(providers.OpenCode); err == nil {
		t.Fatal("Expected first Get to fail")
	}
	if reg.Cached(providers.OpenCode) {
		t.Error("Expected failed construction not to be cached")
	}

	p, err := reg.Get(providers.OpenCode)
	if err != nil {
		t.Fatalf("Expected second Get to succeed after the binary appears: %v", err)
	}
	if p.Kind() != providers.OpenCode {
		t.Errorf("Expected opencode adapter, got %v", p.Kind())
	}
}

func TestRegistry_SeparateAdaptersPerKind(t *testing.T) {
	reg := NewRegistryWithConfig(providers.ClaudeCode, func(kind providers.Kind) (*runner.Config, error) {
		return runner.NewConfig("/usr/bin/" + kind.BinaryName()), nil
	})

	claude, err := reg.Get(providers.ClaudeCode)
	if err != nil {
		t.Fatalf("Get claude failed: %v", err)
	}
	opencode, err := reg.Get(providers.OpenCode)
	if err != nil {
		t.Fatalf("Get opencode failed: %v", err)
	}

	if claude.Kind() == opencode.Kind() {
		t.Error("Expected distinct adapters per kind")
	}
}

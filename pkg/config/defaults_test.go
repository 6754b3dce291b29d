package config

import (
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.Server.Host; got != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", got, "127.0.0.1")
	}
	if got := cfg.Server.Port; got != 3000 {
		t.Errorf("Server.Port = %d, want 3000", got)
	}
	if got := cfg.Server.DefaultProvider; got != "copilot" {
		t.Errorf("Server.DefaultProvider = %q, want %q", got, "copilot")
	}
	if got := cfg.Server.WriteTimeout; got != 0 {
		t.Errorf("Server.WriteTimeout = %v, want 0 (streaming)", got)
	}
	if got := cfg.Runner.Timeout; got != 120*time.Second {
		t.Errorf("Runner.Timeout = %v, want 120s", got)
	}
	if cfg.Container.Enabled {
		t.Error("Container.Enabled = true, want false")
	}
	if got := cfg.Container.Network; got != "none" {
		t.Errorf("Container.Network = %q, want %q", got, "none")
	}
	if cfg.Audit.Enabled {
		t.Error("Audit.Enabled = true, want false")
	}
	if got := cfg.Audit.Driver; got != "sqlite3" {
		t.Errorf("Audit.Driver = %q, want %q", got, "sqlite3")
	}
	if got := cfg.Audit.PruneSchedule; got != "0 3 * * *" {
		t.Errorf("Audit.PruneSchedule = %q, want %q", got, "0 3 * * *")
	}
	if got := cfg.Telemetry.Logging.Level; got != "info" {
		t.Errorf("Telemetry.Logging.Level = %q, want %q", got, "info")
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("Telemetry.Metrics.Enabled = false, want true")
	}
	if got := cfg.MCP.Transport; got != "stdio" {
		t.Errorf("MCP.Transport = %q, want %q", got, "stdio")
	}
	if got := cfg.MCP.Port; got != 3001 {
		t.Errorf("MCP.Port = %d, want 3001", got)
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("Validate(DefaultConfig()) = %v, want nil", err)
	}
}

func TestApplyDefaultsIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	before := *cfg

	ApplyDefaults(cfg)

	if !reflect.DeepEqual(*cfg, before) {
		t.Error("second ApplyDefaults changed the configuration")
	}
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Runner.Timeout = 5 * time.Second
	cfg.Audit.Driver = "sqlite"
	cfg.Telemetry.Logging.Level = "debug"

	ApplyDefaults(cfg)

	if got := cfg.Server.Host; got != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want explicit %q", got, "0.0.0.0")
	}
	if got := cfg.Server.Port; got != 8080 {
		t.Errorf("Server.Port = %d, want explicit 8080", got)
	}
	if got := cfg.Runner.Timeout; got != 5*time.Second {
		t.Errorf("Runner.Timeout = %v, want explicit 5s", got)
	}
	if got := cfg.Audit.Driver; got != "sqlite" {
		t.Errorf("Audit.Driver = %q, want explicit %q", got, "sqlite")
	}
	if got := cfg.Telemetry.Logging.Level; got != "debug" {
		t.Errorf("Telemetry.Logging.Level = %q, want explicit %q", got, "debug")
	}
	// Untouched sections still get defaults.
	if got := cfg.Server.DefaultProvider; got != "copilot" {
		t.Errorf("Server.DefaultProvider = %q, want default %q", got, "copilot")
	}
	if got := cfg.MCP.Transport; got != "stdio" {
		t.Errorf("MCP.Transport = %q, want default %q", got, "stdio")
	}
}

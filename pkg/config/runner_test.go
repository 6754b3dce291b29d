package config

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
	"time"

	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/runner"
)

// fakeBinary writes an executable stub and returns its path.
func fakeBinary(t *testing.T, dir, name string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binaries use /bin/sh")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("writing fake binary: %v", err)
	}
	return path
}

func TestRunnerConfigForMapsSections(t *testing.T) {
	dir := t.TempDir()
	bin := fakeBinary(t, dir, "claude")
	t.Setenv("CLAUDE_CODE_BINARY", bin)

	cfg := DefaultConfig()
	cfg.Providers.ClaudeCode.Model = "sonnet"
	cfg.Providers.ClaudeCode.ExtraArgs = []string{"--verbose"}
	cfg.Runner.Timeout = 42 * time.Second
	cfg.Runner.MaxOutputBytes = 1 << 20
	cfg.Runner.AllowedEnvKeys = []string{"HOME", "TZ"}
	cfg.Runner.WorkingDirectory = dir

	rc, err := cfg.RunnerConfigFor(providers.ClaudeCode)
	if err != nil {
		t.Fatalf("RunnerConfigFor returned error: %v", err)
	}

	if got := rc.BinaryPath; got != bin {
		t.Errorf("BinaryPath = %q, want %q", got, bin)
	}
	if rc.Model == nil || *rc.Model != "sonnet" {
		t.Errorf("Model = %v, want sonnet", rc.Model)
	}
	if got := rc.Timeout; got != 42*time.Second {
		t.Errorf("Timeout = %v, want 42s", got)
	}
	if got := rc.MaxOutputBytes; got != 1<<20 {
		t.Errorf("MaxOutputBytes = %d, want %d", got, 1<<20)
	}
	if got := rc.ExtraArgs; !reflect.DeepEqual(got, []string{"--verbose"}) {
		t.Errorf("ExtraArgs = %v, want [--verbose]", got)
	}
	if got := rc.AllowedEnvKeys; !reflect.DeepEqual(got, []string{"HOME", "TZ"}) {
		t.Errorf("AllowedEnvKeys = %v, want [HOME TZ]", got)
	}
	if rc.WorkingDirectory == nil || *rc.WorkingDirectory != dir {
		t.Errorf("WorkingDirectory = %v, want %q", rc.WorkingDirectory, dir)
	}
	if rc.Container != nil {
		t.Error("Container should be nil when container execution is off")
	}
}

func TestRunnerConfigForDefaultsLeaveConfigSparse(t *testing.T) {
	dir := t.TempDir()
	bin := fakeBinary(t, dir, "opencode")
	t.Setenv("OPENCODE_BINARY", bin)

	rc, err := DefaultConfig().RunnerConfigFor(providers.OpenCode)
	if err != nil {
		t.Fatalf("RunnerConfigFor returned error: %v", err)
	}

	if rc.Model != nil {
		t.Errorf("Model = %v, want nil", rc.Model)
	}
	if got := rc.Timeout; got != 120*time.Second {
		t.Errorf("Timeout = %v, want default 120s", got)
	}
	if len(rc.ExtraArgs) != 0 {
		t.Errorf("ExtraArgs = %v, want empty", rc.ExtraArgs)
	}
	if got := rc.AllowedEnvKeys; !reflect.DeepEqual(got, runner.DefaultEnvKeys()) {
		t.Errorf("AllowedEnvKeys = %v, want runner defaults", got)
	}
	if rc.WorkingDirectory != nil {
		t.Errorf("WorkingDirectory = %v, want nil", rc.WorkingDirectory)
	}
}

func TestRunnerConfigForUsesConfiguredBinary(t *testing.T) {
	dir := t.TempDir()
	bin := fakeBinary(t, dir, "my-copilot")

	cfg := DefaultConfig()
	cfg.Providers.Copilot.Binary = bin

	rc, err := cfg.RunnerConfigFor(providers.Copilot)
	if err != nil {
		t.Fatalf("RunnerConfigFor returned error: %v", err)
	}
	if got := rc.BinaryPath; got != bin {
		t.Errorf("BinaryPath = %q, want configured %q", got, bin)
	}
}

func TestRunnerConfigForEnvBeatsConfiguredBinary(t *testing.T) {
	dir := t.TempDir()
	envBin := fakeBinary(t, dir, "env-copilot")
	cfgBin := fakeBinary(t, dir, "cfg-copilot")
	t.Setenv("COPILOT_BINARY", envBin)

	cfg := DefaultConfig()
	cfg.Providers.Copilot.Binary = cfgBin

	rc, err := cfg.RunnerConfigFor(providers.Copilot)
	if err != nil {
		t.Fatalf("RunnerConfigFor returned error: %v", err)
	}
	if got := rc.BinaryPath; got != envBin {
		t.Errorf("BinaryPath = %q, want env override %q", got, envBin)
	}
}

func TestRunnerConfigForMissingConfiguredBinary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.Copilot.Binary = filepath.Join(t.TempDir(), "nope")

	_, err := cfg.RunnerConfigFor(providers.Copilot)
	if err == nil {
		t.Fatal("RunnerConfigFor accepted a nonexistent binary, want error")
	}
	if !providers.IsConfig(err) {
		t.Errorf("error = %v, want config error", err)
	}
}

func TestRunnerConfigForContainerSection(t *testing.T) {
	dir := t.TempDir()
	bin := fakeBinary(t, dir, "claude")
	t.Setenv("CLAUDE_CODE_BINARY", bin)

	cfg := DefaultConfig()
	cfg.Container.Enabled = true
	cfg.Container.Image = "ghcr.io/org/cli-llm-runner:latest"
	cfg.Container.Memory = "512m"
	cfg.Container.PidsLimit = 64
	cfg.Container.Network = "host"
	cfg.Container.Mounts = []MountConfig{{Source: "/host/cache", Target: "/cache", ReadOnly: true}}

	rc, err := cfg.RunnerConfigFor(providers.ClaudeCode)
	if err != nil {
		t.Fatalf("RunnerConfigFor returned error: %v", err)
	}

	cc := rc.Container
	if cc == nil {
		t.Fatal("Container = nil, want populated")
	}
	if got := cc.Image; got != "ghcr.io/org/cli-llm-runner:latest" {
		t.Errorf("Image = %q", got)
	}
	if got := cc.MemoryLimit; got != "512m" {
		t.Errorf("MemoryLimit = %q, want 512m", got)
	}
	if got := cc.PidsLimit; got != 64 {
		t.Errorf("PidsLimit = %d, want 64", got)
	}
	if got := cc.NetworkMode; got != runner.NetworkHost {
		t.Errorf("NetworkMode = %q, want host", got)
	}
	want := runner.Mount{Source: "/host/cache", Target: "/cache", ReadOnly: true}
	if len(cc.ExtraMounts) != 1 || cc.ExtraMounts[0] != want {
		t.Errorf("ExtraMounts = %v, want [%v]", cc.ExtraMounts, want)
	}
}

func TestStoreSwap(t *testing.T) {
	first := DefaultConfig()
	store := NewStore(first)

	if got := store.Current(); got != first {
		t.Fatal("Current should return the stored configuration")
	}

	second := DefaultConfig()
	second.Telemetry.Logging.Level = "debug"

	if prev := store.Swap(second); prev != first {
		t.Error("Swap should return the previous configuration")
	}
	if got := store.Current(); got != second {
		t.Error("Current should return the swapped configuration")
	}
}

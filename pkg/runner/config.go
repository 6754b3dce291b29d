package runner

import (
	"strings"
	"time"
)

// Default resource bounds for subprocess invocations.
const (
	// DefaultTimeout is the wall-clock budget for a completion call.
	DefaultTimeout = 120 * time.Second

	// DefaultMaxOutputBytes is the per-stream capture cap used when a
	// caller passes zero.
	DefaultMaxOutputBytes = 10 << 20 // 10 MiB

	// CompletionOutputCap is the per-stream capture cap for main
	// completion calls.
	CompletionOutputCap = 50 << 20 // 50 MiB

	// HealthCheckTimeout bounds a health-check version probe.
	HealthCheckTimeout = 10 * time.Second

	// HealthCheckOutputCap bounds health-check output capture.
	HealthCheckOutputCap = 4 << 10 // 4 KiB

	// ReadinessTimeout bounds a readiness or capability probe.
	ReadinessTimeout = 15 * time.Second

	// ReadinessOutputCap bounds readiness and capability probe output.
	ReadinessOutputCap = 64 << 10 // 64 KiB

	// StreamStderrCap bounds the stderr retained for a streaming call.
	StreamStderrCap = 1 << 20 // 1 MiB
)

// DefaultEnvKeys returns the environment variables passed through to
// subprocesses when no explicit whitelist is configured.
func DefaultEnvKeys() []string {
	return []string{"HOME", "PATH", "TERM", "USER", "LANG"}
}

// Config is the per-adapter subprocess configuration. It is built once
// at startup and never mutated afterwards.
type Config struct {
	// BinaryPath is the absolute path of the CLI executable. Required.
	BinaryPath string

	// Model optionally overrides the adapter's default model.
	Model *string

	// Timeout is the wall-clock budget per invocation.
	// Default: 120 seconds.
	Timeout time.Duration

	// ExtraArgs are appended verbatim to every invocation.
	ExtraArgs []string

	// MaxOutputBytes caps the bytes captured per stream on completion
	// calls. Zero means CompletionOutputCap.
	MaxOutputBytes int64

	// AllowedEnvKeys is the environment whitelist applied by the
	// sandbox. Default: HOME, PATH, TERM, USER, LANG.
	AllowedEnvKeys []string

	// WorkingDirectory pins the subprocess cwd. When nil, or when the
	// configured path does not exist, the process cwd is used.
	WorkingDirectory *string

	// Container, when set, routes blocking invocations through an
	// ephemeral container instead of the host binary.
	Container *ContainerConfig
}

// NewConfig creates a Config for the given binary with default timeout
// and environment whitelist.
func NewConfig(binaryPath string) *Config {
	return &Config{
		BinaryPath:     binaryPath,
		Timeout:        DefaultTimeout,
		AllowedEnvKeys: DefaultEnvKeys(),
	}
}

// WithModel sets the model override and returns the config.
func (c *Config) WithModel(model string) *Config {
	c.Model = &model
	return c
}

// WithTimeout sets the invocation timeout and returns the config.
func (c *Config) WithTimeout(d time.Duration) *Config {
	c.Timeout = d
	return c
}

// OutputCap returns the effective per-stream capture cap for
// completion calls.
func (c *Config) OutputCap() int64 {
	if c.MaxOutputBytes > 0 {
		return c.MaxOutputBytes
	}
	return CompletionOutputCap
}

// ParseEnvKeys splits a comma-separated whitelist, trimming whitespace
// and dropping empty entries.
func ParseEnvKeys(s string) []string {
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}

package config

import (
	"time"

	"embacle-hq/embacle/pkg/providers"
)

// Config is the root configuration structure for the Embacle gateway.
// It contains all configuration sections for the REST server, the
// provider adapters, subprocess execution, container isolation, request
// auditing, telemetry, and the MCP front.
type Config struct {
	// Server contains REST server configuration including bind address,
	// default provider, and timeouts.
	Server ServerConfig `yaml:"server"`

	// Providers contains per-provider adapter configuration, one
	// sub-section per supported CLI.
	Providers ProvidersConfig `yaml:"providers"`

	// Runner contains subprocess execution configuration shared by all
	// providers: timeout, output caps, environment whitelist, and
	// working directory.
	Runner RunnerConfig `yaml:"runner"`

	// Container contains container-isolation configuration. When
	// enabled, blocking completions run inside ephemeral containers
	// instead of host binaries.
	Container ContainerConfig `yaml:"container"`

	// Audit contains request audit trail configuration including the
	// storage driver and retention settings.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains observability configuration: logging and
	// metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// MCP contains MCP front configuration including the transport
	// selection.
	MCP MCPConfig `yaml:"mcp"`
}

// ServerConfig contains configuration for the REST server.
type ServerConfig struct {
	// Host is the interface the server binds to.
	// Default: "127.0.0.1"
	Host string `yaml:"host"`

	// Port is the TCP port the server listens on.
	// Default: 3000
	Port int `yaml:"port"`

	// DefaultProvider is the provider used when a request does not
	// address one. Must be a canonical provider name.
	// Default: "copilot"
	DefaultProvider string `yaml:"default_provider"`

	// ReadTimeout is the maximum duration for reading the entire
	// request, including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds response writes. Streaming responses hold the
	// connection open indefinitely, so the default disables the
	// deadline.
	// Default: 0 (no timeout)
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle limit.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight
	// requests during graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes caps the request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// ProvidersConfig holds one configuration sub-section per provider.
// Section keys match the canonical provider names.
type ProvidersConfig struct {
	// ClaudeCode configures the `claude` CLI adapter.
	ClaudeCode ProviderConfig `yaml:"claude_code"`

	// Copilot configures the `copilot` CLI adapter.
	Copilot ProviderConfig `yaml:"copilot"`

	// CursorAgent configures the `cursor-agent` CLI adapter.
	CursorAgent ProviderConfig `yaml:"cursor_agent"`

	// OpenCode configures the `opencode` CLI adapter.
	OpenCode ProviderConfig `yaml:"opencode"`
}

// Section returns the sub-section for a provider kind.
func (p *ProvidersConfig) Section(kind providers.Kind) *ProviderConfig {
	switch kind {
	case providers.ClaudeCode:
		return &p.ClaudeCode
	case providers.Copilot:
		return &p.Copilot
	case providers.CursorAgent:
		return &p.CursorAgent
	case providers.OpenCode:
		return &p.OpenCode
	}
	return nil
}

// ProviderConfig contains configuration for a single provider adapter.
type ProviderConfig struct {
	// Binary overrides binary discovery with an explicit executable
	// path. The provider's *_BINARY environment variable still takes
	// precedence over this field.
	// Default: "" (discover on PATH)
	Binary string `yaml:"binary"`

	// Model overrides the adapter's default model.
	// Default: "" (adapter default)
	Model string `yaml:"model"`

	// ExtraArgs are appended verbatim to every invocation of this CLI.
	ExtraArgs []string `yaml:"extra_args"`
}

// RunnerConfig contains subprocess execution configuration shared by
// all provider adapters.
type RunnerConfig struct {
	// Timeout is the wall-clock budget per CLI invocation.
	// Default: 120s
	Timeout time.Duration `yaml:"timeout"`

	// MaxOutputBytes caps the bytes captured per output stream on
	// completion calls. 0 means the built-in cap (50MiB).
	// Default: 0
	MaxOutputBytes int64 `yaml:"max_output_bytes"`

	// AllowedEnvKeys is the environment whitelist applied to
	// subprocesses. An empty list means the built-in whitelist
	// (HOME, PATH, TERM, USER, LANG).
	AllowedEnvKeys []string `yaml:"allowed_env_keys"`

	// WorkingDirectory pins the subprocess working directory. When
	// empty or nonexistent, the gateway's own working directory is
	// used.
	// Default: "" (inherit)
	WorkingDirectory string `yaml:"working_directory"`
}

// ContainerConfig contains container-isolation configuration. The
// CLI_LLM_CONTAINER_* environment variables take precedence over this
// section.
type ContainerConfig struct {
	// Enabled routes blocking completions through ephemeral containers.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Image is the container image reference. Required when Enabled.
	// Example: "ghcr.io/org/cli-llm-runner:latest"
	Image string `yaml:"image"`

	// Memory caps container memory when non-empty, e.g. "512m".
	// Default: "" (unlimited)
	Memory string `yaml:"memory"`

	// PidsLimit caps the number of PIDs inside the container.
	// Default: 0 (unlimited)
	PidsLimit int `yaml:"pids_limit"`

	// Network is the container network mode.
	// Options: "none", "host", or a Docker network name.
	// Default: "none"
	Network string `yaml:"network"`

	// Mounts are additional bind mounts for the container.
	Mounts []MountConfig `yaml:"mounts"`
}

// MountConfig is a bind mount passed to the container.
type MountConfig struct {
	// Source is the host path to mount from.
	Source string `yaml:"source"`

	// Target is the container path to mount to.
	Target string `yaml:"target"`

	// ReadOnly marks the mount read-only inside the container.
	// Default: false
	ReadOnly bool `yaml:"read_only"`
}

// AuditConfig contains request audit trail configuration.
type AuditConfig struct {
	// Enabled turns the audit trail on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Driver selects the SQLite driver.
	// Options: "sqlite3" (CGO), "sqlite" (pure Go)
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// Path is the file path for the audit database.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// AsyncBuffer is the size of the async write channel. When the
	// buffer is full new records are dropped, never blocking requests.
	// Default: 1024
	AsyncBuffer int `yaml:"async_buffer"`

	// RetentionDays is the number of days to retain audit records.
	// 0 keeps records forever.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for retention pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords caps the number of stored records. Oldest records are
	// pruned past the cap. 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "text", "json"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// MCPConfig contains MCP front configuration.
type MCPConfig struct {
	// Transport selects how the MCP server communicates.
	// Options: "stdio", "http"
	// Default: "stdio"
	Transport string `yaml:"transport"`

	// Host is the interface the HTTP transport binds to.
	// Default: "127.0.0.1"
	Host string `yaml:"host"`

	// Port is the TCP port for the HTTP transport.
	// Default: 3001
	Port int `yaml:"port"`
}

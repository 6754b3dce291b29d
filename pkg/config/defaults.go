package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultServerHost      = "127.0.0.1"
	DefaultServerPort      = 3000
	DefaultProviderName    = "copilot"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 0 * time.Second // streaming holds connections open
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Runner defaults
	DefaultRunnerTimeout = 120 * time.Second

	// Container defaults
	DefaultContainerNetwork = "none"

	// Audit defaults
	DefaultAuditDriver        = "sqlite3"
	DefaultAuditPath          = "data/audit.db"
	DefaultAuditAsyncBuffer   = 1024
	DefaultAuditRetentionDays = 30
	DefaultAuditPruneSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "text"
	DefaultMetricsPath   = "/metrics"

	// MCP defaults
	DefaultMCPTransport = "stdio"
	DefaultMCPHost      = "127.0.0.1"
	DefaultMCPPort      = 3001
)

// DefaultConfig returns a configuration with every default applied.
// The result validates cleanly; the gateway can run from it with no
// file at all.
//
// Default-true booleans (metrics enabled) are set here rather than in
// ApplyDefaults, which cannot tell an explicit false from an unset
// field. The loader decodes files over this struct, so an explicit
// `enabled: false` survives.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct. It sets
// defaults for any fields that have zero values. This function is
// idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.DefaultProvider == "" {
		cfg.Server.DefaultProvider = DefaultProviderName
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	// WriteTimeout stays zero: streaming responses have no write
	// deadline.
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Runner defaults
	if cfg.Runner.Timeout == 0 {
		cfg.Runner.Timeout = DefaultRunnerTimeout
	}

	// Container defaults
	if cfg.Container.Network == "" {
		cfg.Container.Network = DefaultContainerNetwork
	}

	// Audit defaults
	if cfg.Audit.Driver == "" {
		cfg.Audit.Driver = DefaultAuditDriver
	}
	if cfg.Audit.Path == "" {
		cfg.Audit.Path = DefaultAuditPath
	}
	if cfg.Audit.AsyncBuffer == 0 {
		cfg.Audit.AsyncBuffer = DefaultAuditAsyncBuffer
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = DefaultAuditRetentionDays
	}
	if cfg.Audit.PruneSchedule == "" {
		cfg.Audit.PruneSchedule = DefaultAuditPruneSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}

	// MCP defaults
	if cfg.MCP.Transport == "" {
		cfg.MCP.Transport = DefaultMCPTransport
	}
	if cfg.MCP.Host == "" {
		cfg.MCP.Host = DefaultMCPHost
	}
	if cfg.MCP.Port == 0 {
		cfg.MCP.Port = DefaultMCPPort
	}
}

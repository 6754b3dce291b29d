package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"embacle-hq/embacle/pkg/providers"
)

// LoadConfig loads configuration from a YAML file at the specified
// path. File values are decoded over the defaults, remaining zero
// values are filled, and the result is validated.
//
// A missing file is not an error: the gateway must run with zero
// configuration, so an empty path or a nonexistent file yields
// DefaultConfig. Unknown YAML keys are rejected so that typos fail
// loudly instead of silently falling back to defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow
// the naming convention EMBACLE_SECTION_FIELD (e.g.
// EMBACLE_SERVER_PORT) and always take precedence over file values.
//
// The loading sequence is:
//  1. Defaults
//  2. Values from the YAML file (if it exists)
//  3. Environment variable overrides
//  4. Validation of the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format EMBACLE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("EMBACLE_SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("EMBACLE_SERVER_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = i
		}
	}
	if val := os.Getenv("EMBACLE_SERVER_DEFAULT_PROVIDER"); val != "" {
		cfg.Server.DefaultProvider = val
	}
	if val := os.Getenv("EMBACLE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("EMBACLE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("EMBACLE_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("EMBACLE_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Provider overrides, one block per kind
	for _, kind := range providers.AllKinds() {
		applyProviderEnvOverrides(cfg, kind)
	}

	// Runner overrides
	if val := os.Getenv("EMBACLE_RUNNER_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Runner.Timeout = d
		}
	}
	if val := os.Getenv("EMBACLE_RUNNER_MAX_OUTPUT_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Runner.MaxOutputBytes = i
		}
	}
	if val := os.Getenv("EMBACLE_RUNNER_ALLOWED_ENV_KEYS"); val != "" {
		cfg.Runner.AllowedEnvKeys = splitList(val)
	}
	if val := os.Getenv("EMBACLE_RUNNER_WORKING_DIRECTORY"); val != "" {
		cfg.Runner.WorkingDirectory = val
	}

	// Container overrides
	if val := os.Getenv("EMBACLE_CONTAINER_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Container.Enabled = b
		}
	}
	if val := os.Getenv("EMBACLE_CONTAINER_IMAGE"); val != "" {
		cfg.Container.Image = val
	}
	if val := os.Getenv("EMBACLE_CONTAINER_MEMORY"); val != "" {
		cfg.Container.Memory = val
	}
	if val := os.Getenv("EMBACLE_CONTAINER_PIDS_LIMIT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Container.PidsLimit = i
		}
	}
	if val := os.Getenv("EMBACLE_CONTAINER_NETWORK"); val != "" {
		cfg.Container.Network = val
	}

	// Audit overrides
	if val := os.Getenv("EMBACLE_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("EMBACLE_AUDIT_DRIVER"); val != "" {
		cfg.Audit.Driver = val
	}
	if val := os.Getenv("EMBACLE_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
	}
	if val := os.Getenv("EMBACLE_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.RetentionDays = i
		}
	}
	if val := os.Getenv("EMBACLE_AUDIT_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Audit.MaxRecords = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("EMBACLE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("EMBACLE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("EMBACLE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("EMBACLE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}

	// MCP overrides
	if val := os.Getenv("EMBACLE_MCP_TRANSPORT"); val != "" {
		cfg.MCP.Transport = val
	}
	if val := os.Getenv("EMBACLE_MCP_HOST"); val != "" {
		cfg.MCP.Host = val
	}
	if val := os.Getenv("EMBACLE_MCP_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.MCP.Port = i
		}
	}
}

// applyProviderEnvOverrides applies environment variable overrides for
// a single provider section. Variables follow the format
// EMBACLE_PROVIDERS_<NAME>_<FIELD> where NAME is the uppercase
// canonical provider name (e.g. EMBACLE_PROVIDERS_CLAUDE_CODE_MODEL).
func applyProviderEnvOverrides(cfg *Config, kind providers.Kind) {
	section := cfg.Providers.Section(kind)
	if section == nil {
		return
	}

	prefix := "EMBACLE_PROVIDERS_" + strings.ToUpper(kind.String()) + "_"

	if val := os.Getenv(prefix + "BINARY"); val != "" {
		section.Binary = val
	}
	if val := os.Getenv(prefix + "MODEL"); val != "" {
		section.Model = val
	}
	if val := os.Getenv(prefix + "EXTRA_ARGS"); val != "" {
		section.ExtraArgs = splitList(val)
	}
}

// splitList splits a comma-separated value, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

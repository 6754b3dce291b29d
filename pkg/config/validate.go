package config

import (
	"fmt"
	"strings"

	"embacle-hq/embacle/pkg/providers"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "server.port").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access
// to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a
// ValidationError if any validation rules fail. All validation errors
// are collected and returned together rather than stopping at the
// first.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateRunner(&cfg.Runner)...)
	errs = append(errs, validateContainer(&cfg.Container)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateMCP(&cfg.MCP)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates REST server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.Host == "" {
		errs = append(errs, FieldError{
			Field:   "server.host",
			Message: "host is required",
		})
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "server.port",
			Message: "port must be between 1 and 65535",
		})
	}
	if _, err := providers.ParseKind(cfg.DefaultProvider); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.default_provider",
			Message: fmt.Sprintf("unknown provider %q (valid: %s)", cfg.DefaultProvider, providers.ValidKindNames()),
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must not be negative",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must not be negative",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must not be negative",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must not be negative",
		})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must not be negative",
		})
	}

	return errs
}

// validateRunner validates subprocess execution configuration.
func validateRunner(cfg *RunnerConfig) []FieldError {
	var errs []FieldError

	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "runner.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.MaxOutputBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "runner.max_output_bytes",
			Message: "max output bytes must not be negative",
		})
	}

	return errs
}

// validateContainer validates container-isolation configuration.
func validateContainer(cfg *ContainerConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Image == "" {
		errs = append(errs, FieldError{
			Field:   "container.image",
			Message: "image is required when container execution is enabled",
		})
	}
	if cfg.PidsLimit < 0 {
		errs = append(errs, FieldError{
			Field:   "container.pids_limit",
			Message: "pids limit must not be negative",
		})
	}
	for i, m := range cfg.Mounts {
		if m.Source == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("container.mounts[%d].source", i),
				Message: "mount source is required",
			})
		}
		if m.Target == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("container.mounts[%d].target", i),
				Message: "mount target is required",
			})
		}
	}

	return errs
}

// validateAudit validates audit trail configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	switch cfg.Driver {
	case "sqlite3", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "audit.driver",
			Message: "must be one of: sqlite3, sqlite",
		})
	}
	if cfg.Enabled && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "audit.path",
			Message: "path is required when auditing is enabled",
		})
	}
	if cfg.AsyncBuffer <= 0 {
		errs = append(errs, FieldError{
			Field:   "audit.async_buffer",
			Message: "async buffer must be positive",
		})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention_days",
			Message: "retention days must not be negative",
		})
	}
	if cfg.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.max_records",
			Message: "max records must not be negative",
		})
	}

	return errs
}

// validateTelemetry validates logging and metrics configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "must be one of: debug, info, warn, error",
		})
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "must be one of: text, json",
		})
	}
	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "must start with /",
		})
	}

	return errs
}

// validateMCP validates MCP front configuration.
func validateMCP(cfg *MCPConfig) []FieldError {
	var errs []FieldError

	switch cfg.Transport {
	case "stdio", "http":
	default:
		errs = append(errs, FieldError{
			Field:   "mcp.transport",
			Message: "must be one of: stdio, http",
		})
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "mcp.port",
			Message: "port must be between 1 and 65535",
		})
	}

	return errs
}

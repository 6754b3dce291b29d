// Package config provides configuration management for the Embacle
// gateway.
//
// Configuration is loaded from a YAML file, filled with defaults,
// overridden by environment variables, and validated. The gateway must
// run with zero configuration, so a missing file is not an error: the
// loader falls back to DefaultConfig.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("embacle.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("embacle.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention
// EMBACLE_SECTION_FIELD. For example:
//
//   - EMBACLE_SERVER_PORT overrides server.port
//   - EMBACLE_PROVIDERS_CLAUDE_CODE_MODEL overrides providers.claude_code.model
//   - EMBACLE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based
// configuration.
//
// The CLI binary override variables (CLAUDE_CODE_BINARY, COPILOT_BINARY,
// CURSOR_AGENT_BINARY, OPENCODE_BINARY) are part of the runner contract
// rather than this package; they beat the `binary` fields here.
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// Validation collects every problem instead of stopping at the first.
// Errors include field paths and messages:
//
//	configuration validation failed with 2 errors:
//	  - server.port: port must be between 1 and 65535
//	  - audit.driver: must be one of: sqlite3, sqlite
//
// # Example Configuration
//
// A minimal configuration file:
//
//	server:
//	  host: "127.0.0.1"
//	  port: 3000
//	  default_provider: "copilot"
//
//	providers:
//	  claude_code:
//	    model: "sonnet"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "text"
//
// # Hot Reload
//
// A Watcher can observe the configuration file and invoke a reload
// callback after a debounce interval. Only runtime-adjustable settings
// (log level, audit toggles) take effect on reload; subprocess settings
// are fixed at startup.
package config

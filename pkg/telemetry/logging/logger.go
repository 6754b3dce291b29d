package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"embacle-hq/embacle/pkg/config"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatText outputs logs in slog's key=value text format.
	FormatText Format = "text"

	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = "json"
)

// level is shared by every handler Setup builds, so SetLevel takes
// effect on the live logger.
var level slog.LevelVar

// Setup builds a logger from configuration, installs it as the slog
// default, and returns it. A nil writer means stderr; stdout is never
// the default because the MCP stdio transport owns it.
func Setup(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	level.Set(lvl)

	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     &level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}

// SetLevel adjusts the minimum level of every logger built by Setup.
// This is the configuration-reload entry point.
func SetLevel(levelStr string) error {
	lvl, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}
	level.Set(lvl)
	return nil
}

// Level returns the current minimum log level.
func Level() slog.Level {
	return level.Level()
}

// ParseLevel parses a log level string into a slog.Level. An empty
// string means info.
func ParseLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO", "":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// ParseFormat parses a log format string into a Format. An empty
// string means text.
func ParseFormat(formatStr string) (Format, error) {
	switch formatStr {
	case "text", "TEXT", "":
		return FormatText, nil
	case "json", "JSON":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format: %s", formatStr)
	}
}

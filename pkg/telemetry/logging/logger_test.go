package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"embacle-hq/embacle/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"ERROR", slog.LevelError, false},
		{"trace", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q) succeeded, want error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if got, err := ParseFormat(""); err != nil || got != FormatText {
		t.Errorf("ParseFormat(\"\") = %v, %v; want text, nil", got, err)
	}
	if got, err := ParseFormat("json"); err != nil || got != FormatJSON {
		t.Errorf("ParseFormat(\"json\") = %v, %v; want json, nil", got, err)
	}
	if _, err := ParseFormat("logfmt"); err == nil {
		t.Error("ParseFormat(\"logfmt\") succeeded, want error")
	}
}

func TestSetupJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	logger.Info("gateway started", "port", 3000)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if got := entry["msg"]; got != "gateway started" {
		t.Errorf("msg = %v, want %q", got, "gateway started")
	}
	if got := entry["port"]; got != float64(3000) {
		t.Errorf("port = %v, want 3000", got)
	}
}

func TestSetupTextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	logger.Info("probe complete", "provider", "copilot")

	out := buf.String()
	if !strings.Contains(out, "msg=\"probe complete\"") {
		t.Errorf("output %q missing text-format message", out)
	}
	if !strings.Contains(out, "provider=copilot") {
		t.Errorf("output %q missing attribute", out)
	}
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	if _, err := Setup(config.LoggingConfig{Level: "trace"}, &bytes.Buffer{}); err == nil {
		t.Error("Setup accepted invalid level, want error")
	}
	if _, err := Setup(config.LoggingConfig{Format: "logfmt"}, &bytes.Buffer{}); err == nil {
		t.Error("Setup accepted invalid format, want error")
	}
}

func TestSetLevelAdjustsLiveLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line emitted at info level: %q", buf.String())
	}

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel returned error: %v", err)
	}
	defer SetLevel("info")

	logger.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug line missing after SetLevel: %q", buf.String())
	}

	if err := SetLevel("trace"); err == nil {
		t.Error("SetLevel accepted invalid level, want error")
	}
}

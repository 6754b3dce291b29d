package copilot

import (
	"log/slog"
	"os/exec"
	"strings"
)

// DefaultModel is used when the runner configuration does not pin one.
const DefaultModel = "claude-opus-4.6"

// fallbackModels is advertised when `gh copilot models` discovery fails.
var fallbackModels = []string{
	"claude-sonnet-4.6",
	"claude-opus-4.6",
	"claude-opus-4.6-fast",
	"claude-sonnet-4.5",
	"claude-haiku-4.5",
	"claude-sonnet-4",
	"gpt-5.2-codex",
	"gpt-5.2",
	"gpt-5.1-codex",
	"gpt-5.1",
	"gpt-5-mini",
	"gpt-4.1",
	"gemini-3-pro-preview",
}

// discoverModels lists the available Copilot models by running
// `gh copilot models`. It returns nil when the GitHub CLI is missing,
// exits non-zero, or prints nothing usable; callers then fall back to
// the static list. Runs once at construction time.
func discoverModels() []string {
	out, err := exec.Command("gh", "copilot", "models").Output()
	if err != nil {
		slog.Debug("gh copilot models failed, falling back to static list", "error", err)
		return nil
	}

	var models []string
	for _, line := range strings.Split(string(out), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			models = append(models, trimmed)
		}
	}

	if len(models) == 0 {
		slog.Debug("gh copilot models returned empty output, falling back to static list")
		return nil
	}

	slog.Debug("discovered available Copilot models", "count", len(models))
	return models
}

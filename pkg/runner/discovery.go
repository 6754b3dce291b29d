package runner

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"embacle-hq/embacle/pkg/providers"
)

// ResolveBinary locates the executable for a provider kind. A non-empty
// value in the kind's override environment variable is used verbatim;
// if that path does not exist the resolution fails rather than falling
// back, so a bad override is never silently ignored. Otherwise the
// binary name is searched on the process PATH with the host's
// conventions (executable bit on Unix, PATHEXT on Windows).
//
// The result is not cached; callers that want caching hold on to the
// resolved path in their own config.
func ResolveBinary(kind providers.Kind) (string, error) {
	if override := os.Getenv(kind.EnvOverride()); override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", providers.NewInternalError(kind.String(),
				fmt.Sprintf("binary override %s=%q does not exist", kind.EnvOverride(), override))
		}
		return override, nil
	}

	path, err := exec.LookPath(kind.BinaryName())
	if err != nil {
		return "", providers.NewBinaryNotFoundError(kind.String(), kind.BinaryName())
	}
	return path, nil
}

// Discover probes for installed CLI runners in priority order
// (Claude Code, Copilot, Cursor Agent, OpenCode) and returns the first
// kind whose binary resolves, with a default config for it.
func Discover() (providers.Kind, *Config, error) {
	for _, kind := range providers.AllKinds() {
		path, err := ResolveBinary(kind)
		if err != nil {
			slog.Debug("runner not found, trying next",
				"runner", kind.BinaryName(),
				"env_key", kind.EnvOverride())
			continue
		}
		slog.Debug("discovered CLI runner", "runner", kind.BinaryName(), "path", path)
		return kind, NewConfig(path), nil
	}

	return 0, nil, providers.NewInternalError("",
		"No CLI runner found. Install one of: claude, copilot, cursor-agent, opencode")
}

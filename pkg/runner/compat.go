package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"embacle-hq/embacle/pkg/providers"
)

// Minimum supported version per CLI runner.
var minimumVersions = map[providers.Kind]providers.Version{
	providers.ClaudeCode:  {Major: 1, Minor: 0, Patch: 0},
	providers.Copilot:     {Major: 0, Minor: 0, Patch: 1},
	providers.CursorAgent: {Major: 0, Minor: 1, Patch: 0},
	providers.OpenCode:    {Major: 0, Minor: 1, Patch: 0},
}

// MinimumVersion returns the minimum supported version for a runner kind.
func MinimumVersion(kind providers.Kind) providers.Version {
	return minimumVersions[kind]
}

// CheckCapabilities probes an installed CLI binary and reports its
// version and feature support.
//
// The binary is run with its version command to obtain the version
// string; feature flags (JSON output, streaming, system prompt, session
// resume) come from a static capability table keyed by runner kind.
func CheckCapabilities(ctx context.Context, kind providers.Kind, binaryPath string) (*providers.Capabilities, error) {
	versionString, err := detectVersion(ctx, kind, binaryPath)
	if err != nil {
		return nil, err
	}

	parsed := ParseSemver(versionString)
	minimum := minimumVersions[kind]
	meetsMinimum := parsed != nil && parsed.AtLeast(minimum)

	if !meetsMinimum {
		slog.Warn("CLI binary version is below minimum supported version",
			"runner", kind.String(),
			"detected", versionString,
			"minimum", minimum.String())
	}

	jsonOutput, streaming, systemPrompt, sessionResume := capabilityFlags(kind)

	return &providers.Capabilities{
		Runner:              kind.String(),
		VersionString:       versionString,
		ParsedVersion:       parsed,
		JSONOutput:          jsonOutput,
		Streaming:           streaming,
		SystemPrompt:        systemPrompt,
		SessionResume:       sessionResume,
		MeetsMinimumVersion: meetsMinimum,
	}, nil
}

// detectVersion runs the binary's version command and returns the raw
// version string. Some CLIs print their version to stderr, so stderr is
// used when stdout comes back empty.
func detectVersion(ctx context.Context, kind providers.Kind, binaryPath string) (string, error) {
	cmd := Command(binaryPath, versionArgs(kind), BuildPolicy(nil, nil), nil)
	out, err := Run(ctx, cmd, ReadinessTimeout, ReadinessOutputCap)
	if err != nil {
		return "", providers.NewExternalServiceError(kind.BinaryName(),
			fmt.Sprintf("failed to run version check: %v", err))
	}

	raw := strings.TrimSpace(string(out.Stdout))
	if raw == "" {
		stderr := strings.TrimSpace(string(out.Stderr))
		slog.Debug("version check returned empty stdout",
			"runner", kind.String(),
			"stderr", stderr)
		return stderr, nil
	}
	return raw, nil
}

func versionArgs(kind providers.Kind) []string {
	if kind == providers.OpenCode {
		return []string{"version"}
	}
	return []string{"--version"}
}

// ParseSemver extracts a semantic version from a raw version string.
//
// Handles formats like "1.2.3", "v1.2.3", "claude 1.2.3" and
// "opencode v0.3.1". Pre-release suffixes on the patch component
// ("1.0.0-rc1") are dropped. Returns nil when no version token is
// present.
func ParseSemver(versionString string) *providers.Version {
	var candidate string
	for _, word := range strings.Fields(versionString) {
		stripped := strings.TrimPrefix(word, "v")
		parts := strings.Split(stripped, ".")
		if len(parts) >= 3 && allNumericParts(parts) {
			candidate = stripped
			break
		}
	}
	if candidate == "" {
		return nil
	}

	parts := strings.Split(candidate, ".")
	major, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return nil
	}
	minor, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil
	}
	patchStr, _, _ := strings.Cut(parts[2], "-")
	patch, err := strconv.ParseUint(patchStr, 10, 32)
	if err != nil {
		return nil
	}
	return &providers.Version{Major: uint32(major), Minor: uint32(minor), Patch: uint32(patch)}
}

func allNumericParts(parts []string) bool {
	for _, part := range parts {
		numeric, _, _ := strings.Cut(part, "-")
		if _, err := strconv.ParseUint(numeric, 10, 32); err != nil {
			return false
		}
	}
	return true
}

// capabilityFlags returns the known feature flags for a runner kind.
func capabilityFlags(kind providers.Kind) (jsonOutput, streaming, systemPrompt, sessionResume bool) {
	switch kind {
	case providers.ClaudeCode:
		// --output-format json, --output-format stream-json, --system-prompt, --continue
		return true, true, true, true
	case providers.Copilot:
		// plain text output, line-by-line streaming, no system prompt flag, no resume
		return false, true, false, false
	case providers.CursorAgent:
		// --output-format json, --output-format stream-json, --resume
		return true, true, false, true
	case providers.OpenCode:
		// --format json, --continue/--session
		return true, false, false, true
	}
	return false, false, false, false
}

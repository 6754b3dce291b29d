package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"embacle-hq/embacle/pkg/providers"
)

// CheckReadiness reports whether a CLI runner is installed,
// authenticated, and able to serve requests.
//
// A lightweight probe appropriate for the runner kind is executed and
// its result interpreted. A non-ready provider is reported in the
// Readiness value, never as an error.
func CheckReadiness(ctx context.Context, kind providers.Kind, binaryPath string) providers.Readiness {
	if _, err := os.Stat(binaryPath); err != nil {
		return providers.Readiness{
			State:    providers.StateBinaryMissing,
			Expected: binaryPath,
		}
	}

	switch kind {
	case providers.ClaudeCode:
		return claudeReadiness(ctx, binaryPath)
	case providers.Copilot:
		return copilotReadiness(ctx, binaryPath)
	default:
		return versionProbe(ctx, binaryPath, kind.BinaryName())
	}
}

// claudeReadiness uses the explicit `auth status` sub-command.
func claudeReadiness(ctx context.Context, binaryPath string) providers.Readiness {
	cmd := Command(binaryPath, []string{"auth", "status"}, BuildPolicy(nil, nil), nil)
	out, err := Run(ctx, cmd, ReadinessTimeout, ReadinessOutputCap)
	switch {
	case err != nil:
		return providers.Readiness{
			State:  providers.StateUnknown,
			Reason: fmt.Sprintf("Failed to run auth check: %v", err),
		}
	case out.ExitCode == 0:
		slog.Debug("claude auth status: ready")
		return providers.Readiness{State: providers.StateReady}
	default:
		slog.Warn("claude auth check failed",
			"exit_code", out.ExitCode,
			"stderr", string(out.Stderr))
		return providers.Readiness{
			State:  providers.StateNotReady,
			Reason: fmt.Sprintf("Auth check exited with code %d", out.ExitCode),
			Action: "Run `claude auth login` to authenticate",
		}
	}
}

// copilotReadiness verifies GitHub authentication via `gh auth status`
// when the gh CLI is available. A successful `copilot --version` only
// confirms the binary exists, so it is used as a fallback probe.
func copilotReadiness(ctx context.Context, binaryPath string) providers.Readiness {
	if r, ok := ghAuthStatus(ctx); ok {
		return r
	}

	slog.Debug("gh CLI not available, falling back to copilot --version probe")
	cmd := Command(binaryPath, []string{"--version"}, BuildPolicy(nil, nil), nil)
	out, err := Run(ctx, cmd, ReadinessTimeout, ReadinessOutputCap)
	switch {
	case err != nil:
		return providers.Readiness{
			State:  providers.StateUnknown,
			Reason: fmt.Sprintf("Failed to run copilot --version: %v", err),
		}
	case out.ExitCode == 0:
		slog.Debug("copilot version probe succeeded, auth not verified")
		return providers.Readiness{State: providers.StateReady}
	default:
		slog.Warn("copilot version probe failed",
			"exit_code", out.ExitCode,
			"stderr", string(out.Stderr))
		return providers.Readiness{
			State:  providers.StateNotReady,
			Reason: fmt.Sprintf("copilot --version exited with code %d", out.ExitCode),
			Action: "Run `copilot` to complete GitHub authentication",
		}
	}
}

// ghAuthStatus attempts a real authentication check through the gh CLI.
// The second return is false when gh cannot be found or run, so the
// caller can fall back to another probe.
func ghAuthStatus(ctx context.Context) (providers.Readiness, bool) {
	ghPath, err := exec.LookPath("gh")
	if err != nil {
		return providers.Readiness{}, false
	}

	cmd := Command(ghPath, []string{"auth", "status"}, BuildPolicy(nil, nil), nil)
	out, err := Run(ctx, cmd, ReadinessTimeout, ReadinessOutputCap)
	if err != nil {
		return providers.Readiness{}, false
	}

	if out.ExitCode == 0 {
		slog.Debug("gh auth status: authenticated")
		return providers.Readiness{State: providers.StateReady}, true
	}
	slog.Warn("gh auth status: not authenticated", "stderr", string(out.Stderr))
	return providers.Readiness{
		State:  providers.StateNotReady,
		Reason: "GitHub CLI reports not authenticated",
		Action: "Run `gh auth login` to authenticate with GitHub",
	}, true
}

// versionProbe confirms the binary runs `--version` without error. It
// does not verify authentication; runners without a dedicated auth
// sub-command fall back to this heuristic.
func versionProbe(ctx context.Context, binaryPath, name string) providers.Readiness {
	cmd := Command(binaryPath, []string{"--version"}, BuildPolicy(nil, nil), nil)
	out, err := Run(ctx, cmd, ReadinessTimeout, ReadinessOutputCap)
	switch {
	case err != nil:
		return providers.Readiness{
			State:  providers.StateUnknown,
			Reason: fmt.Sprintf("Failed to run %s --version: %v", name, err),
		}
	case out.ExitCode == 0:
		slog.Debug("version probe succeeded", "runner", name)
		return providers.Readiness{State: providers.StateReady}
	default:
		slog.Warn("version probe failed",
			"runner", name,
			"exit_code", out.ExitCode,
			"stderr", string(out.Stderr))
		return providers.Readiness{
			State:  providers.StateNotReady,
			Reason: fmt.Sprintf("%s --version exited with code %d", name, out.ExitCode),
			Action: fmt.Sprintf("Verify %s is properly installed", name),
		}
	}
}

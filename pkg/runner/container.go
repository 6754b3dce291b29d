package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"embacle-hq/embacle/pkg/providers"
)

// Environment variables controlling container-based execution.
const (
	EnvContainerImage     = "CLI_LLM_CONTAINER_IMAGE"
	EnvContainerMemory    = "CLI_LLM_CONTAINER_MEMORY"
	EnvContainerPidsLimit = "CLI_LLM_CONTAINER_PIDS_LIMIT"
	EnvContainerNetwork   = "CLI_LLM_CONTAINER_NETWORK"
)

// NetworkMode selects the container's network isolation. "none"
// disables network access, "host" shares the host namespace, and any
// other value names a Docker network.
type NetworkMode string

const (
	NetworkNone NetworkMode = "none"
	NetworkHost NetworkMode = "host"
)

// Mount is a bind mount passed to the container.
type Mount struct {
	// Source is the host path to mount from.
	Source string

	// Target is the container path to mount to.
	Target string

	// ReadOnly marks the mount read-only inside the container.
	ReadOnly bool
}

// ContainerConfig controls container-based CLI execution.
type ContainerConfig struct {
	// Image is the container image reference, e.g.
	// "ghcr.io/org/cli-llm-runner:latest".
	Image string

	// MemoryLimit caps container memory when non-empty, e.g. "512m".
	MemoryLimit string

	// PidsLimit caps the number of PIDs inside the container when
	// positive.
	PidsLimit int

	// NetworkMode is the network isolation mode.
	NetworkMode NetworkMode

	// ExtraMounts are additional bind mounts for the container.
	ExtraMounts []Mount

	// EnvVars are KEY=VAL pairs injected into the container.
	EnvVars []string
}

// ContainerConfigFromEnv builds a container configuration from
// environment variables. CLI_LLM_CONTAINER_IMAGE is required; memory
// limit, PIDs limit, and network mode are optional.
func ContainerConfigFromEnv() (*ContainerConfig, error) {
	image := os.Getenv(EnvContainerImage)
	if image == "" {
		return nil, providers.NewConfigError(EnvContainerImage, "environment variable is required")
	}

	cfg := &ContainerConfig{
		Image:       image,
		MemoryLimit: os.Getenv(EnvContainerMemory),
		NetworkMode: NetworkNone,
	}

	if v := os.Getenv(EnvContainerPidsLimit); v != "" {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil {
			return nil, providers.NewConfigError(EnvContainerPidsLimit,
				fmt.Sprintf("not a valid PIDs limit: %v", err))
		}
		cfg.PidsLimit = int(n)
	}

	if v := os.Getenv(EnvContainerNetwork); v != "" {
		switch mode := strings.ToLower(strings.TrimSpace(v)); mode {
		case "none":
			cfg.NetworkMode = NetworkNone
		case "host":
			cfg.NetworkMode = NetworkHost
		default:
			cfg.NetworkMode = NetworkMode(mode)
		}
	}

	return cfg, nil
}

// ContainerExecutor runs CLI commands inside ephemeral Docker
// containers. Each invocation creates a fresh `docker run --rm`
// container with a read-only root filesystem, all capabilities
// dropped, and no-new-privileges enforced. A writable scratch
// directory is bind-mounted at /scratch for temporary files.
type ContainerExecutor struct {
	config *ContainerConfig
}

// NewContainerExecutor creates an executor with the given configuration.
func NewContainerExecutor(config *ContainerConfig) *ContainerExecutor {
	return &ContainerExecutor{config: config}
}

// Execute runs a CLI command inside an ephemeral container. When input
// is non-empty it is written to a file in the scratch mount and
// redirected as stdin to the command.
func (e *ContainerExecutor) Execute(ctx context.Context, binaryName string, args []string, input string, timeout time.Duration, maxOutputBytes int64) (*CliOutput, error) {
	scratchDir, err := os.MkdirTemp("", "embacle-scratch-")
	if err != nil {
		return nil, providers.WrapInternalError("", "failed to create scratch directory", err)
	}
	defer func() {
		if err := os.RemoveAll(scratchDir); err != nil {
			slog.Warn("failed to clean up scratch directory", "error", err)
		}
	}()

	stdinContainerPath := ""
	if input != "" {
		stdinPath := filepath.Join(scratchDir, "stdin.txt")
		if err := os.WriteFile(stdinPath, []byte(input), 0o600); err != nil {
			return nil, providers.WrapInternalError("", "failed to write stdin file", err)
		}
		stdinContainerPath = "/scratch/stdin.txt"
	}

	dockerArgs := buildDockerArgs(e.config, scratchDir, binaryName, args, stdinContainerPath)

	slog.Debug("launching container",
		"image", e.config.Image,
		"binary", binaryName,
		"scratch", scratchDir)

	cmd := Command("docker", dockerArgs, BuildPolicy(nil, nil), nil)
	return Run(ctx, cmd, timeout, maxOutputBytes)
}

// Execute runs a blocking CLI invocation for the given runner. When the
// config carries a container section the command runs inside an
// ephemeral container using the runner's bare binary name; otherwise it
// runs directly via the resolved binary path. Entries in extraEnv are
// injected after the sandbox whitelist so they survive the env reset.
func Execute(ctx context.Context, cfg *Config, kind providers.Kind, args []string, extraEnv map[string]string, timeout time.Duration, maxBytes int64) (*CliOutput, error) {
	policy := BuildPolicy(cfg.WorkingDirectory, cfg.AllowedEnvKeys)

	if cfg.Container != nil {
		container := *cfg.Container
		container.EnvVars = append(append([]string{}, container.EnvVars...), policy.Environ()...)
		for key, value := range extraEnv {
			container.EnvVars = append(container.EnvVars, key+"="+value)
		}
		return NewContainerExecutor(&container).Execute(ctx, kind.BinaryName(), args, "", timeout, maxBytes)
	}

	cmd := Command(cfg.BinaryPath, args, policy, extraEnv)
	return Run(ctx, cmd, timeout, maxBytes)
}

// buildDockerArgs assembles the full `docker run` argument list.
func buildDockerArgs(config *ContainerConfig, scratchPath, binaryName string, args []string, stdinContainerPath string) []string {
	dockerArgs := []string{
		"run",
		"--rm",
		"--read-only",
		"--cap-drop=ALL",
		"--security-opt=no-new-privileges",
	}

	if config.MemoryLimit != "" {
		dockerArgs = append(dockerArgs, "--memory="+config.MemoryLimit)
	}
	if config.PidsLimit > 0 {
		dockerArgs = append(dockerArgs, fmt.Sprintf("--pids-limit=%d", config.PidsLimit))
	}

	network := config.NetworkMode
	if network == "" {
		network = NetworkNone
	}
	dockerArgs = append(dockerArgs, "--network="+string(network))

	dockerArgs = append(dockerArgs, "-v", scratchPath+":/scratch")

	for _, mount := range config.ExtraMounts {
		spec := mount.Source + ":" + mount.Target
		if mount.ReadOnly {
			spec += ":ro"
		}
		dockerArgs = append(dockerArgs, "-v", spec)
	}

	for _, kv := range config.EnvVars {
		dockerArgs = append(dockerArgs, "-e", kv)
	}

	if stdinContainerPath != "" {
		// Deliver stdin through a shell redirect from the scratch mount.
		escaped := make([]string, len(args))
		for i, a := range args {
			escaped[i] = shellEscape(a)
		}
		cmdStr := fmt.Sprintf("%s %s < %s", binaryName, strings.Join(escaped, " "), stdinContainerPath)
		dockerArgs = append(dockerArgs, "-i", config.Image, "sh", "-c", cmdStr)
		return dockerArgs
	}

	dockerArgs = append(dockerArgs, config.Image, binaryName)
	dockerArgs = append(dockerArgs, args...)
	return dockerArgs
}

// shellEscape wraps an argument in single quotes, escaping embedded
// single quotes as '\''.
func shellEscape(arg string) string {
	if arg == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

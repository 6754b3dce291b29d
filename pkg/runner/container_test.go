package runner

import (
	"slices"
	"strings"
	"testing"
)

func TestBuildDockerArgsHardening(t *testing.T) {
	cfg := &ContainerConfig{Image: "ghcr.io/org/runner:latest"}
	args := buildDockerArgs(cfg, "/tmp/scratch", "claude", []string{"-p", "hi"}, "")

	for _, want := range []string{
		"run",
		"--rm",
		"--read-only",
		"--cap-drop=ALL",
		"--security-opt=no-new-privileges",
		"--network=none",
	} {
		if !slices.Contains(args, want) {
			t.Errorf("docker args missing %q: %v", want, args)
		}
	}

	// Scratch mount, then image, then the bare binary and its args.
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-v /tmp/scratch:/scratch") {
		t.Errorf("scratch mount missing: %v", args)
	}
	if !strings.HasSuffix(joined, "ghcr.io/org/runner:latest claude -p hi") {
		t.Errorf("command tail wrong: %v", args)
	}
}

func TestBuildDockerArgsResourceLimits(t *testing.T) {
	cfg := &ContainerConfig{
		Image:       "img",
		MemoryLimit: "512m",
		PidsLimit:   128,
		NetworkMode: NetworkHost,
	}
	args := buildDockerArgs(cfg, "/s", "copilot", nil, "")

	for _, want := range []string{"--memory=512m", "--pids-limit=128", "--network=host"} {
		if !slices.Contains(args, want) {
			t.Errorf("docker args missing %q: %v", want, args)
		}
	}
}

func TestBuildDockerArgsMountsAndEnv(t *testing.T) {
	cfg := &ContainerConfig{
		Image: "img",
		ExtraMounts: []Mount{
			{Source: "/host/cfg", Target: "/cfg", ReadOnly: true},
			{Source: "/host/data", Target: "/data"},
		},
		EnvVars: []string{"HOME=/root", "TERM=xterm"},
	}
	args := buildDockerArgs(cfg, "/s", "opencode", nil, "")
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "-v /host/cfg:/cfg:ro") {
		t.Errorf("read-only mount missing: %v", args)
	}
	if !strings.Contains(joined, "-v /host/data:/data") {
		t.Errorf("mount missing: %v", args)
	}
	if !strings.Contains(joined, "-e HOME=/root") || !strings.Contains(joined, "-e TERM=xterm") {
		t.Errorf("env injection missing: %v", args)
	}
}

func TestBuildDockerArgsStdinRedirect(t *testing.T) {
	cfg := &ContainerConfig{Image: "img"}
	args := buildDockerArgs(cfg, "/s", "claude", []string{"-p", "it's here"}, "/scratch/stdin.txt")

	if !slices.Contains(args, "-i") {
		t.Errorf("interactive flag missing for stdin redirect: %v", args)
	}

	idx := slices.Index(args, "sh")
	if idx < 0 || idx+2 >= len(args) || args[idx+1] != "-c" {
		t.Fatalf("expected sh -c invocation: %v", args)
	}
	cmdStr := args[idx+2]
	if !strings.HasSuffix(cmdStr, "< /scratch/stdin.txt") {
		t.Errorf("stdin redirect missing: %q", cmdStr)
	}
	if !strings.Contains(cmdStr, `'it'\''s here'`) {
		t.Errorf("argument not shell-escaped: %q", cmdStr)
	}
}

func TestShellEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "''"},
		{"plain", "'plain'"},
		{"two words", "'two words'"},
		{"it's", `'it'\''s'`},
		{"$HOME `cmd`", "'$HOME `cmd`'"},
	}

	for _, tt := range tests {
		if got := shellEscape(tt.in); got != tt.want {
			t.Errorf("shellEscape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContainerConfigFromEnv(t *testing.T) {
	t.Setenv(EnvContainerImage, "ghcr.io/org/runner:1")
	t.Setenv(EnvContainerMemory, "256m")
	t.Setenv(EnvContainerPidsLimit, "64")
	t.Setenv(EnvContainerNetwork, "host")

	cfg, err := ContainerConfigFromEnv()
	if err != nil {
		t.Fatalf("ContainerConfigFromEnv failed: %v", err)
	}
	if cfg.Image != "ghcr.io/org/runner:1" {
		t.Errorf("Image = %q", cfg.Image)
	}
	if cfg.MemoryLimit != "256m" {
		t.Errorf("MemoryLimit = %q", cfg.MemoryLimit)
	}
	if cfg.PidsLimit != 64 {
		t.Errorf("PidsLimit = %d", cfg.PidsLimit)
	}
	if cfg.NetworkMode != NetworkHost {
		t.Errorf("NetworkMode = %q", cfg.NetworkMode)
	}
}

func TestContainerConfigFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvContainerImage, "img")
	t.Setenv(EnvContainerMemory, "")
	t.Setenv(EnvContainerPidsLimit, "")
	t.Setenv(EnvContainerNetwork, "")

	cfg, err := ContainerConfigFromEnv()
	if err != nil {
		t.Fatalf("ContainerConfigFromEnv failed: %v", err)
	}
	if cfg.NetworkMode != NetworkNone {
		t.Errorf("NetworkMode = %q, want none by default", cfg.NetworkMode)
	}
}

func TestContainerConfigFromEnvMissingImage(t *testing.T) {
	t.Setenv(EnvContainerImage, "")
	if _, err := ContainerConfigFromEnv(); err == nil {
		t.Fatal("expected an error when the image is unset")
	}
}

func TestContainerConfigFromEnvBadPidsLimit(t *testing.T) {
	t.Setenv(EnvContainerImage, "img")
	t.Setenv(EnvContainerPidsLimit, "not-a-number")
	if _, err := ContainerConfigFromEnv(); err == nil {
		t.Fatal("expected an error for a malformed PIDs limit")
	}
}

package runner

import (
	"log/slog"
	"os"
	"os/exec"
)

// SandboxPolicy is the resolved environment policy for a subprocess:
// the working directory to pin and the environment keys to pass
// through. Everything else in the parent environment is withheld.
type SandboxPolicy struct {
	// AllowedEnvKeys are the variables re-injected from the parent
	// environment.
	AllowedEnvKeys []string

	// WorkingDirectory is the resolved cwd for the child. Always set.
	WorkingDirectory string
}

// BuildPolicy resolves a policy from adapter configuration. A
// configured working directory is used only if it exists; otherwise
// the process cwd is the fallback.
func BuildPolicy(cwd *string, envKeys []string) SandboxPolicy {
	dir := ""
	if cwd != nil {
		if info, err := os.Stat(*cwd); err == nil && info.IsDir() {
			dir = *cwd
		} else {
			slog.Debug("configured working directory unavailable, using process cwd",
				"configured", *cwd,
			)
		}
	}
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}

	keys := envKeys
	if len(keys) == 0 {
		keys = DefaultEnvKeys()
	}

	return SandboxPolicy{
		AllowedEnvKeys:   keys,
		WorkingDirectory: dir,
	}
}

// Apply clears the child environment, injects each whitelisted key
// whose value is set in the parent environment, and pins the working
// directory. Missing keys are skipped with a debug log; they are never
// an error.
func (p SandboxPolicy) Apply(cmd *exec.Cmd) {
	env := make([]string, 0, len(p.AllowedEnvKeys))
	for _, key := range p.AllowedEnvKeys {
		if value, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+value)
		} else {
			slog.Debug("sandbox env key not set in parent environment, skipping",
				"key", key,
			)
		}
	}
	cmd.Env = env
	cmd.Dir = p.WorkingDirectory
}

// Environ returns the whitelisted environment as KEY=VALUE pairs, for
// execution paths that build their own argument lists (the container
// backend).
func (p SandboxPolicy) Environ() []string {
	env := make([]string, 0, len(p.AllowedEnvKeys))
	for _, key := range p.AllowedEnvKeys {
		if value, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+value)
		}
	}
	return env
}

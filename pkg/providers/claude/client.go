package claude

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/runner"
)

const (
	// DefaultModel is passed to --model when the runner configuration
	// does not pin one.
	DefaultModel = "opus"

	// maxTokensEnv caps the CLI's output length when the request sets
	// MaxTokens. Injected after the sandbox reset so it survives.
	maxTokensEnv = "CLAUDE_CODE_MAX_OUTPUT_TOKENS"
)

// fallbackModels is the static model list advertised to clients. The
// CLI accepts aliases rather than full model identifiers.
var fallbackModels = []string{"sonnet", "opus", "haiku"}

// Provider is the Claude Code CLI adapter. It implements the
// providers.Provider interface by spawning the `claude` binary with
// `--output-format json` for structured responses and caching session
// IDs for resumption.
type Provider struct {
	cfg          *runner.Config
	defaultModel string

	mu       sync.Mutex
	sessions map[string]string
}

// NewProvider creates a Claude Code adapter over the given runner
// configuration. The configured model, when set, becomes the default.
func NewProvider(cfg *runner.Config) *Provider {
	defaultModel := DefaultModel
	if cfg.Model != nil {
		defaultModel = *cfg.Model
	}
	return &Provider{
		cfg:          cfg,
		defaultModel: defaultModel,
		sessions:     make(map[string]string),
	}
}

// Name returns the adapter identifier.
func (p *Provider) Name() string { return "claude-code" }

// DisplayName returns the human-readable CLI name.
func (p *Provider) DisplayName() string { return "Claude Code CLI" }

// Kind returns the provider kind this adapter serves.
func (p *Provider) Kind() providers.Kind { return providers.ClaudeCode }

// Capabilities reports system message and streaming support.
func (p *Provider) Capabilities() providers.Features {
	return providers.FeatureSystemMessages | providers.FeatureStreaming
}

// DefaultModel returns the model used when a request does not name one.
func (p *Provider) DefaultModel() string { return p.defaultModel }

// AvailableModels returns the model aliases the CLI accepts.
func (p *Provider) AvailableModels() []string {
	models := make([]string, len(fallbackModels))
	copy(models, fallbackModels)
	return models
}

// setSession stores a session ID for later resumption under key.
func (p *Provider) setSession(key, sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[key] = sessionID
}

// sessionFor returns the cached session ID for key, if any.
func (p *Provider) sessionFor(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sid, ok := p.sessions[key]
	return sid, ok
}

// buildArgs assembles the argument list shared by blocking and
// streaming completions. The request's model field selects the session
// cache entry, not the --model value.
func (p *Provider) buildArgs(prompt string, system *string, outputFormat string, req *providers.ChatRequest) []string {
	args := []string{"-p", prompt, "--output-format", outputFormat}

	// stream-json requires --verbose in the Claude Code CLI.
	if outputFormat == "stream-json" {
		args = append(args, "--verbose")
	}

	if system != nil {
		args = append(args, "--system-prompt", *system)
	}

	args = append(args, "--model", p.defaultModel)

	// Disable the CLI's own MCP servers; tool wiring happens upstream.
	args = append(args, "--strict-mcp-config", "{}")

	args = append(args, p.cfg.ExtraArgs...)

	if req.Model != nil {
		if sid, ok := p.sessionFor(*req.Model); ok {
			args = append(args, "--resume", sid)
		}
	}

	return args
}

func (p *Provider) extraEnv(req *providers.ChatRequest) map[string]string {
	if req.MaxTokens == nil {
		return nil
	}
	return map[string]string{maxTokensEnv: strconv.Itoa(*req.MaxTokens)}
}

// Complete runs one blocking completion via `claude -p`.
func (p *Provider) Complete(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	system, prompt := providers.BuildSplit(req.Messages)
	args := p.buildArgs(prompt, system, "json", req)

	model := p.defaultModel
	if req.Model != nil {
		model = *req.Model
	}
	slog.Debug("spawning claude CLI",
		"binary", p.cfg.BinaryPath,
		"model", model,
		"has_system_prompt", system != nil,
		"prompt_len", len(prompt))

	out, err := runner.Execute(ctx, p.cfg, providers.ClaudeCode, args, p.extraEnv(req), p.cfg.Timeout, p.cfg.OutputCap())
	if err != nil {
		return nil, err
	}

	if out.ExitCode != 0 {
		slog.Warn("claude CLI failed",
			"exit_code", out.ExitCode,
			"stdout_len", len(out.Stdout),
			"stderr_len", len(out.Stderr))
		detail := string(out.Stderr)
		if detail == "" {
			detail = string(out.Stdout)
		}
		return nil, providers.NewExternalServiceError("claude-code",
			fmt.Sprintf("claude exited with code %d: %s", out.ExitCode, detail))
	}

	resp, sessionID, err := parseResponse(out.Stdout)
	if err != nil {
		return nil, err
	}

	if sessionID != "" && req.Model != nil {
		p.setSession(*req.Model, sessionID)
	}

	return resp, nil
}

// CompleteStream runs a streaming completion via
// `claude -p --output-format stream-json --verbose`. Streaming always
// spawns the host binary; container routing applies to blocking calls
// only.
func (p *Provider) CompleteStream(ctx context.Context, req *providers.ChatRequest) (<-chan *providers.StreamChunk, error) {
	system, prompt := providers.BuildSplit(req.Messages)
	args := p.buildArgs(prompt, system, "stream-json", req)

	policy := runner.BuildPolicy(p.cfg.WorkingDirectory, p.cfg.AllowedEnvKeys)
	cmd := runner.Command(p.cfg.BinaryPath, args, policy, p.extraEnv(req))

	stream, err := runner.StartStream(ctx, cmd, translateLine)
	if err != nil {
		return nil, err
	}
	return stream.Chunks(), nil
}

// HealthCheck probes the CLI with --version.
func (p *Provider) HealthCheck(ctx context.Context) (bool, error) {
	cmd := runner.Command(p.cfg.BinaryPath, []string{"--version"}, runner.BuildPolicy(nil, nil), nil)
	out, err := runner.Run(ctx, cmd, runner.HealthCheckTimeout, runner.HealthCheckOutputCap)
	if err != nil {
		return false, err
	}

	if out.ExitCode != 0 {
		slog.Warn("claude health check failed", "exit_code", out.ExitCode)
		return false, nil
	}
	slog.Debug("claude health check passed")
	return true, nil
}

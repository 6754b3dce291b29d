package opencode

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/runner"
)

// DefaultModel is used when the runner configuration does not pin one.
const DefaultModel = "anthropic/claude-sonnet-4"

// fallbackModels is the static model list advertised to clients, in
// the CLI's provider/model format.
var fallbackModels = []string{
	"anthropic/claude-sonnet-4",
	"anthropic/claude-opus-4",
	"openai/gpt-5",
}

// Provider is the OpenCode CLI adapter. It implements the
// providers.Provider interface by spawning `opencode run` with
// `--format json`. Streaming is not supported by the CLI.
type Provider struct {
	cfg          *runner.Config
	defaultModel string

	mu       sync.Mutex
	sessions map[string]string
}

// NewProvider creates an OpenCode adapter over the given runner
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
func (p *Provider) Name() string { return "opencode" }

// DisplayName returns the human-readable CLI name.
func (p *Provider) DisplayName() string { return "OpenCode CLI" }

// Kind returns the provider kind this adapter serves.
func (p *Provider) Kind() providers.Kind { return providers.OpenCode }

// Capabilities reports no optional features: no streaming, no
// system-prompt flag.
func (p *Provider) Capabilities() providers.Features { return 0 }

// DefaultModel returns the model used when a request does not name one.
func (p *Provider) DefaultModel() string { return p.defaultModel }

// AvailableModels returns the static model list.
func (p *Provider) AvailableModels() []string {
	models := make([]string, len(fallbackModels))
	copy(models, fallbackModels)
	return models
}

func (p *Provider) setSession(key, sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[key] = sessionID
}

func (p *Provider) sessionFor(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sid, ok := p.sessions[key]
	return sid, ok
}

func (p *Provider) buildArgs(prompt string, req *providers.ChatRequest) []string {
	args := []string{"run", prompt, "--format", "json", "--model", p.defaultModel}
	args = append(args, p.cfg.ExtraArgs...)

	if req.Model != nil {
		if sid, ok := p.sessionFor(*req.Model); ok {
			args = append(args, "--session", sid)
		}
	}

	return args
}

// Complete runs one blocking completion via `opencode run`.
func (p *Provider) Complete(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	prompt := providers.BuildCombined(req.Messages)
	args := p.buildArgs(prompt, req)

	out, err := runner.Execute(ctx, p.cfg, providers.OpenCode, args, nil, p.cfg.Timeout, p.cfg.OutputCap())
	if err != nil {
		return nil, err
	}

	if out.ExitCode != 0 {
		return nil, providers.NewExternalServiceError("opencode",
			fmt.Sprintf("opencode exited with code %d: %s", out.ExitCode, out.Stderr))
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

// CompleteStream always fails: the OpenCode CLI has no streaming mode.
func (p *Provider) CompleteStream(_ context.Context, _ *providers.ChatRequest) (<-chan *providers.StreamChunk, error) {
	return nil, providers.NewInternalError("opencode",
		"OpenCode CLI does not support streaming responses")
}

// HealthCheck probes the CLI with --version.
func (p *Provider) HealthCheck(ctx context.Context) (bool, error) {
	cmd := runner.Command(p.cfg.BinaryPath, []string{"--version"}, runner.BuildPolicy(nil, nil), nil)
	out, err := runner.Run(ctx, cmd, runner.HealthCheckTimeout, runner.HealthCheckOutputCap)
	if err != nil {
		return false, err
	}

	if out.ExitCode != 0 {
		slog.Warn("opencode health check failed", "exit_code", out.ExitCode)
		return false, nil
	}
	slog.Debug("opencode health check passed")
	return true, nil
}

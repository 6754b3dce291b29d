package cursor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/runner"
)

// DefaultModel is used when the runner configuration does not pin one.
const DefaultModel = "sonnet-4"

// fallbackModels is the static model list advertised to clients.
var fallbackModels = []string{"sonnet-4", "gpt-5", "gemini-2.5-pro"}

// Provider is the Cursor Agent CLI adapter. It implements the
// providers.Provider interface by spawning the `cursor-agent` binary
// with `--output-format json` and `--approve-mcps` for automatic MCP
// server approval.
type Provider struct {
	cfg          *runner.Config
	defaultModel string

	mu       sync.Mutex
	sessions map[string]string
}

// NewProvider creates a Cursor Agent adapter over the given runner
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
func (p *Provider) Name() string { return "cursor-agent" }

// DisplayName returns the human-readable CLI name.
func (p *Provider) DisplayName() string { return "Cursor Agent CLI" }

// Kind returns the provider kind this adapter serves.
func (p *Provider) Kind() providers.Kind { return providers.CursorAgent }

// Capabilities reports streaming support only.
func (p *Provider) Capabilities() providers.Features {
	return providers.FeatureStreaming
}

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

// buildArgs assembles the argument list shared by blocking and
// streaming completions.
func (p *Provider) buildArgs(prompt, outputFormat string, req *providers.ChatRequest) []string {
	args := []string{"-p", prompt, "--output-format", outputFormat, "--approve-mcps"}
	args = append(args, "--model", p.defaultModel)
	args = append(args, p.cfg.ExtraArgs...)

	if req.Model != nil {
		if sid, ok := p.sessionFor(*req.Model); ok {
			args = append(args, "--resume", sid)
		}
	}

	return args
}

// Complete runs one blocking completion via `cursor-agent -p`.
func (p *Provider) Complete(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	if req.Temperature != nil || req.MaxTokens != nil {
		slog.Debug("Cursor Agent CLI does not support temperature or max_tokens; ignoring",
			"temperature", req.Temperature,
			"max_tokens", req.MaxTokens)
	}

	// No system message support; only the conversation body is sent.
	_, prompt := providers.BuildSplit(req.Messages)
	args := p.buildArgs(prompt, "json", req)

	out, err := runner.Execute(ctx, p.cfg, providers.CursorAgent, args, nil, p.cfg.Timeout, p.cfg.OutputCap())
	if err != nil {
		return nil, err
	}

	if out.ExitCode != 0 {
		slog.Warn("cursor-agent CLI failed",
			"exit_code", out.ExitCode,
			"stdout_len", len(out.Stdout),
			"stderr_len", len(out.Stderr))
		detail := string(out.Stderr)
		if detail == "" {
			detail = string(out.Stdout)
		}
		return nil, providers.NewExternalServiceError("cursor-agent",
			fmt.Sprintf("cursor-agent exited with code %d: %s", out.ExitCode, detail))
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
// `cursor-agent -p --output-format stream-json`.
func (p *Provider) CompleteStream(ctx context.Context, req *providers.ChatRequest) (<-chan *providers.StreamChunk, error) {
	_, prompt := providers.BuildSplit(req.Messages)
	args := p.buildArgs(prompt, "stream-json", req)

	policy := runner.BuildPolicy(p.cfg.WorkingDirectory, p.cfg.AllowedEnvKeys)
	cmd := runner.Command(p.cfg.BinaryPath, args, policy, nil)

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
		slog.Warn("cursor-agent health check failed", "exit_code", out.ExitCode)
		return false, nil
	}
	slog.Debug("cursor-agent health check passed")
	return true, nil
}

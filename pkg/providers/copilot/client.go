package copilot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/runner"
)

// Provider is the GitHub Copilot CLI adapter. It implements the
// providers.Provider interface by spawning the `copilot` binary in
// non-interactive mode and capturing its plain-text output.
type Provider struct {
	cfg             *runner.Config
	defaultModel    string
	availableModels []string
}

// NewProvider creates a Copilot adapter over the given runner
// configuration. Model discovery via `gh copilot models` happens here;
// a static list is used when discovery fails.
func NewProvider(cfg *runner.Config) *Provider {
	defaultModel := DefaultModel
	if cfg.Model != nil {
		defaultModel = *cfg.Model
	}
	models := discoverModels()
	if models == nil {
		models = make([]string, len(fallbackModels))
		copy(models, fallbackModels)
	}
	return &Provider{
		cfg:             cfg,
		defaultModel:    defaultModel,
		availableModels: models,
	}
}

// Name returns the adapter identifier.
func (p *Provider) Name() string { return "copilot" }

// DisplayName returns the human-readable CLI name.
func (p *Provider) DisplayName() string { return "GitHub Copilot CLI" }

// Kind returns the provider kind this adapter serves.
func (p *Provider) Kind() providers.Kind { return providers.Copilot }

// Capabilities reports streaming support only. The CLI has no
// system-prompt flag; system messages are embedded into the prompt.
func (p *Provider) Capabilities() providers.Features {
	return providers.FeatureStreaming
}

// DefaultModel returns the model used when a request does not name one.
func (p *Provider) DefaultModel() string { return p.defaultModel }

// AvailableModels returns the discovered or fallback model list.
func (p *Provider) AvailableModels() []string {
	models := make([]string, len(p.availableModels))
	copy(models, p.availableModels)
	return models
}

// buildArgs assembles the non-interactive invocation shared by blocking
// and streaming completions.
func (p *Provider) buildArgs(prompt string) []string {
	args := []string{"-p", prompt, "--model", p.defaultModel}

	// Required for non-interactive mode.
	args = append(args, "--allow-all-tools")
	// Disable MCP servers; tool wiring happens upstream.
	args = append(args, "--disable-builtin-mcps")
	// Prevent reading project AGENTS.md instructions.
	args = append(args, "--no-custom-instructions")
	// Autonomous mode, no interactive prompts.
	args = append(args, "--no-ask-user")
	args = append(args, "--no-color")
	// Output only the agent response, no stats footer.
	args = append(args, "-s")

	return append(args, p.cfg.ExtraArgs...)
}

// Complete runs one blocking completion and returns the trimmed
// plain-text output.
func (p *Provider) Complete(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	if req.Temperature != nil || req.MaxTokens != nil {
		slog.Debug("Copilot CLI does not support temperature or max_tokens; ignoring",
			"temperature", req.Temperature,
			"max_tokens", req.MaxTokens)
	}

	prompt := providers.BuildCombined(req.Messages)
	args := p.buildArgs(prompt)

	out, err := runner.Execute(ctx, p.cfg, providers.Copilot, args, nil, p.cfg.Timeout, p.cfg.OutputCap())
	if err != nil {
		return nil, err
	}

	if out.ExitCode != 0 {
		slog.Warn("copilot CLI failed",
			"exit_code", out.ExitCode,
			"stdout_len", len(out.Stdout),
			"stderr_len", len(out.Stderr))
		detail := string(out.Stderr)
		if detail == "" {
			detail = string(out.Stdout)
		}
		return nil, providers.NewExternalServiceError("copilot",
			fmt.Sprintf("copilot exited with code %d: %s", out.ExitCode, detail))
	}

	finish := providers.FinishReasonStop
	return &providers.ChatResponse{
		Content:      strings.TrimSpace(string(out.Stdout)),
		Model:        "copilot",
		FinishReason: &finish,
	}, nil
}

// CompleteStream runs a streaming completion with `--stream on`. Each
// stdout line becomes one chunk; the stream ends at process exit with
// no final marker.
func (p *Provider) CompleteStream(ctx context.Context, req *providers.ChatRequest) (<-chan *providers.StreamChunk, error) {
	prompt := providers.BuildCombined(req.Messages)
	args := append(p.buildArgs(prompt), "--stream", "on")

	policy := runner.BuildPolicy(p.cfg.WorkingDirectory, p.cfg.AllowedEnvKeys)
	cmd := runner.Command(p.cfg.BinaryPath, args, policy, nil)

	stream, err := runner.StartStream(ctx, cmd, func(line string) ([]*providers.StreamChunk, bool) {
		return []*providers.StreamChunk{{Delta: line}}, false
	})
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
		slog.Warn("copilot health check failed", "exit_code", out.ExitCode)
		return false, nil
	}
	slog.Debug("copilot health check passed")
	return true, nil
}

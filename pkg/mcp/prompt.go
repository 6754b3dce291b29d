package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"embacle-hq/embacle/pkg/audit"
	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/proxy"
	"embacle-hq/embacle/pkg/telemetry/metrics"
)

// multiplexErrorKind labels fan-out branch failures in metrics and
// audit records.
const multiplexErrorKind = "multiplex_error"

// promptTool dispatches a chat prompt to the active provider, or fans
// it out to the configured multiplex list.
type promptTool struct{}

func (promptTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "prompt",
		Description: "Send a chat prompt to the active LLM provider, or multiplex to all configured providers",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"messages": map[string]any{
					"type":        "array",
					"description": "Chat messages to send to the provider",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"role": map[string]any{
								"type": "string",
								"enum": []string{"system", "user", "assistant"},
							},
							"content": map[string]any{
								"type": "string",
							},
						},
						"required": []string{"role", "content"},
					},
				},
				"multiplex": map[string]any{
					"type":        "boolean",
					"description": "If true, send to all multiplex providers instead of the active one",
					"default":     false,
				},
			},
			"required": []string{"messages"},
		},
	}
}

func (promptTool) Call(ctx context.Context, state *State, args map[string]any) CallToolResult {
	messages, errMsg := parseMessages(args)
	if errMsg != "" {
		return ErrorResult(errMsg)
	}

	multiplexMode, _ := args["multiplex"].(bool)
	if multiplexMode {
		return executeMultiplex(ctx, state, messages)
	}
	return executeSingle(ctx, state, messages)
}

// completionPayload mirrors the adapter response with nullable fields
// kept explicit, so clients always see the usage and finish_reason
// keys.
type completionPayload struct {
	Content      string           `json:"content"`
	Model        string           `json:"model"`
	Usage        *providers.Usage `json:"usage"`
	FinishReason *string          `json:"finish_reason"`
}

// executeSingle dispatches the prompt to the active provider with the
// active model override.
func executeSingle(ctx context.Context, state *State, messages []providers.ChatMessage) CallToolResult {
	kind := state.ActiveKind()
	providerName := kind.String()

	adapter, err := state.Adapter(kind)
	if err != nil {
		recordPromptFailure(ctx, state, providerName, messages, 0, err)
		return ErrorResult("Failed to create runner: " + err.Error())
	}

	req := &providers.ChatRequest{
		Messages: messages,
		Model:    state.ActiveModel(),
	}

	start := time.Now()
	resp, err := adapter.Complete(ctx, req)
	duration := time.Since(start)
	if err != nil {
		recordPromptFailure(ctx, state, providerName, messages, duration, err)
		return ErrorResult("Completion error: " + err.Error())
	}

	state.metrics.RecordRequest(providerName, resp.Model, metrics.SurfaceMCP, duration)

	rec := &audit.Record{
		Surface:     audit.SurfaceMCP,
		Kind:        audit.KindSingle,
		Provider:    providerName,
		Model:       resp.Model,
		PromptChars: promptChars(messages),
		DurationMs:  duration.Milliseconds(),
		Status:      audit.StatusOK,
	}
	if resp.Usage != nil {
		rec.PromptTokens = int64(resp.Usage.PromptTokens)
		rec.CompletionTokens = int64(resp.Usage.CompletionTokens)
		rec.TotalTokens = int64(resp.Usage.TotalTokens)
	}
	state.audit.Record(rec)

	slog.InfoContext(ctx, "prompt completed",
		"provider", providerName,
		"model", resp.Model,
		"duration_ms", duration.Milliseconds(),
	)

	payload := completionPayload{
		Content:      resp.Content,
		Model:        resp.Model,
		Usage:        resp.Usage,
		FinishReason: resp.FinishReason,
	}
	rendered, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return ErrorResult("Response serialization failed: " + err.Error())
	}
	return TextResult(string(rendered))
}

// multiplexPayload is the rendered multiplex outcome.
type multiplexPayload struct {
	Responses []multiplexProviderPayload `json:"responses"`
	Summary   string                     `json:"summary"`
}

// multiplexProviderPayload is one provider's slot in the rendered
// multiplex outcome.
type multiplexProviderPayload struct {
	Provider   string  `json:"provider"`
	Content    *string `json:"content"`
	Model      *string `json:"model"`
	Error      *string `json:"error"`
	DurationMS int64   `json:"duration_ms"`
}

// executeMultiplex fans the prompt out to every configured provider.
// The fan-out carries messages only; there are no sampling overrides
// on this surface.
func executeMultiplex(ctx context.Context, state *State, messages []providers.ChatMessage) CallToolResult {
	kinds := state.MultiplexKinds()
	if len(kinds) == 0 {
		return ErrorResult("No multiplex providers configured. Use set_multiplex_provider first.")
	}

	slog.InfoContext(ctx, "dispatching multiplex prompt", "providers", len(kinds))
	state.metrics.RecordMultiplexFanout(len(kinds))

	chars := promptChars(messages)
	result := state.engine.Execute(ctx, messages, kinds, nil, nil)

	payload := multiplexPayload{
		Responses: make([]multiplexProviderPayload, len(result.Responses)),
		Summary:   result.Summary,
	}
	for i, pr := range result.Responses {
		payload.Responses[i] = multiplexProviderPayload{
			Provider:   pr.Provider,
			Content:    pr.Content,
			Model:      pr.Model,
			Error:      pr.Error,
			DurationMS: pr.Duration.Milliseconds(),
		}

		rec := &audit.Record{
			Surface:     audit.SurfaceMCP,
			Kind:        audit.KindMultiplex,
			Provider:    pr.Provider,
			PromptChars: chars,
			DurationMs:  pr.Duration.Milliseconds(),
		}
		if pr.Error != nil {
			rec.Status = audit.StatusError
			rec.ErrorKind = multiplexErrorKind
			rec.Error = *pr.Error
			state.metrics.RecordError(pr.Provider, multiplexErrorKind)
		} else {
			rec.Status = audit.StatusOK
			if pr.Model != nil {
				rec.Model = *pr.Model
			}
			state.metrics.RecordRequest(pr.Provider, rec.Model, metrics.SurfaceMCP, pr.Duration)
		}
		state.audit.Record(rec)
	}

	slog.InfoContext(ctx, "multiplex prompt finished", "summary", result.Summary)

	rendered, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return ErrorResult("Result serialization failed: " + err.Error())
	}
	return TextResult(string(rendered))
}

// recordPromptFailure logs and records a failed single dispatch.
func recordPromptFailure(ctx context.Context, state *State, providerName string, messages []providers.ChatMessage, duration time.Duration, err error) {
	errKind := proxy.ErrorTypeFor(err)

	slog.ErrorContext(ctx, "prompt failed",
		"provider", providerName,
		"error_kind", errKind,
		"error", err,
	)

	state.metrics.RecordError(providerName, errKind)
	state.audit.Record(&audit.Record{
		Surface:     audit.SurfaceMCP,
		Kind:        audit.KindSingle,
		Provider:    providerName,
		PromptChars: promptChars(messages),
		DurationMs:  duration.Milliseconds(),
		Status:      audit.StatusError,
		ErrorKind:   errKind,
		Error:       err.Error(),
	})
}

// parseMessages extracts and validates the messages argument. The
// returned string is empty on success and a client-facing error
// message otherwise.
func parseMessages(args map[string]any) ([]providers.ChatMessage, string) {
	arr, ok := args["messages"].([]any)
	if !ok {
		return nil, "Missing or invalid 'messages' array"
	}

	messages := make([]providers.ChatMessage, 0, len(arr))
	for i, item := range arr {
		msg, _ := item.(map[string]any)

		role, ok := msg["role"].(string)
		if !ok {
			return nil, fmt.Sprintf("Message %d: missing 'role'", i)
		}

		content, ok := msg["content"].(string)
		if !ok {
			return nil, fmt.Sprintf("Message %d: missing 'content'", i)
		}

		switch role {
		case providers.RoleSystem, providers.RoleUser, providers.RoleAssistant:
		default:
			return nil, fmt.Sprintf("Message %d: invalid role '%s'", i, role)
		}

		messages = append(messages, providers.ChatMessage{Role: role, Content: content})
	}

	if len(messages) == 0 {
		return nil, "Messages array must not be empty"
	}

	return messages, ""
}

// promptChars totals the content length of the prompt messages.
func promptChars(messages []providers.ChatMessage) int64 {
	var n int64
	for _, m := range messages {
		n += int64(len(m.Content))
	}
	return n
}

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"embacle-hq/embacle/pkg/audit"
	"embacle-hq/embacle/pkg/multiplex"
	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/proxy"
	"embacle-hq/embacle/pkg/proxy/middleware"
	"embacle-hq/embacle/pkg/proxy/types"
	"embacle-hq/embacle/pkg/telemetry/metrics"
)

// multiplexErrorKind labels fan-out branch failures in metrics and
// audit records. The engine flattens branch errors to messages, so the
// original error taxonomy is not recoverable here.
const multiplexErrorKind = "multiplex_error"

// ChatHandler serves POST /v1/chat/completions. The model field decides
// the mode: a single string (or one-element array) dispatches to one
// provider, a longer array fans out through the multiplex engine, and
// stream:true switches the single-provider path to SSE.
type ChatHandler struct {
	source  AdapterSource
	engine  *multiplex.Engine
	metrics *metrics.GatewayMetrics
	audit   *audit.Recorder
}

// NewChatHandler creates the chat completions handler. Metrics and
// audit may be nil, which disables those integrations.
func NewChatHandler(source AdapterSource, engine *multiplex.Engine, gm *metrics.GatewayMetrics, rec *audit.Recorder) *ChatHandler {
	return &ChatHandler{
		source:  source,
		engine:  engine,
		metrics: gm,
		audit:   rec,
	}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := proxy.ParseChatCompletionRequest(r)
	if err != nil {
		slog.WarnContext(ctx, "rejected chat completion request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		writeError(ctx, w, parseErrorResponse(err))
		return
	}

	switch {
	case req.Model.IsArray() && len(req.Model.Multiple) > 1:
		h.handleMultiplex(w, r, req, req.Model.Multiple)
	case req.Model.IsArray() && len(req.Model.Multiple) == 1:
		h.handleSingle(w, r, req, req.Model.Multiple[0])
	case req.Model.IsArray():
		writeError(ctx, w, types.NewInvalidRequestError("Model array must not be empty", "model"))
	default:
		h.handleSingle(w, r, req, req.Model.Single)
	}
}

// handleSingle dispatches to one provider, streaming or not.
func (h *ChatHandler) handleSingle(w http.ResponseWriter, r *http.Request, req *types.ChatCompletionRequest, modelStr string) {
	ctx := r.Context()
	resolved := providers.ResolveAddress(modelStr, h.source.DefaultKind())
	providerName := resolved.Provider.String()

	slog.DebugContext(ctx, "dispatching completion",
		"provider", providerName,
		"model", resolved.Format(),
		"stream", req.Stream,
	)

	kind := audit.KindSingle
	if req.Stream {
		kind = audit.KindStream
	}

	adapter, err := h.source.Get(resolved.Provider)
	if err != nil {
		h.failCompletion(ctx, w, failure{
			provider:    providerName,
			kind:        kind,
			promptChars: promptChars(req.Messages),
			err:         err,
		})
		return
	}

	chatReq := &providers.ChatRequest{
		Messages:    convertMessages(ctx, req.Messages),
		Model:       resolved.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      req.Stream,
	}

	if req.Stream {
		h.streamCompletion(w, r, req, resolved, adapter, chatReq)
		return
	}

	start := time.Now()
	resp, err := adapter.Complete(ctx, chatReq)
	duration := time.Since(start)

	if err != nil {
		h.failCompletion(ctx, w, failure{
			provider:    providerName,
			kind:        kind,
			promptChars: promptChars(req.Messages),
			duration:    duration,
			err:         err,
		})
		return
	}

	modelName := providerName + ":" + resp.Model

	var usage *types.Usage
	if resp.Usage != nil {
		usage = &types.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	finishReason := resp.FinishReason
	if finishReason == nil {
		finishReason = strPtr(providers.FinishReasonStop)
	}

	out := &types.ChatCompletionResponse{
		ID:      types.NewResponseID(),
		Object:  types.ObjectChatCompletion,
		Created: time.Now().Unix(),
		Model:   modelName,
		Choices: []types.Choice{
			{
				Index: 0,
				Message: types.ResponseMessage{
					Role:    providers.RoleAssistant,
					Content: resp.Content,
				},
				FinishReason: finishReason,
			},
		},
		Usage: usage,
	}

	h.metrics.RecordRequest(providerName, resp.Model, metrics.SurfaceREST, duration)

	rec := &audit.Record{
		RequestID:   middleware.GetRequestID(ctx),
		Surface:     audit.SurfaceREST,
		Kind:        audit.KindSingle,
		Provider:    providerName,
		Model:       resp.Model,
		PromptChars: promptChars(req.Messages),
		DurationMs:  duration.Milliseconds(),
		Status:      audit.StatusOK,
	}
	if resp.Usage != nil {
		rec.PromptTokens = int64(resp.Usage.PromptTokens)
		rec.CompletionTokens = int64(resp.Usage.CompletionTokens)
		rec.TotalTokens = int64(resp.Usage.TotalTokens)
	}
	h.audit.Record(rec)

	slog.InfoContext(ctx, "chat completion succeeded",
		"request_id", middleware.GetRequestID(ctx),
		"provider", providerName,
		"model", modelName,
		"duration_ms", duration.Milliseconds(),
	)

	if err := proxy.WriteJSON(w, http.StatusOK, out); err != nil {
		slog.ErrorContext(ctx, "failed to write response",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
	}
}

// handleMultiplex fans the prompt out to every listed provider and
// returns the aggregated results.
func (h *ChatHandler) handleMultiplex(w http.ResponseWriter, r *http.Request, req *types.ChatCompletionRequest, models []string) {
	ctx := r.Context()

	if req.Stream {
		writeError(ctx, w, types.NewInvalidRequestError("Streaming is not supported for multiplex requests", "stream"))
		return
	}

	defaultKind := h.source.DefaultKind()
	kinds := make([]providers.Kind, len(models))
	for i, m := range models {
		kinds[i] = providers.ResolveAddress(m, defaultKind).Provider
	}

	slog.InfoContext(ctx, "dispatching multiplex completion",
		"request_id", middleware.GetRequestID(ctx),
		"providers", len(kinds),
	)

	h.metrics.RecordMultiplexFanout(len(kinds))

	messages := convertMessages(ctx, req.Messages)
	chars := promptChars(req.Messages)

	result := h.engine.Execute(ctx, messages, kinds, req.Temperature, req.MaxTokens)

	results := make([]types.MultiplexProviderResult, len(result.Responses))
	for i, pr := range result.Responses {
		results[i] = types.MultiplexProviderResult{
			Provider:   pr.Provider,
			Model:      pr.Model,
			Content:    pr.Content,
			Error:      pr.Error,
			DurationMS: pr.Duration.Milliseconds(),
		}

		rec := &audit.Record{
			RequestID:   middleware.GetRequestID(ctx),
			Surface:     audit.SurfaceREST,
			Kind:        audit.KindMultiplex,
			Provider:    pr.Provider,
			PromptChars: chars,
			DurationMs:  pr.Duration.Milliseconds(),
		}
		if pr.Error != nil {
			rec.Status = audit.StatusError
			rec.ErrorKind = multiplexErrorKind
			rec.Error = *pr.Error
			h.metrics.RecordError(pr.Provider, multiplexErrorKind)
		} else {
			rec.Status = audit.StatusOK
			if pr.Model != nil {
				rec.Model = *pr.Model
			}
			h.metrics.RecordRequest(pr.Provider, rec.Model, metrics.SurfaceREST, pr.Duration)
		}
		h.audit.Record(rec)
	}

	out := &types.MultiplexResponse{
		ID:      types.NewResponseID(),
		Object:  types.ObjectChatCompletionMultiplex,
		Created: time.Now().Unix(),
		Results: results,
		Summary: result.Summary,
	}

	slog.InfoContext(ctx, "multiplex completion finished",
		"request_id", middleware.GetRequestID(ctx),
		"summary", result.Summary,
	)

	if err := proxy.WriteJSON(w, http.StatusOK, out); err != nil {
		slog.ErrorContext(ctx, "failed to write response",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
	}
}

// failure captures everything a failed completion needs to report.
type failure struct {
	provider    string
	kind        string
	promptChars int64
	duration    time.Duration
	err         error
}

// failCompletion logs, records, and writes the error envelope for a
// failed completion.
func (h *ChatHandler) failCompletion(ctx context.Context, w http.ResponseWriter, f failure) {
	errType := proxy.ErrorTypeFor(f.err)

	slog.ErrorContext(ctx, "chat completion failed",
		"request_id", middleware.GetRequestID(ctx),
		"provider", f.provider,
		"error_kind", errType,
		"error", f.err,
	)

	h.metrics.RecordError(f.provider, errType)
	h.audit.Record(&audit.Record{
		RequestID:   middleware.GetRequestID(ctx),
		Surface:     audit.SurfaceREST,
		Kind:        f.kind,
		Provider:    f.provider,
		PromptChars: f.promptChars,
		DurationMs:  f.duration.Milliseconds(),
		Status:      audit.StatusError,
		ErrorKind:   errType,
		Error:       f.err.Error(),
	})

	writeError(ctx, w, proxy.ErrorResponseFor(f.err))
}

// convertMessages maps wire messages to the provider data model.
// Unknown roles are logged and mapped to user.
func convertMessages(ctx context.Context, msgs []types.Message) []providers.ChatMessage {
	out := make([]providers.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		role := m.Role
		switch role {
		case providers.RoleSystem, providers.RoleUser, providers.RoleAssistant:
		default:
			slog.WarnContext(ctx, "unknown message role, mapping to user", "role", role)
			role = providers.RoleUser
		}
		out = append(out, providers.ChatMessage{Role: role, Content: m.Content})
	}
	return out
}

// parseErrorResponse maps a parse or validation failure to a 400
// envelope, naming the offending parameter when known.
func parseErrorResponse(err error) *types.ErrorResponse {
	var valErr *types.ValidationError
	if errors.As(err, &valErr) {
		return types.NewInvalidRequestError(valErr.Message, valErr.Field)
	}
	return types.NewErrorResponse(types.ErrorTypeInvalidRequest, err.Error())
}

// writeError writes an error envelope, logging encode failures.
func writeError(ctx context.Context, w http.ResponseWriter, resp *types.ErrorResponse) {
	if err := proxy.WriteError(w, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}

// promptChars totals the content length of the request messages.
func promptChars(msgs []types.Message) int64 {
	var n int64
	for _, m := range msgs {
		n += int64(len(m.Content))
	}
	return n
}

func strPtr(s string) *string {
	return &s
}

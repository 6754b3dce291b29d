package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"embacle-hq/embacle/pkg/audit"
	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/proxy"
	"embacle-hq/embacle/pkg/proxy/middleware"
	"embacle-hq/embacle/pkg/proxy/types"
	"embacle-hq/embacle/pkg/telemetry/metrics"
)

// streamCompletion bridges a provider stream to OpenAI-style SSE.
//
// Event order: one chunk with delta role "assistant" (carrying content
// only when the first provider chunk already has text), content delta
// chunks, a final chunk with finish_reason, then the literal
// "data: [DONE]" sentinel. A mid-stream failure is emitted as an error
// event before [DONE].
func (h *ChatHandler) streamCompletion(w http.ResponseWriter, r *http.Request, req *types.ChatCompletionRequest, resolved providers.ResolvedAddress, adapter providers.Provider, chatReq *providers.ChatRequest) {
	ctx := r.Context()
	providerName := resolved.Provider.String()
	start := time.Now()

	stream, err := adapter.CompleteStream(ctx, chatReq)
	if err != nil {
		// The stream never started, so a plain HTTP error is still
		// possible here.
		h.failCompletion(ctx, w, failure{
			provider:    providerName,
			kind:        audit.KindStream,
			promptChars: promptChars(req.Messages),
			duration:    time.Since(start),
			err:         err,
		})
		return
	}

	proxy.SetSSEHeaders(w)

	id := types.NewResponseID()
	created := time.Now().Unix()
	modelName := providerName + ":" + adapter.DefaultModel()

	sentRole := false
	chunksSent := 0
	var streamErr error

	for chunk := range stream {
		if chunk.Err != nil {
			streamErr = chunk.Err
			slog.ErrorContext(ctx, "stream failed",
				"request_id", middleware.GetRequestID(ctx),
				"provider", providerName,
				"error", chunk.Err,
			)
			if err := proxy.WriteSSEError(w, chunk.Err.Error()); err != nil {
				slog.ErrorContext(ctx, "failed to write SSE error", "error", err)
			}
			continue
		}

		var role, content, finishReason *string
		if !sentRole {
			sentRole = true
			role = strPtr(providers.RoleAssistant)
			if chunk.Delta != "" || chunk.IsFinal {
				content = strPtr(chunk.Delta)
				finishReason = chunk.FinishReason
			}
		} else if chunk.IsFinal {
			if chunk.Delta != "" {
				content = strPtr(chunk.Delta)
			}
			finishReason = chunk.FinishReason
			if finishReason == nil {
				finishReason = strPtr(providers.FinishReasonStop)
			}
		} else {
			content = strPtr(chunk.Delta)
		}

		out := &types.ChatCompletionChunk{
			ID:      id,
			Object:  types.ObjectChatCompletionChunk,
			Created: created,
			Model:   modelName,
			Choices: []types.ChunkChoice{
				{
					Index:        0,
					Delta:        types.Delta{Role: role, Content: content},
					FinishReason: finishReason,
				},
			},
		}

		if err := proxy.WriteSSEEvent(w, out); err != nil {
			slog.WarnContext(ctx, "failed to write SSE chunk, client likely disconnected",
				"request_id", middleware.GetRequestID(ctx),
				"chunks_sent", chunksSent,
				"error", err,
			)
			break
		}
		chunksSent++
	}

	if err := proxy.WriteSSEDone(w); err != nil {
		slog.ErrorContext(ctx, "failed to write SSE done marker", "error", err)
	}

	duration := time.Since(start)

	rec := &audit.Record{
		RequestID:   middleware.GetRequestID(ctx),
		Surface:     audit.SurfaceREST,
		Kind:        audit.KindStream,
		Provider:    providerName,
		Model:       adapter.DefaultModel(),
		PromptChars: promptChars(req.Messages),
		DurationMs:  duration.Milliseconds(),
	}

	if streamErr != nil {
		errType := proxy.ErrorTypeFor(streamErr)
		rec.Status = audit.StatusError
		rec.ErrorKind = errType
		rec.Error = streamErr.Error()
		h.metrics.RecordError(providerName, errType)
	} else {
		rec.Status = audit.StatusOK
		h.metrics.RecordRequest(providerName, adapter.DefaultModel(), metrics.SurfaceREST, duration)
	}
	h.audit.Record(rec)

	slog.InfoContext(ctx, "streaming completion finished",
		"request_id", middleware.GetRequestID(ctx),
		"provider", providerName,
		"chunks_sent", chunksSent,
		"duration_ms", duration.Milliseconds(),
	)
}

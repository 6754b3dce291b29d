package types

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Object type discriminators used in response envelopes.
const (
	// ObjectChatCompletion marks a non-streaming completion response.
	ObjectChatCompletion = "chat.completion"

	// ObjectChatCompletionChunk marks a streaming chunk.
	ObjectChatCompletionChunk = "chat.completion.chunk"

	// ObjectChatCompletionMultiplex marks a multiplex fan-out response.
	ObjectChatCompletionMultiplex = "chat.completion.multiplex"

	// ObjectList marks the models listing envelope.
	ObjectList = "list"

	// ObjectModel marks a single model entry.
	ObjectModel = "model"
)

// ChatCompletionResponse is the body of a non-streaming completion.
type ChatCompletionResponse struct {
	// ID uniquely identifies the response (format "chatcmpl-…").
	ID string `json:"id"`

	// Object is always "chat.completion".
	Object string `json:"object"`

	// Created is the Unix timestamp of response creation.
	Created int64 `json:"created"`

	// Model is the provider-prefixed model identifier
	// (e.g. "copilot:gpt-4o").
	Model string `json:"model"`

	// Choices always has exactly one element.
	Choices []Choice `json:"choices"`

	// Usage is omitted when the provider reports no token counts.
	Usage *Usage `json:"usage,omitempty"`
}

// Choice is a single completion choice.
type Choice struct {
	// Index is always 0.
	Index int `json:"index"`

	// Message is the generated message.
	Message ResponseMessage `json:"message"`

	// FinishReason is why generation stopped; null when unknown.
	FinishReason *string `json:"finish_reason"`
}

// ResponseMessage is the assistant message inside a choice.
type ResponseMessage struct {
	// Role is always "assistant".
	Role string `json:"role"`

	// Content is the generated text.
	Content string `json:"content"`
}

// Usage reports token consumption when the provider supplies it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionChunk is a single SSE event in a streaming response.
// Every chunk of one stream shares the same ID and Created values.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// ChunkChoice is the single choice inside a streaming chunk.
type ChunkChoice struct {
	// Index is always 0.
	Index int `json:"index"`

	// Delta carries the incremental content.
	Delta Delta `json:"delta"`

	// FinishReason is set only on the final chunk; null otherwise.
	FinishReason *string `json:"finish_reason"`
}

// Delta is the incremental payload of a streaming chunk. Role appears
// only on the first chunk of a stream; content is omitted on role-only
// chunks but present (possibly empty) on every content chunk.
type Delta struct {
	Role    *string `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
}

// MultiplexResponse is the envelope for fan-out requests. It is a
// non-standard extension: one result per requested provider, in
// request order, plus a human-readable summary.
type MultiplexResponse struct {
	ID      string                    `json:"id"`
	Object  string                    `json:"object"`
	Created int64                     `json:"created"`
	Results []MultiplexProviderResult `json:"results"`
	Summary string                    `json:"summary"`
}

// MultiplexProviderResult is one provider's outcome in a multiplex
// response. Content and Model are present on success, Error on failure.
type MultiplexProviderResult struct {
	Provider   string  `json:"provider"`
	Model      *string `json:"model,omitempty"`
	Content    *string `json:"content,omitempty"`
	Error      *string `json:"error,omitempty"`
	DurationMS int64   `json:"duration_ms"`
}

// ModelsResponse is the body of GET /v1/models.
type ModelsResponse struct {
	// Object is always "list".
	Object string `json:"object"`

	// Data lists one entry per provider-prefixed model.
	Data []ModelObject `json:"data"`
}

// ModelObject is a single entry in the models listing.
type ModelObject struct {
	// ID is the provider-prefixed model identifier
	// (e.g. "copilot:gpt-4o"), or the bare provider name when the
	// provider advertises no model list.
	ID string `json:"id"`

	// Object is always "model".
	Object string `json:"object"`

	// OwnedBy is the provider name.
	OwnedBy string `json:"owned_by"`
}

// HealthResponse is the body of GET /health. Status is "ok" when at
// least one provider is ready, "degraded" otherwise. The providers map
// holds one of "ready", "not_ready", "not_found", or "error: <message>"
// per provider.
type HealthResponse struct {
	Status    string            `json:"status"`
	Providers map[string]string `json:"providers"`
}

// idCounter makes response IDs unique across rapid-fire and concurrent
// requests within the same second.
var idCounter atomic.Uint64

// NewResponseID generates a unique completion ID by combining the unix
// timestamp with a monotonically increasing sequence number.
func NewResponseID() string {
	ts := time.Now().Unix()
	seq := idCounter.Add(1) - 1
	return fmt.Sprintf("chatcmpl-%x%08x", ts, seq)
}

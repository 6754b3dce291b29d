// Package multiplex fans one prompt out to several providers
// concurrently and aggregates the per-provider outcomes.
package multiplex

import (
	"context"
	"fmt"
	"sync"
	"time"

	"embacle-hq/embacle/pkg/providers"
)

// Source yields provider adapters by kind. It is satisfied by
// providerfactory.Registry.
type Source interface {
	Get(kind providers.Kind) (providers.Provider, error)
}

// ProviderResponse is one provider's outcome in a multiplex dispatch.
// Exactly one of Content and Error is set.
type ProviderResponse struct {
	// Provider is the kind identifier (e.g. "claude_code").
	Provider string

	// Content is the completion text. Nil on failure.
	Content *string

	// Model is the model reported by the provider. Nil on failure.
	Model *string

	// Error is the failure message. Nil on success.
	Error *string

	// Duration is the wall-clock time of this provider's dispatch,
	// including adapter construction.
	Duration time.Duration
}

// Result aggregates a multiplex dispatch. Responses appear in the same
// order as the requested kinds.
type Result struct {
	Responses []ProviderResponse
	Summary   string
}

// Engine dispatches prompts to multiple providers concurrently.
type Engine struct {
	source Source
}

// NewEngine creates an engine over the given adapter source.
func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

// Execute runs the prompt against every kind concurrently. A failure in
// one provider never affects the others: each outcome is captured in
// its response slot, and the summary counts successes and failures.
func (e *Engine) Execute(ctx context.Context, messages []providers.ChatMessage, kinds []providers.Kind, temperature *float64, maxTokens *int) *Result {
	responses := make([]ProviderResponse, len(kinds))

	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(slot int, kind providers.Kind) {
			defer wg.Done()
			responses[slot] = e.dispatchSingle(ctx, kind, messages, temperature, maxTokens)
		}(i, kind)
	}
	wg.Wait()

	return &Result{
		Responses: responses,
		Summary:   buildSummary(responses),
	}
}

// dispatchSingle runs the prompt against one provider and captures the
// outcome. A panicking adapter is converted into an error outcome so
// the other dispatches still complete.
func (e *Engine) dispatchSingle(ctx context.Context, kind providers.Kind, messages []providers.ChatMessage, temperature *float64, maxTokens *int) (resp ProviderResponse) {
	start := time.Now()
	resp.Provider = kind.String()

	defer func() {
		resp.Duration = time.Since(start)
		if r := recover(); r != nil {
			resp.Content = nil
			resp.Model = nil
			message := fmt.Sprintf("provider dispatch panicked: %v", r)
			resp.Error = &message
		}
	}()

	adapter, err := e.source.Get(kind)
	if err != nil {
		message := err.Error()
		resp.Error = &message
		return resp
	}

	result, err := adapter.Complete(ctx, &providers.ChatRequest{
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		message := err.Error()
		resp.Error = &message
		return resp
	}

	resp.Content = &result.Content
	resp.Model = &result.Model
	return resp
}

func buildSummary(responses []ProviderResponse) string {
	total := len(responses)
	succeeded := 0
	for _, r := range responses {
		if r.Content != nil {
			succeeded++
		}
	}
	return fmt.Sprintf("%d succeeded, %d failed out of %d providers", succeeded, total-succeeded, total)
}

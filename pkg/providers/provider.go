package providers

import "context"

// Provider is the contract every CLI adapter implements. It presents a
// uniform chat-completion surface over a command-line tool with its own
// argument grammar, output format, and model vocabulary.
//
// All blocking methods accept a context.Context. Implementations must
// respect cancellation: a cancelled context kills the underlying
// subprocess and returns promptly.
//
// Example usage:
//
//	resp, err := p.Complete(ctx, &ChatRequest{
//	    Messages: []ChatMessage{{Role: RoleUser, Content: "Hello!"}},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Content)
type Provider interface {
	// Name returns the adapter identifier (e.g. "claude-code").
	Name() string

	// DisplayName returns the human-readable CLI name
	// (e.g. "Claude Code CLI").
	DisplayName() string

	// Kind returns the provider kind this adapter serves.
	Kind() Kind

	// Capabilities returns the adapter's static feature flags.
	// Probing the installed binary's version is the job of the
	// capability probe in pkg/runner.
	Capabilities() Features

	// DefaultModel returns the model used when a request does not
	// name one.
	DefaultModel() string

	// AvailableModels returns the models this adapter advertises.
	// The list may come from a discovery call at construction time
	// or from a static fallback; it is fixed for the adapter's
	// lifetime.
	AvailableModels() []string

	// Complete runs one full completion and returns the normalised
	// response.
	Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// CompleteStream runs a streaming completion. It returns a channel
	// that yields chunks as the CLI produces them and closes when the
	// stream ends. A mid-stream failure is delivered as a final chunk
	// with Err set.
	//
	// The stream is bound to ctx: cancelling it kills the child
	// process and closes the channel. Callers that abandon a stream
	// must cancel the context they passed in.
	CompleteStream(ctx context.Context, req *ChatRequest) (<-chan *StreamChunk, error)

	// HealthCheck probes the CLI with its version command. It returns
	// (true, nil) when the binary runs and exits zero, (false, nil)
	// when it exits non-zero, and an error when it cannot be spawned.
	HealthCheck(ctx context.Context) (bool, error)
}

// Package claude implements the Claude Code CLI provider adapter.
//
// This package provides an implementation of the providers.Provider
// interface over the `claude` command-line tool. It supports:
//
//   - Blocking completions via `claude -p --output-format json`
//   - Streaming completions via `--output-format stream-json`
//   - System prompts via `--system-prompt`
//   - Session resumption via `--resume`, keyed by request model
//   - Token usage reporting
//
// # Basic Usage
//
//	path, err := runner.ResolveBinary(providers.ClaudeCode)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	provider := claude.NewProvider(runner.NewConfig(path))
//
//	resp, err := provider.Complete(context.Background(), &providers.ChatRequest{
//	    Messages: []providers.ChatMessage{
//	        {Role: providers.RoleUser, Content: "Hello!"},
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(resp.Content)
//
// # Streaming
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	chunks, err := provider.CompleteStream(ctx, req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for chunk := range chunks {
//	    if chunk.Err != nil {
//	        log.Fatal(chunk.Err)
//	    }
//	    fmt.Print(chunk.Delta)
//	}
//
// # Request Transformation
//
// The adapter flattens the chat transcript for the CLI's single-prompt
// interface:
//
//   - The first system message becomes the `--system-prompt` argument
//   - Remaining messages are rendered as "[role]\ncontent" blocks and
//     joined into one prompt passed via `-p`
//   - MaxTokens is injected through the CLAUDE_CODE_MAX_OUTPUT_TOKENS
//     environment variable
//   - Temperature has no CLI equivalent and is ignored
//
// The `--model` flag always carries the configured model (or "opus");
// the request's model field selects the session cache entry used for
// `--resume`, not the underlying model.
//
// # Response Transformation
//
// The CLI's JSON envelope is normalised to the provider-agnostic shape:
//
//   - `result` becomes the response content
//   - `is_error: true` is surfaced as an external service error
//   - `usage.input_tokens`/`usage.output_tokens` map to prompt and
//     completion token counts
//   - `session_id` is cached for resumption when the request named a
//     model
//
// Streaming events are translated line by line: "assistant" events
// contribute text deltas, the "result" event terminates the stream, and
// all other event types (system, rate_limit_event, ...) pass through as
// empty keep-alive chunks.
package claude

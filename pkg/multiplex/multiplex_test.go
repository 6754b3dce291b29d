package multiplex

import (
	"context"
	"errors"
	"strings"
	"testing"

	"embacle-hq/embacle/pkg/providers"
)

type stubProvider struct {
	name     string
	kind     providers.Kind
	complete func(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error)
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) DisplayName() string { return s.name }

func (s *stubProvider) Kind() providers.Kind { return s.kind }

func (s *stubProvider) Capabilities() providers.Features { return 0 }

func (s *stubProvider) DefaultModel() string { return "stub-model" }

func (s *stubProvider) AvailableModels() []string { return []string{"stub-model"} }

func (s *stubProvider) HealthCheck(context.Context) (bool, error) { return true, nil }

func (s *stubProvider) Complete(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	return s.complete(ctx, req)
}

func (s *stubProvider) CompleteStream(context.Context, *providers.ChatRequest) (<-chan *providers.StreamChunk, error) {
	return nil, providers.NewInternalError(s.name, "streaming not stubbed")
}

type stubSource struct {
	adapters map[providers.Kind]providers.Provider
	errs     map[providers.Kind]error
}

func (s *stubSource) Get(kind providers.Kind) (providers.Provider, error) {
	if err, ok := s.errs[kind]; ok {
		return nil, err
	}
	if adapter, ok := s.adapters[kind]; ok {
		return adapter, nil
	}
	return nil, errors.New("no adapter configured")
}

func respond(content string) func(context.Context, *providers.ChatRequest) (*providers.ChatResponse, error) {
	return func(context.Context, *providers.ChatRequest) (*providers.ChatResponse, error) {
		return &providers.ChatResponse{Content: content, Model: "stub-model"}, nil
	}
}

func TestExecute_AllSucceed(t *testing.T) {
	source := &stubSource{adapters: map[providers.Kind]providers.Provider{
		providers.ClaudeCode: &stubProvider{name: "claude-code", kind: providers.ClaudeCode, complete: respond("from claude")},
		providers.OpenCode:   &stubProvider{name: "opencode", kind: providers.OpenCode, complete: respond("from opencode")},
	}}

	result := NewEngine(source).Execute(context.Background(),
		[]providers.ChatMessage{{Role: providers.RoleUser, Content: "Hi"}},
		[]providers.Kind{providers.ClaudeCode, providers.OpenCode}, nil, nil)

	if len(result.Responses) != 2 {
		t.Fatalf("Expected 2 responses, got %d", len(result.Responses))
	}
	if result.Summary != "2 succeeded, 0 failed out of 2 providers" {
		t.Errorf("Unexpected summary: %q", result.Summary)
	}

	first := result.Responses[0]
	if first.Provider != "claude_code" {
		t.Errorf("Expected responses in request order, got %q first", first.Provider)
	}
	if first.Content == nil || *first.Content != "from claude" {
		t.Errorf("Unexpected first content: %v", first.Content)
	}
	if first.Model == nil || *first.Model != "stub-model" {
		t.Errorf("Unexpected first model: %v", first.Model)
	}
	if first.Error != nil {
		t.Errorf("Expected no error, got %q", *first.Error)
	}

	second := result.Responses[1]
	if second.Provider != "opencode" || second.Content == nil || *second.Content != "from opencode" {
		t.Errorf("Unexpected second response: %+v", second)
	}
}

func TestExecute_PartialFailure(t *testing.T) {
	failing := &stubProvider{name: "copilot", kind: providers.Copilot,
		complete: func(context.Context, *providers.ChatRequest) (*providers.ChatResponse, error) {
			return nil, providers.NewExternalServiceError("copilot", "copilot exited with code 2: not logged in")
		}}
	source := &stubSource{
		adapters: map[providers.Kind]providers.Provider{
			providers.ClaudeCode: &stubProvider{name: "claude-code", kind: providers.ClaudeCode, complete: respond("ok")},
			providers.Copilot:    failing,
		},
		errs: map[providers.Kind]error{
			providers.CursorAgent: providers.NewBinaryNotFoundError("cursor_agent", "cursor-agent"),
		},
	}

	result := NewEngine(source).Execute(context.Background(),
		[]providers.ChatMessage{{Role: providers.RoleUser, Content: "Hi"}},
		[]providers.Kind{providers.ClaudeCode, providers.Copilot, providers.CursorAgent}, nil, nil)

	if result.Summary != "1 succeeded, 2 failed out of 3 providers" {
		t.Errorf("Unexpected summary: %q", result.Summary)
	}

	if result.Responses[0].Error != nil {
		t.Errorf("Expected claude to succeed, got error %q", *result.Responses[0].Error)
	}
	if result.Responses[1].Error == nil || !strings.Contains(*result.Responses[1].Error, "not logged in") {
		t.Errorf("Expected copilot failure detail, got %+v", result.Responses[1])
	}
	if result.Responses[1].Content != nil {
		t.Error("Expected no content on failure")
	}
	if result.Responses[2].Error == nil {
		t.Error("Expected construction failure to surface as an error outcome")
	}
}

func TestExecute_RequestPlumbing(t *testing.T) {
	var got *providers.ChatRequest
	source := &stubSource{adapters: map[providers.Kind]providers.Provider{
		providers.ClaudeCode: &stubProvider{name: "claude-code", kind: providers.ClaudeCode,
			complete: func(_ context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
				got = req
				return &providers.ChatResponse{Content: "ok", Model: "stub-model"}, nil
			}},
	}}

	temperature := 0.7
	maxTokens := 256
	messages := []providers.ChatMessage{
		{Role: providers.RoleSystem, Content: "Be brief."},
		{Role: providers.RoleUser, Content: "Hi"},
	}
	NewEngine(source).Execute(context.Background(), messages,
		[]providers.Kind{providers.ClaudeCode}, &temperature, &maxTokens)

	if got == nil {
		t.Fatal("Expected the provider to receive a request")
	}
	if len(got.Messages) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(got.Messages))
	}
	if got.Temperature == nil || *got.Temperature != 0.7 {
		t.Errorf("Expected temperature 0.7, got %v", got.Temperature)
	}
	if got.MaxTokens == nil || *got.MaxTokens != 256 {
		t.Errorf("Expected max tokens 256, got %v", got.MaxTokens)
	}
	if got.Model != nil {
		t.Errorf("Expected no model in multiplex request, got %v", got.Model)
	}
}

func TestExecute_PanicRecovery(t *testing.T) {
	source := &stubSource{adapters: map[providers.Kind]providers.Provider{
		providers.ClaudeCode: &stubProvider{name: "claude-code", kind: providers.ClaudeCode,
			complete: func(context.Context, *providers.ChatRequest) (*providers.ChatResponse, error) {
				panic("adapter bug")
			}},
		providers.OpenCode: &stubProvider{name: "opencode", kind: providers.OpenCode, complete: respond("still fine")},
	}}

	result := NewEngine(source).Execute(context.Background(),
		[]providers.ChatMessage{{Role: providers.RoleUser, Content: "Hi"}},
		[]providers.Kind{providers.ClaudeCode, providers.OpenCode}, nil, nil)

	if result.Responses[0].Error == nil || !strings.Contains(*result.Responses[0].Error, "adapter bug") {
		t.Errorf("Expected panic to surface as error outcome, got %+v", result.Responses[0])
	}
	if result.Responses[1].Content == nil {
		t.Error("Expected the other provider to complete despite the panic")
	}
	if result.Summary != "1 succeeded, 1 failed out of 2 providers" {
		t.Errorf("Unexpected summary: %q", result.Summary)
	}
}

func TestExecute_NoProviders(t *testing.T) {
	result := NewEngine(&stubSource{}).Execute(context.Background(),
		[]providers.ChatMessage{{Role: providers.RoleUser, Content: "Hi"}},
		nil, nil, nil)

	if len(result.Responses) != 0 {
		t.Errorf("Expected no responses, got %d", len(result.Responses))
	}
	if result.Summary != "0 succeeded, 0 failed out of 0 providers" {
		t.Errorf("Unexpected summary: %q", result.Summary)
	}
}

package types

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"
)

func TestNewResponseIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^chatcmpl-[0-9a-f]+$`)

	id := NewResponseID()
	if !pattern.MatchString(id) {
		t.Errorf("Response ID %q does not match expected format", id)
	}
}

func TestNewResponseIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewResponseID()
		if seen[id] {
			t.Fatalf("Duplicate response ID: %s", id)
		}
		seen[id] = true
	}
}

func TestChoiceSerializesNullFinishReason(t *testing.T) {
	choice := Choice{
		Index:   0,
		Message: ResponseMessage{Role: "assistant", Content: "hi"},
	}

	data, err := json.Marshal(choice)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"finish_reason":null`) {
		t.Errorf("Expected explicit null finish_reason, got %s", data)
	}
}

func TestResponseOmitsNilUsage(t *testing.T) {
	resp := ChatCompletionResponse{
		ID:      "chatcmpl-test",
		Object:  ObjectChatCompletion,
		Created: 1700000000,
		Model:   "copilot:gpt-4o",
		Choices: []Choice{},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "usage") {
		t.Errorf("Expected usage omitted when nil, got %s", data)
	}
}

func TestDeltaSerialization(t *testing.T) {
	role := "assistant"
	empty := ""
	content := "hello"

	tests := []struct {
		name  string
		delta Delta
		want  string
	}{
		{
			name:  "role only",
			delta: Delta{Role: &role},
			want:  `{"role":"assistant"}`,
		},
		{
			name:  "empty content kept",
			delta: Delta{Role: &role, Content: &empty},
			want:  `{"role":"assistant","content":""}`,
		},
		{
			name:  "content only",
			delta: Delta{Content: &content},
			want:  `{"content":"hello"}`,
		},
		{
			name:  "both nil collapses to empty object",
			delta: Delta{},
			want:  `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.delta)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, data)
			}
		})
	}
}

func TestChunkChoiceSerializesNullFinishReason(t *testing.T) {
	role := "assistant"
	chunk := ChunkChoice{Index: 0, Delta: Delta{Role: &role}}

	data, err := json.Marshal(chunk)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"finish_reason":null`) {
		t.Errorf("Expected explicit null finish_reason, got %s", data)
	}
}

func TestMultiplexProviderResultOmitsNilFields(t *testing.T) {
	result := MultiplexProviderResult{
		Provider:   "claude_code",
		DurationMS: 1500,
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got := string(data)
	for _, field := range []string{"model", "content", "error"} {
		if strings.Contains(got, field) {
			t.Errorf("Expected %q omitted when nil, got %s", field, got)
		}
	}
	if !strings.Contains(got, `"duration_ms":1500`) {
		t.Errorf("Expected duration_ms present, got %s", got)
	}
}

func TestMultiplexProviderResultWithError(t *testing.T) {
	errMsg := "binary not found"
	result := MultiplexProviderResult{
		Provider:   "opencode",
		Error:      &errMsg,
		DurationMS: 20,
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got := string(data)
	if !strings.Contains(got, `"error":"binary not found"`) {
		t.Errorf("Expected error message, got %s", got)
	}
	if strings.Contains(got, "content") {
		t.Errorf("Expected content omitted on failure, got %s", got)
	}
}

func TestErrorDetailOmitsEmptyParamAndCode(t *testing.T) {
	resp := NewErrorResponse(ErrorTypeServer, "boom")

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got := string(data)
	if strings.Contains(got, "param") || strings.Contains(got, "code") {
		t.Errorf("Expected param and code omitted, got %s", got)
	}
	if !strings.Contains(got, `"type":"server_error"`) {
		t.Errorf("Expected server_error type, got %s", got)
	}
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		errorType string
		want      int
	}{
		{ErrorTypeInvalidRequest, 400},
		{ErrorTypeAuthentication, 401},
		{ErrorTypeExternalService, 502},
		{ErrorTypeProviderNotAvailable, 503},
		{ErrorTypeTimeout, 504},
		{ErrorTypeServer, 500},
		{"something_else", 500},
	}

	for _, tt := range tests {
		t.Run(tt.errorType, func(t *testing.T) {
			resp := NewErrorResponse(tt.errorType, "msg")
			if got := resp.Error.HTTPStatusCode(); got != tt.want {
				t.Errorf("Expected status %d for %s, got %d", tt.want, tt.errorType, got)
			}
		})
	}
}

func TestNewInvalidRequestErrorCarriesParam(t *testing.T) {
	resp := NewInvalidRequestError("Model array must not be empty", "model")

	if resp.Error.Type != ErrorTypeInvalidRequest {
		t.Errorf("Expected invalid_request_error, got %s", resp.Error.Type)
	}
	if resp.Error.Param != "model" {
		t.Errorf("Expected param model, got %q", resp.Error.Param)
	}
	if resp.Error.HTTPStatusCode() != 400 {
		t.Errorf("Expected 400, got %d", resp.Error.HTTPStatusCode())
	}
}

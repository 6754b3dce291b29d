package proxy

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/proxy/types"
)

func TestErrorTypeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "binary not found",
			err:  providers.NewBinaryNotFoundError("copilot", "copilot"),
			want: types.ErrorTypeProviderNotAvailable,
		},
		{
			name: "auth failure",
			err:  providers.NewAuthFailureError("claude_code", "not logged in"),
			want: types.ErrorTypeAuthentication,
		},
		{
			name: "timeout",
			err:  providers.NewTimeoutError("opencode", 30*time.Second),
			want: types.ErrorTypeTimeout,
		},
		{
			name: "external service",
			err:  providers.NewExternalServiceError("cursor_agent", "exit status 1"),
			want: types.ErrorTypeExternalService,
		},
		{
			name: "config",
			err:  providers.NewConfigError("model", "unknown model"),
			want: types.ErrorTypeInvalidRequest,
		},
		{
			name: "internal",
			err:  providers.NewInternalError("copilot", "spawn failed"),
			want: types.ErrorTypeServer,
		},
		{
			name: "plain error",
			err:  errors.New("something broke"),
			want: types.ErrorTypeServer,
		},
		{
			name: "wrapped binary not found",
			err:  fmt.Errorf("dispatch: %w", providers.NewBinaryNotFoundError("copilot", "copilot")),
			want: types.ErrorTypeProviderNotAvailable,
		},
		{
			name: "wrapped timeout",
			err:  fmt.Errorf("complete: %w", providers.NewTimeoutError("", 5*time.Second)),
			want: types.ErrorTypeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorTypeFor(tt.err); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestErrorResponseForStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"binary not found", providers.NewBinaryNotFoundError("copilot", "copilot"), 503},
		{"auth failure", providers.NewAuthFailureError("copilot", "no token"), 401},
		{"timeout", providers.NewTimeoutError("copilot", time.Second), 504},
		{"external service", providers.NewExternalServiceError("copilot", "crash"), 502},
		{"config", providers.NewConfigError("temperature", "out of range"), 400},
		{"internal", providers.NewInternalError("copilot", "broken pipe"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ErrorResponseFor(tt.err)
			if got := resp.Error.HTTPStatusCode(); got != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, got)
			}
			if resp.Error.Message != tt.err.Error() {
				t.Errorf("Expected message %q, got %q", tt.err.Error(), resp.Error.Message)
			}
		})
	}
}

func TestErrorResponseForPreservesMessage(t *testing.T) {
	err := providers.NewBinaryNotFoundError("claude_code", "claude")
	resp := ErrorResponseFor(err)

	want := `provider "claude_code" binary "claude" not found in PATH`
	if resp.Error.Message != want {
		t.Errorf("Expected %q, got %q", want, resp.Error.Message)
	}
	if resp.Error.Type != types.ErrorTypeProviderNotAvailable {
		t.Errorf("Expected provider_not_available, got %s", resp.Error.Type)
	}
}

package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		message string
		want    string
	}{
		{
			name:    "with field",
			field:   "server.port",
			message: "must be positive",
			want:    "config error in server.port: must be positive",
		},
		{
			name:    "without field",
			field:   "",
			message: "failed to load config",
			want:    "config error: failed to load config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfigError(tt.field, tt.message)
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestCommandError(t *testing.T) {
	inner := fmt.Errorf("boom")
	err := NewCommandError("serve", inner)

	want := "command serve failed: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRecoveryCatchesPanic(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler bug")
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}

	detail := decodeAuthError(t, rec)
	if detail.Type != "server_error" {
		t.Errorf("Expected server_error, got %q", detail.Type)
	}
	if detail.Message != "An internal error occurred. Please try again later." {
		t.Errorf("Unexpected message: %q", detail.Message)
	}
}

func TestRecoveryPassesThroughNormally(t *testing.T) {
	handler := Recovery(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoggingPreservesStatusAndBody(t *testing.T) {
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("Expected 418, got %d", rec.Code)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("Unexpected body: %q", rec.Body.String())
	}
}

func TestLoggingDefaultsToOK(t *testing.T) {
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("implicit 200"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected implicit 200, got %d", rec.Code)
	}
}

func TestLoggingSetsStartTime(t *testing.T) {
	var sawStart bool
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawStart = !GetStartTime(r.Context()).IsZero()
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !sawStart {
		t.Error("Expected start time in the request context")
	}
}

func TestResponseWriterRecordsFirstStatusOnly(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("Expected first status kept, got %d", rw.statusCode)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 written through, got %d", rec.Code)
	}
}

// Streaming handlers flush through the logging wrapper, so it must
// forward Flush to the underlying writer.
func TestLoggingForwardsFlush(t *testing.T) {
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("Wrapped writer does not implement http.Flusher")
		}
		w.Write([]byte("data: chunk\n\n"))
		flusher.Flush()
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !rec.Flushed {
		t.Error("Expected Flush to reach the underlying writer")
	}
}

package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"embacle-hq/embacle/pkg/proxy/types"
)

// WriteJSON writes data as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteError writes an OpenAI-compatible error envelope with the
// status code implied by its error type.
func WriteError(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSON(w, errResp.Error.HTTPStatusCode(), errResp)
}

// SetSSEHeaders sets the response headers for Server-Sent Events
// streaming. Call before the first write.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// WriteSSEEvent writes one event in SSE framing ("data: <json>\n\n")
// and flushes so the client sees it immediately.
func WriteSSEEvent(w http.ResponseWriter, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE event: %w", err)
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write SSE event: %w", err)
	}

	flush(w)
	return nil
}

// WriteSSEError writes a mid-stream failure as an SSE error event:
//
//	data: {"error":{"message":"…","type":"stream_error"}}
func WriteSSEError(w http.ResponseWriter, message string) error {
	payload := map[string]interface{}{
		"error": map[string]string{
			"message": message,
			"type":    types.ErrorTypeStream,
		},
	}
	return WriteSSEEvent(w, payload)
}

// WriteSSEDone writes the literal "[DONE]" sentinel that terminates an
// OpenAI-style stream.
func WriteSSEDone(w http.ResponseWriter) error {
	if _, err := fmt.Fprint(w, "data: [DONE]\n\n"); err != nil {
		return fmt.Errorf("failed to write SSE done marker: %w", err)
	}

	flush(w)
	return nil
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

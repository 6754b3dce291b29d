package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"embacle-hq/embacle/pkg/proxy/types"
)

// MaxRequestBodySize caps the request body at 10MB to prevent memory
// exhaustion from oversized payloads.
const MaxRequestBodySize = 10 * 1024 * 1024

// ParseChatCompletionRequest reads and validates a chat completion
// request body. A failure is returned as a *types.ValidationError (for
// field violations) or a generic error (for malformed JSON); both map
// to a 400 invalid_request_error envelope.
func ParseChatCompletionRequest(r *http.Request) (*types.ChatCompletionRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if len(body) > MaxRequestBodySize {
		return nil, fmt.Errorf("request body exceeds maximum size of %d bytes", MaxRequestBodySize)
	}

	var req types.ChatCompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON: %v", err)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return &req, nil
}

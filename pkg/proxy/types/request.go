package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MaxTemperature is the OpenAI-specified upper bound for temperature.
const MaxTemperature = 2.0

// ModelField holds the request's model value, which is either a single
// string (standard OpenAI) or an array of strings (multiplex extension).
//
// Exactly one of Single and Multiple is meaningful: IsArray reports
// which. A bare JSON string populates Single; a JSON array populates
// Multiple, even when it is empty or has one element.
type ModelField struct {
	// Single is the model string when the field was not an array.
	Single string

	// Multiple is the model list when the field was an array.
	Multiple []string

	// isArray records which JSON form the request used.
	isArray bool
}

// UnmarshalJSON accepts either a JSON string or an array of strings.
// JSON null is rejected: unmarshalling null into a string is a no-op in
// encoding/json, which would silently yield an empty model.
func (m *ModelField) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return errors.New("model must be a string or an array of strings")
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		m.Single = single
		m.Multiple = nil
		m.isArray = false
		return nil
	}

	var multiple []string
	if err := json.Unmarshal(data, &multiple); err == nil {
		m.Single = ""
		m.Multiple = multiple
		m.isArray = true
		return nil
	}

	return errors.New("model must be a string or an array of strings")
}

// IsArray reports whether the request supplied the model as an array.
func (m ModelField) IsArray() bool {
	return m.isArray
}

// Message is a single conversation message in a chat completion request.
type Message struct {
	// Role is "system", "user", or "assistant". Unknown roles are
	// accepted here and mapped to "user" by the handler.
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// ChatCompletionRequest is the body of POST /v1/chat/completions.
//
// The model field accepts a single string or an array of strings; an
// array with more than one element selects multiplex mode. Each model
// string may carry a provider prefix (e.g. "copilot:gpt-4o").
type ChatCompletionRequest struct {
	// Model identifies the provider and model to use.
	Model ModelField `json:"model"`

	// Messages is the conversation history.
	Messages []Message `json:"messages"`

	// Stream requests a Server-Sent Events response.
	Stream bool `json:"stream"`

	// Temperature controls response randomness; valid range [0.0, 2.0].
	Temperature *float64 `json:"temperature"`

	// MaxTokens caps the number of tokens to generate; must be positive.
	MaxTokens *int `json:"max_tokens"`
}

// ValidationError reports a rejected request field. The message is
// returned verbatim in the error envelope.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks parameter ranges and the message list. It does not
// inspect the model field; model dispatch has its own rules in the
// handler.
func (r *ChatCompletionRequest) Validate() error {
	if r.Temperature != nil {
		t := *r.Temperature
		if t < 0.0 || t > MaxTemperature {
			return &ValidationError{
				Field:   "temperature",
				Message: fmt.Sprintf("temperature must be between 0.0 and %v", MaxTemperature),
			}
		}
	}

	if r.MaxTokens != nil && *r.MaxTokens <= 0 {
		return &ValidationError{
			Field:   "max_tokens",
			Message: "max_tokens must be greater than 0",
		}
	}

	if len(r.Messages) == 0 {
		return &ValidationError{
			Field:   "messages",
			Message: "Messages array must not be empty",
		}
	}

	return nil
}

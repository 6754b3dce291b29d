package types

import "net/http"

// ErrorResponse is the OpenAI-compatible error envelope returned for
// every error condition, so OpenAI SDKs and tools can parse failures
// uniformly.
type ErrorResponse struct {
	// Error contains the error details.
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the error message and classification.
type ErrorDetail struct {
	// Message is a human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error; see the ErrorType constants.
	Type string `json:"type"`

	// Param names the offending request parameter, when known.
	Param string `json:"param,omitempty"`

	// Code is a machine-readable error code, when applicable.
	Code string `json:"code,omitempty"`
}

// Error type strings carried on the wire.
const (
	// ErrorTypeInvalidRequest indicates a client-side error (400).
	ErrorTypeInvalidRequest = "invalid_request_error"

	// ErrorTypeAuthentication indicates an authentication failure (401).
	ErrorTypeAuthentication = "authentication_error"

	// ErrorTypeProviderNotAvailable indicates the provider's CLI binary
	// is not installed (503).
	ErrorTypeProviderNotAvailable = "provider_not_available"

	// ErrorTypeTimeout indicates the provider subprocess exceeded its
	// time budget (504).
	ErrorTypeTimeout = "timeout_error"

	// ErrorTypeExternalService indicates the provider CLI itself
	// reported a failure (502).
	ErrorTypeExternalService = "external_service_error"

	// ErrorTypeServer indicates an internal gateway error (500).
	ErrorTypeServer = "server_error"

	// ErrorTypeStream marks mid-stream failures; it appears only in
	// SSE error events and never maps to an HTTP status.
	ErrorTypeStream = "stream_error"
)

// NewErrorResponse builds an error envelope with the given type and
// message.
func NewErrorResponse(errorType, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
		},
	}
}

// NewInvalidRequestError builds a 400 envelope naming the offending
// parameter.
func NewInvalidRequestError(message, param string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    ErrorTypeInvalidRequest,
			Param:   param,
		},
	}
}

// NewServerError builds a 500 envelope.
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(ErrorTypeServer, message)
}

// HTTPStatusCode returns the HTTP status for the error type.
func (e *ErrorDetail) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeExternalService:
		return http.StatusBadGateway
	case ErrorTypeProviderNotAvailable:
		return http.StatusServiceUnavailable
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeServer:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

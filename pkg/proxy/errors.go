package proxy

import (
	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/proxy/types"
)

// ErrorResponseFor maps a provider error to an OpenAI error envelope.
// The error taxonomy determines both the wire-level type string and,
// through it, the HTTP status:
//
//	BinaryNotFound  → 503 provider_not_available
//	AuthFailure     → 401 authentication_error
//	Timeout         → 504 timeout_error
//	ExternalService → 502 external_service_error
//	Config          → 400 invalid_request_error
//	anything else   → 500 server_error
func ErrorResponseFor(err error) *types.ErrorResponse {
	return types.NewErrorResponse(ErrorTypeFor(err), err.Error())
}

// ErrorTypeFor returns the wire-level error type string for a provider
// error.
func ErrorTypeFor(err error) string {
	switch {
	case providers.IsBinaryNotFound(err):
		return types.ErrorTypeProviderNotAvailable
	case providers.IsAuthFailure(err):
		return types.ErrorTypeAuthentication
	case providers.IsTimeout(err):
		return types.ErrorTypeTimeout
	case providers.IsExternalService(err):
		return types.ErrorTypeExternalService
	case providers.IsConfig(err):
		return types.ErrorTypeInvalidRequest
	default:
		return types.ErrorTypeServer
	}
}

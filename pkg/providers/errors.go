package providers

import (
	"errors"
	"fmt"
	"time"
)

// InternalError represents a failure inside the gateway itself: spawn
// failures, I/O errors, undecodable output, malformed JSON.
type InternalError struct {
	// Provider is the provider involved, if any ("" otherwise)
	Provider string

	// Message describes the failure
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("provider %q internal error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *InternalError) Unwrap() error {
	return e.Cause
}

// ExternalServiceError represents a failure reported by the CLI itself:
// a non-zero exit code, or a response body with an error flag set.
type ExternalServiceError struct {
	// Provider is the provider whose CLI failed
	Provider string

	// Message combines the exit context with the CLI's own output
	Message string
}

// Error implements the error interface.
func (e *ExternalServiceError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("external service error: %s", e.Message)
}

// BinaryNotFoundError means a provider's CLI binary could not be
// resolved from the environment override or the process PATH.
type BinaryNotFoundError struct {
	// Provider is the provider whose binary is missing
	Provider string

	// Binary is the executable name that was searched for
	Binary string
}

// Error implements the error interface.
func (e *BinaryNotFoundError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("provider %q binary %q not found in PATH", e.Provider, e.Binary)
	}
	return fmt.Sprintf("binary %q not found in PATH", e.Binary)
}

// AuthFailureError means the provider's CLI is installed but not
// authenticated, as determined by adapter or readiness logic.
type AuthFailureError struct {
	// Provider is the provider that is not authenticated
	Provider string

	// Message describes the auth failure
	Message string
}

// Error implements the error interface.
func (e *AuthFailureError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// TimeoutError means a subprocess exceeded its wall-clock budget and
// was killed.
type TimeoutError struct {
	// Provider is the provider whose CLI timed out ("" when the
	// timeout happened below the adapter layer)
	Provider string

	// Timeout is the budget that was exceeded
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("provider %q timed out after %s", e.Provider, e.Timeout)
	}
	return fmt.Sprintf("command timed out after %s", e.Timeout)
}

// ConfigError represents invalid caller input: unparseable addresses,
// out-of-range parameters, empty message lists.
type ConfigError struct {
	// Field is the offending field, if known
	Field string

	// Message describes what is invalid
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// NewInternalError creates an InternalError without a cause.
func NewInternalError(provider, message string) *InternalError {
	return &InternalError{Provider: provider, Message: message}
}

// WrapInternalError creates an InternalError wrapping a cause.
func WrapInternalError(provider, message string, cause error) *InternalError {
	return &InternalError{Provider: provider, Message: message, Cause: cause}
}

// NewExternalServiceError creates an ExternalServiceError.
func NewExternalServiceError(provider, message string) *ExternalServiceError {
	return &ExternalServiceError{Provider: provider, Message: message}
}

// NewBinaryNotFoundError creates a BinaryNotFoundError.
func NewBinaryNotFoundError(provider, binary string) *BinaryNotFoundError {
	return &BinaryNotFoundError{Provider: provider, Binary: binary}
}

// NewAuthFailureError creates an AuthFailureError.
func NewAuthFailureError(provider, message string) *AuthFailureError {
	return &AuthFailureError{Provider: provider, Message: message}
}

// NewTimeoutError creates a TimeoutError.
func NewTimeoutError(provider string, timeout time.Duration) *TimeoutError {
	return &TimeoutError{Provider: provider, Timeout: timeout}
}

// NewConfigError creates a ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// IsInternal reports whether err is (or wraps) an InternalError.
func IsInternal(err error) bool {
	var e *InternalError
	return errors.As(err, &e)
}

// IsExternalService reports whether err is (or wraps) an ExternalServiceError.
func IsExternalService(err error) bool {
	var e *ExternalServiceError
	return errors.As(err, &e)
}

// IsBinaryNotFound reports whether err is (or wraps) a BinaryNotFoundError.
func IsBinaryNotFound(err error) bool {
	var e *BinaryNotFoundError
	return errors.As(err, &e)
}

// IsAuthFailure reports whether err is (or wraps) an AuthFailureError.
func IsAuthFailure(err error) bool {
	var e *AuthFailureError
	return errors.As(err, &e)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var e *TimeoutError
	return errors.As(err, &e)
}

// IsConfig reports whether err is (or wraps) a ConfigError.
func IsConfig(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

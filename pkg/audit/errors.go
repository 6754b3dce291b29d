package audit

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Storage.Get when no record has the
// requested id.
var ErrNotFound = errors.New("audit record not found")

// StorageError represents an error from the storage backend.
type StorageError struct {
	// Backend is the storage backend name ("sqlite3", "sqlite")
	Backend string

	// Operation is the operation that failed ("store", "list", ...)
	Operation string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

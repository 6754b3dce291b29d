package audit

import (
	"context"
	"time"
)

// Surface identifies which gateway front handled the request.
const (
	SurfaceREST = "rest"
	SurfaceMCP  = "mcp"
)

// Kind identifies the request shape.
const (
	KindSingle    = "single"
	KindMultiplex = "multiplex"
	KindStream    = "stream"
)

// Status identifies how the request ended.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Record is the audit trail entry for one brokered request.
// It captures metadata only; prompt and response text is never stored.
type Record struct {
	// ID is a UUID assigned by the recorder if empty.
	ID string `json:"id"`

	// RequestID is the gateway request id this record belongs to.
	RequestID string `json:"request_id"`

	// Time is when the record was created. The recorder fills it if zero.
	Time time.Time `json:"time"`

	// Surface is SurfaceREST or SurfaceMCP.
	Surface string `json:"surface"`

	// Kind is KindSingle, KindMultiplex, or KindStream.
	Kind string `json:"kind"`

	// Provider is the provider that served the request. For multiplex
	// requests one record is written per fanned-out provider.
	Provider string `json:"provider"`

	// Model is the model identifier sent to the CLI ("" when defaulted).
	Model string `json:"model"`

	// PromptChars is the combined length of the assembled prompt.
	PromptChars int64 `json:"prompt_chars"`

	// Token usage as reported by the CLI (zero when unreported).
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`

	// DurationMs is the wall-clock request duration in milliseconds.
	DurationMs int64 `json:"duration_ms"`

	// Status is StatusOK or StatusError.
	Status string `json:"status"`

	// ErrorKind is the wire-level error type for failed requests
	// (e.g. "timeout_error"), "" on success.
	ErrorKind string `json:"error_kind,omitempty"`

	// Error is the error message for failed requests, "" on success.
	Error string `json:"error,omitempty"`
}

// Query defines filter parameters for listing audit records.
// Zero-valued fields are ignored.
type Query struct {
	// Since and Until bound Record.Time inclusively.
	Since *time.Time `json:"since,omitempty"`
	Until *time.Time `json:"until,omitempty"`

	// Exact-match filters.
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Surface  string `json:"surface,omitempty"`
	Status   string `json:"status,omitempty"`

	// Limit caps the number of records returned. Default: 100.
	Limit int `json:"limit,omitempty"`

	// Offset skips the first N matching records.
	Offset int `json:"offset,omitempty"`

	// Oldest returns records oldest-first instead of newest-first.
	Oldest bool `json:"oldest,omitempty"`
}

// Storage is the persistence interface for audit records.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, rec *Record) error

	// List retrieves records matching the query, newest first unless
	// q.Oldest is set. A nil query lists the most recent records.
	List(ctx context.Context, q *Query) ([]*Record, error)

	// Get retrieves a single record by id. Returns ErrNotFound when no
	// record has that id.
	Get(ctx context.Context, id string) (*Record, error)

	// Count returns the number of records matching the query.
	// A nil query counts everything.
	Count(ctx context.Context, q *Query) (int64, error)

	// DeleteBefore removes records created at or before cutoff and
	// returns the number removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases resources held by the backend.
	Close() error
}

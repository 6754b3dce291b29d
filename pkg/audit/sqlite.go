package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Registers the "sqlite3" driver (CGO).
	_ "github.com/mattn/go-sqlite3"
	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Driver selects the database/sql driver.
	// Options: "sqlite3" (mattn, CGO), "sqlite" (modernc, pure Go)
	// Default: "sqlite3"
	Driver string

	// Path is the database file path.
	// Default: "data/audit.db"
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables write-ahead logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is how long a connection waits on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Driver:       "sqlite3",
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens (creating if necessary) the audit database and
// initializes its schema.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = "sqlite3"
	}
	if config.Path == "" {
		config.Path = "data/audit.db"
	}
	if config.MaxOpenConns == 0 {
		config.MaxOpenConns = 10
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 5
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}

	switch config.Driver {
	case "sqlite3", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported sqlite driver %q (valid: sqlite3, sqlite)", config.Driver)
	}

	logger := slog.Default().With("component", "audit.storage")

	// Create the parent directory for plain file paths so a fresh
	// deployment does not fail on the default data/ location.
	if !strings.HasPrefix(config.Path, "file:") && config.Path != ":memory:" {
		if dir := filepath.Dir(config.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, NewStorageError(config.Driver, "mkdir", err)
			}
		}
	}

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, NewStorageError(config.Driver, "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("audit storage initialized",
		"driver", config.Driver,
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize applies pragmas, creates the schema, and verifies the
// schema version.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		// The pragma returns the resulting mode as a row; QueryRow
		// keeps both drivers happy.
		var mode string
		if err := s.db.QueryRow("PRAGMA journal_mode=WAL;").Scan(&mode); err != nil {
			return NewStorageError(s.config.Driver, "enable_wal", err)
		}
		s.logger.Debug("journal mode set", "mode", mode)
	}

	var timeoutMs int64
	pragma := fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())
	if err := s.db.QueryRow(pragma).Scan(&timeoutMs); err != nil {
		return NewStorageError(s.config.Driver, "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError(s.config.Driver, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion, time.Now().UnixMilli()); err != nil {
		return NewStorageError(s.config.Driver, "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError(s.config.Driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError(s.config.Driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists an audit record.
func (s *SQLiteStorage) Store(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO audit (
			id, request_id, recorded_at,
			surface, kind, provider, model,
			prompt_chars, prompt_tokens, completion_tokens, total_tokens, duration_ms,
			status, error_kind, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.RequestID, rec.Time.UnixMilli(),
		rec.Surface, rec.Kind, rec.Provider, nullable(rec.Model),
		rec.PromptChars, rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens, rec.DurationMs,
		rec.Status, nullable(rec.ErrorKind), nullable(rec.Error),
	)
	if err != nil {
		return NewStorageError(s.config.Driver, "store", err)
	}

	return nil
}

// List retrieves records matching the query, newest first unless
// q.Oldest is set.
func (s *SQLiteStorage) List(ctx context.Context, q *Query) ([]*Record, error) {
	if q == nil {
		q = &Query{}
	}

	where, args := buildWhere(q)

	sqlQuery := "SELECT " + recordColumns + " FROM audit"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	order := "DESC"
	if q.Oldest {
		order = "ASC"
	}
	sqlQuery += " ORDER BY recorded_at " + order

	limit := 100
	if q.Limit > 0 {
		limit = q.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if q.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "list", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, NewStorageError(s.config.Driver, "scan", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(s.config.Driver, "list", err)
	}

	return records, nil
}

// Get retrieves a single record by id.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (*Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+recordColumns+" FROM audit WHERE id = ?", id)
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "get", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, NewStorageError(s.config.Driver, "get", err)
		}
		return nil, ErrNotFound
	}

	rec, err := scanRecord(rows)
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "scan", err)
	}

	return rec, nil
}

// Count returns the number of records matching the query.
func (s *SQLiteStorage) Count(ctx context.Context, q *Query) (int64, error) {
	if q == nil {
		q = &Query{}
	}

	where, args := buildWhere(q)
	sqlQuery := "SELECT COUNT(*) FROM audit"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, NewStorageError(s.config.Driver, "count", err)
	}

	return count, nil
}

// DeleteBefore removes records created at or before cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM audit WHERE recorded_at <= ?", cutoff.UnixMilli())
	if err != nil {
		return 0, NewStorageError(s.config.Driver, "delete", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, NewStorageError(s.config.Driver, "delete", err)
	}

	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStorageError(s.config.Driver, "close", err)
	}
	s.logger.Debug("audit storage closed")
	return nil
}

// recordColumns is the column list scanned by scanRecord, in order.
const recordColumns = `id, request_id, recorded_at,
	surface, kind, provider, model,
	prompt_chars, prompt_tokens, completion_tokens, total_tokens, duration_ms,
	status, error_kind, error`

// buildWhere builds a WHERE clause (without the keyword) and its
// arguments from the query filters.
func buildWhere(q *Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if q.Since != nil {
		conditions = append(conditions, "recorded_at >= ?")
		args = append(args, q.Since.UnixMilli())
	}
	if q.Until != nil {
		conditions = append(conditions, "recorded_at <= ?")
		args = append(args, q.Until.UnixMilli())
	}
	if q.Provider != "" {
		conditions = append(conditions, "provider = ?")
		args = append(args, q.Provider)
	}
	if q.Model != "" {
		conditions = append(conditions, "model = ?")
		args = append(args, q.Model)
	}
	if q.Surface != "" {
		conditions = append(conditions, "surface = ?")
		args = append(args, q.Surface)
	}
	if q.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, q.Status)
	}

	return strings.Join(conditions, " AND "), args
}

// scanRecord scans the current row into a Record.
func scanRecord(rows *sql.Rows) (*Record, error) {
	var rec Record
	var recordedAtMs int64
	var model, errorKind, errorMsg sql.NullString

	err := rows.Scan(
		&rec.ID, &rec.RequestID, &recordedAtMs,
		&rec.Surface, &rec.Kind, &rec.Provider, &model,
		&rec.PromptChars, &rec.PromptTokens, &rec.CompletionTokens, &rec.TotalTokens, &rec.DurationMs,
		&rec.Status, &errorKind, &errorMsg,
	)
	if err != nil {
		return nil, err
	}

	rec.Time = time.UnixMilli(recordedAtMs).UTC()
	rec.Model = model.String
	rec.ErrorKind = errorKind.String
	rec.Error = errorMsg.String

	return &rec, nil
}

// nullable converts "" to NULL for optional text columns.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

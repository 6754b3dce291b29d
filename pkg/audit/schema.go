package audit

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database
// schema. Timestamps are stored as Unix milliseconds so both SQLite
// drivers round-trip them identically.
const Schema = `
CREATE TABLE IF NOT EXISTS audit (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,
    recorded_at INTEGER NOT NULL,

    surface TEXT NOT NULL,
    kind TEXT NOT NULL,
    provider TEXT NOT NULL,
    model TEXT,

    prompt_chars INTEGER NOT NULL DEFAULT 0,
    prompt_tokens INTEGER NOT NULL DEFAULT 0,
    completion_tokens INTEGER NOT NULL DEFAULT 0,
    total_tokens INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,

    status TEXT NOT NULL,
    error_kind TEXT,
    error TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_recorded_at ON audit(recorded_at);
CREATE INDEX IF NOT EXISTS idx_audit_provider ON audit(provider);
CREATE INDEX IF NOT EXISTS idx_audit_status ON audit(status);
CREATE INDEX IF NOT EXISTS idx_audit_request_id ON audit(request_id);
`

// InsertSchemaVersion inserts the schema version into the
// schema_version table if it is not already present.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, ?)
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

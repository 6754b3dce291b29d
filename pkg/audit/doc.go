// Package audit provides a persistent audit trail for gateway requests.
//
// # Overview
//
// Every completion the gateway brokers (single, multiplex, or
// streaming, on either surface) can be recorded as an audit Record:
// who was asked (provider, model), how large the prompt was, what usage
// the CLI reported, how long it took, and how it ended. Records hold
// request metadata only; prompt and response text is never stored.
//
// # Components
//
//   - Storage: the persistence interface, implemented by SQLiteStorage
//     with a choice of driver ("sqlite3" via mattn/go-sqlite3, or the
//     CGO-free "sqlite" via modernc.org/sqlite)
//   - Recorder: async writer that never blocks a request; records are
//     enqueued to a buffered channel and dropped with a warning when
//     the buffer is full
//   - Pruner: retention enforcement (age-based and count-based) on a
//     cron schedule
//
// # Usage
//
//	storage, err := audit.NewSQLiteStorage(&audit.SQLiteConfig{
//		Driver: "sqlite3",
//		Path:   "data/audit.db",
//	})
//	if err != nil {
//		return err
//	}
//	rec := audit.NewRecorder(storage, nil)
//	defer rec.Close()
//
//	rec.Record(&audit.Record{
//		RequestID: reqID,
//		Surface:   audit.SurfaceREST,
//		Kind:      audit.KindSingle,
//		Provider:  "copilot",
//		Model:     "gpt-5",
//		Status:    audit.StatusOK,
//	})
//
// A nil *Recorder is a valid no-op sink, so call sites need no guards
// when auditing is disabled.
package audit

package audit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// memStorage is an in-memory Storage stub for recorder tests.
type memStorage struct {
	mu      sync.Mutex
	records []*Record
}

func (m *memStorage) Store(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memStorage) List(ctx context.Context, q *Query) ([]*Record, error) { return m.all(), nil }

func (m *memStorage) Get(ctx context.Context, id string) (*Record, error) { return nil, ErrNotFound }

func (m *memStorage) Count(ctx context.Context, q *Query) (int64, error) {
	return int64(len(m.all())), nil
}

func (m *memStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *memStorage) Close() error { return nil }

func (m *memStorage) all() []*Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Record(nil), m.records...)
}

// gatedStorage blocks Store until released, signalling entry, so tests
// can hold the worker mid-write deterministically.
type gatedStorage struct {
	memStorage
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStorage) Store(ctx context.Context, rec *Record) error {
	g.entered <- struct{}{}
	<-g.release
	return g.memStorage.Store(ctx, rec)
}

func TestRecorderWritesRecords(t *testing.T) {
	storage := &memStorage{}
	rec := NewRecorder(storage, &RecorderConfig{AsyncBuffer: 8})

	rec.Record(&Record{RequestID: "req-1", Provider: "copilot", Status: StatusOK})
	rec.Record(&Record{RequestID: "req-2", Provider: "opencode", Status: StatusError})

	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	stored := storage.all()
	if len(stored) != 2 {
		t.Fatalf("stored %d records, want 2", len(stored))
	}
	for _, r := range stored {
		if r.ID == "" {
			t.Error("record ID was not assigned")
		}
		if r.Time.IsZero() {
			t.Error("record time was not assigned")
		}
	}
}

func TestRecorderPreservesExplicitIdentity(t *testing.T) {
	storage := &memStorage{}
	rec := NewRecorder(storage, nil)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec.Record(&Record{ID: "fixed-id", Time: at, RequestID: "req-1"})
	rec.Close()

	stored := storage.all()
	if len(stored) != 1 {
		t.Fatalf("stored %d records, want 1", len(stored))
	}
	if stored[0].ID != "fixed-id" {
		t.Errorf("ID = %q, want fixed-id", stored[0].ID)
	}
	if !stored[0].Time.Equal(at) {
		t.Errorf("Time = %v, want %v", stored[0].Time, at)
	}
}

func TestRecorderDropsWhenBufferFull(t *testing.T) {
	storage := &gatedStorage{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	rec := NewRecorder(storage, &RecorderConfig{AsyncBuffer: 1})

	// First record: wait until the worker is blocked inside Store, so
	// the buffer is known-empty.
	rec.Record(&Record{RequestID: "req-a"})
	<-storage.entered

	// Second record fills the buffer; third must be dropped.
	rec.Record(&Record{RequestID: "req-b"})
	rec.Record(&Record{RequestID: "req-c"})

	close(storage.release)
	<-storage.entered // worker picks up req-b
	rec.Close()

	stored := storage.all()
	if len(stored) != 2 {
		t.Fatalf("stored %d records, want 2 (third dropped)", len(stored))
	}
	if stored[0].RequestID != "req-a" || stored[1].RequestID != "req-b" {
		t.Errorf("stored order = %q, %q; want req-a, req-b", stored[0].RequestID, stored[1].RequestID)
	}
}

func TestRecorderCloseDrainsBuffer(t *testing.T) {
	storage := &memStorage{}
	// A large buffer lets all records queue before the worker catches up.
	rec := NewRecorder(storage, &RecorderConfig{AsyncBuffer: 64})

	for i := 0; i < 20; i++ {
		rec.Record(&Record{RequestID: "req", Provider: "cursor_agent"})
	}

	rec.Close()

	if got := len(storage.all()); got != 20 {
		t.Errorf("stored %d records after Close, want 20", got)
	}
}

func TestRecorderNilReceiverIsNoOp(t *testing.T) {
	var rec *Recorder

	rec.Record(&Record{RequestID: "req"})
	if err := rec.Close(); err != nil {
		t.Errorf("nil Close returned %v", err)
	}
}

func TestRecorderCloseIsIdempotent(t *testing.T) {
	rec := NewRecorder(&memStorage{}, nil)

	if err := rec.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RecorderConfig contains configuration for the async recorder.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel.
	// Default: 1024
	AsyncBuffer int

	// WriteTimeout is the timeout for a single storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		AsyncBuffer:  1024,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes audit records to storage asynchronously so that
// recording never blocks a request. Records are enqueued to a buffered
// channel drained by a background worker; when the buffer is full the
// record is dropped and a warning logged.
//
// A nil *Recorder is a valid no-op sink.
type Recorder struct {
	storage  Storage
	config   *RecorderConfig
	recordCh chan *Record
	done     chan struct{}
	wg       sync.WaitGroup
	logger   *slog.Logger

	closeOnce sync.Once
}

// NewRecorder creates a recorder draining into the given storage and
// starts its background worker.
func NewRecorder(storage Storage, config *RecorderConfig) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = 1024
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage:  storage,
		config:   config,
		recordCh: make(chan *Record, config.AsyncBuffer),
		done:     make(chan struct{}),
		logger:   slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder started",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record enqueues a record for asynchronous writing. Missing ID and
// Time fields are filled in. Record never blocks: when the buffer is
// full the record is dropped with a warning.
func (r *Recorder) Record(rec *Record) {
	if r == nil || rec == nil {
		return
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}

	select {
	case r.recordCh <- rec:
	default:
		r.logger.Warn("audit buffer full, dropping record",
			"record_id", rec.ID,
			"request_id", rec.RequestID,
			"buffer", r.config.AsyncBuffer,
		)
	}
}

// Close stops the recorder after draining any buffered records.
// It does not close the underlying storage.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}

	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
		r.logger.Info("audit recorder stopped")
	})

	return nil
}

// worker drains the record channel into storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case rec := <-r.recordCh:
			r.write(rec)

		case <-r.done:
			// Drain whatever is still buffered before exiting.
			for {
				select {
				case rec := <-r.recordCh:
					r.write(rec)
				default:
					return
				}
			}
		}
	}
}

// write stores a single record. Failures are logged, never surfaced:
// a broken audit trail must not break requests.
func (r *Recorder) write(rec *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, rec); err != nil {
		r.logger.Error("failed to store audit record",
			"record_id", rec.ID,
			"request_id", rec.RequestID,
			"error", err,
		)
		return
	}

	r.logger.Debug("audit record stored",
		"record_id", rec.ID,
		"provider", rec.Provider,
		"status", rec.Status,
	)
}

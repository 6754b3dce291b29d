package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// PrunerConfig contains configuration for retention enforcement.
type PrunerConfig struct {
	// RetentionDays is how many days of records to keep.
	// 0 disables age-based pruning.
	RetentionDays int

	// MaxRecords caps the total number of records.
	// 0 disables count-based pruning.
	MaxRecords int64

	// Schedule is a cron expression for automatic pruning,
	// e.g. "0 3 * * *" for daily at 3 AM. Empty disables the scheduler.
	Schedule string
}

// Pruner enforces the audit retention policy. Pruning runs in two
// phases: age-based (drop records older than RetentionDays) and
// count-based (drop the oldest records beyond MaxRecords).
type Pruner struct {
	storage Storage
	config  *PrunerConfig
	logger  *slog.Logger

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// NewPruner creates a retention pruner over the given storage.
func NewPruner(storage Storage, config *PrunerConfig) *Pruner {
	if config == nil {
		config = &PrunerConfig{}
	}

	return &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "audit.pruner"),
		cron:    cron.New(),
	}
}

// Prune runs both retention phases once and returns the total number
// of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	if totalDeleted > 0 {
		p.logger.Info("audit pruning completed",
			"deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// pruneByAge deletes records older than the retention period.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		p.logger.Debug("pruned records by age",
			"deleted", deleted,
			"cutoff", cutoff,
		)
	}

	return deleted, nil
}

// pruneByCount deletes the oldest records when the total exceeds
// MaxRecords.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, nil)
	if err != nil {
		return 0, err
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	toDelete := count - p.config.MaxRecords

	// The cutoff is the timestamp of the newest record in the overflow:
	// everything at or before it goes.
	oldest, err := p.storage.List(ctx, &Query{Oldest: true, Limit: int(toDelete)})
	if err != nil {
		return 0, err
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	cutoff := oldest[len(oldest)-1].Time

	deleted, err := p.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	p.logger.Debug("pruned records by count",
		"deleted", deleted,
		"max_records", p.config.MaxRecords,
	)

	return deleted, nil
}

// Start begins scheduled pruning per the configured cron expression.
// An empty schedule is a no-op. The scheduler stops when ctx is
// cancelled or Stop is called.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.Schedule == "" {
		p.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(p.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", p.config.Schedule, err)
	}

	if _, err := p.cron.AddFunc(p.config.Schedule, func() {
		if _, err := p.Prune(ctx); err != nil {
			p.logger.Error("scheduled pruning failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("audit retention scheduler started",
		"schedule", p.config.Schedule,
		"retention_days", p.config.RetentionDays,
		"max_records", p.config.MaxRecords,
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running prune to finish.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		<-p.cron.Stop().Done()
		p.running = false
		p.logger.Info("audit retention scheduler stopped")
	}
}

// Running reports whether the scheduler is active.
func (p *Pruner) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// NextRun returns the next scheduled pruning time, or nil when the
// scheduler is not running.
func (p *Pruner) NextRun() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.cron.Entries()
	if !p.running || len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}

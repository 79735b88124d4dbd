// Package jobs contains implementations of scheduled jobs for the report card service.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/reportcard/internal/application/command"
	"github.com/alem-hub/reportcard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// FLUSH JOURNAL JOB
// ══════════════════════════════════════════════════════════════════════════════

// JournalProcessor drains the operation journal into its sinks.
type JournalProcessor interface {
	Handle(ctx context.Context, cmd command.ProcessJournalCommand) (*command.ProcessJournalResult, error)
}

// FlushJournalJob periodically drains the operation journal so archived
// records do not wait for a manual "process queue".
type FlushJournalJob struct {
	processor JournalProcessor
	logger    *logger.Logger
	timeout   time.Duration

	lastStats atomic.Value // *FlushStats
}

// FlushStats contains statistics from one flush run.
type FlushStats struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Records     int
	FailedSinks []string
}

// NewFlushJournalJob creates a new flush job. A zero timeout means no limit
// beyond the scheduler's own context.
func NewFlushJournalJob(processor JournalProcessor, log *logger.Logger, timeout time.Duration) *FlushJournalJob {
	if log == nil {
		log = logger.Nop()
	}
	return &FlushJournalJob{
		processor: processor,
		logger:    log.With(logger.Component("flush_journal")),
		timeout:   timeout,
	}
}

// Name returns the job name.
func (j *FlushJournalJob) Name() string {
	return "flush_journal"
}

// Description returns a human-readable description.
func (j *FlushJournalJob) Description() string {
	return "Drains the operation journal and delivers the records to the archive sinks"
}

// Run executes one flush.
func (j *FlushJournalJob) Run(ctx context.Context) error {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	stats := &FlushStats{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}

	result, err := j.processor.Handle(ctx, command.ProcessJournalCommand{
		CorrelationID: "scheduled-" + stats.RunID,
	})
	stats.CompletedAt = time.Now()
	if err != nil {
		j.lastStats.Store(stats)
		return fmt.Errorf("flush journal: %w", err)
	}

	stats.Records = len(result.Records)
	stats.FailedSinks = result.FailedSinks
	j.lastStats.Store(stats)

	if stats.Records > 0 {
		j.logger.Info("journal flushed",
			logger.Count(stats.Records),
			logger.Int("failed_sinks", len(stats.FailedSinks)),
		)
	}

	if len(stats.FailedSinks) > 0 {
		return fmt.Errorf("flush journal: sinks failed: %s", strings.Join(stats.FailedSinks, ", "))
	}
	return nil
}

// LastStats returns the statistics of the most recent run, or nil.
func (j *FlushJournalJob) LastStats() *FlushStats {
	if v := j.lastStats.Load(); v != nil {
		return v.(*FlushStats)
	}
	return nil
}

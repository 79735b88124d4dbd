// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alem-hub/reportcard/internal/domain/journal"
	"github.com/alem-hub/reportcard/pkg/circuitbreaker"
	"github.com/alem-hub/reportcard/pkg/logger"
	"github.com/alem-hub/reportcard/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROCESS JOURNAL COMMAND
// Drains the operation journal in one batch and hands the records to every
// configured sink (PostgreSQL archive, Redis stream). The journal is emptied
// even when a sink fails; failures are reported in the result. A sink that
// keeps failing is skipped by its circuit breaker until the cooldown passes.
// ══════════════════════════════════════════════════════════════════════════════

// JournalSource drains the operation journal.
type JournalSource interface {
	DrainJournal() []journal.Record
}

// JournalSink receives drained journal records.
type JournalSink interface {
	// Name identifies the sink in logs and results.
	Name() string

	// Archive stores records. It must be safe to call again with the same
	// records after a partial failure.
	Archive(ctx context.Context, records []journal.Record) error
}

// ProcessJournalCommand triggers a drain.
type ProcessJournalCommand struct {
	// CorrelationID for tracing.
	CorrelationID string
}

// SinkDelivery describes what happened to one sink.
type SinkDelivery struct {
	Sink      string `json:"sink"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

// ProcessJournalResult contains the drained records and per-sink outcomes.
type ProcessJournalResult struct {
	// Records are the drained entries in FIFO order.
	Records []journal.Record

	// Deliveries lists one outcome per configured sink.
	Deliveries []SinkDelivery

	// FailedSinks names sinks that gave up after retries.
	FailedSinks []string

	// ProcessedAt is when the journal was drained.
	ProcessedAt time.Time
}

// Message is the human-readable summary.
func (r *ProcessJournalResult) Message() string {
	return fmt.Sprintf("Processed %d operations", len(r.Records))
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ProcessJournalConfig tunes sink delivery.
type ProcessJournalConfig struct {
	// SinkTimeout bounds one sink's delivery, retries included.
	SinkTimeout time.Duration

	// MaxAttempts per sink, including the first.
	MaxAttempts int

	// InitialDelay before the first retry.
	InitialDelay time.Duration

	// BreakerFailureThreshold is the number of failed drains after which a
	// sink is skipped. Zero disables the breakers.
	BreakerFailureThreshold int

	// BreakerCooldown is how long a tripped sink is skipped.
	BreakerCooldown time.Duration
}

// DefaultProcessJournalConfig returns defaults matching config.Default().
func DefaultProcessJournalConfig() ProcessJournalConfig {
	return ProcessJournalConfig{
		SinkTimeout:             10 * time.Second,
		MaxAttempts:             3,
		InitialDelay:            100 * time.Millisecond,
		BreakerFailureThreshold: 5,
		BreakerCooldown:         30 * time.Second,
	}
}

// ProcessJournalHandler handles the ProcessJournalCommand.
type ProcessJournalHandler struct {
	source   JournalSource
	sinks    []JournalSink
	breakers map[string]*circuitbreaker.CircuitBreaker
	config   ProcessJournalConfig
	logger   *logger.Logger
}

// NewProcessJournalHandler creates a new ProcessJournalHandler.
func NewProcessJournalHandler(
	source JournalSource,
	sinks []JournalSink,
	config ProcessJournalConfig,
	log *logger.Logger,
) *ProcessJournalHandler {
	if log == nil {
		log = logger.Nop()
	}
	h := &ProcessJournalHandler{
		source:   source,
		sinks:    sinks,
		breakers: make(map[string]*circuitbreaker.CircuitBreaker, len(sinks)),
		config:   config,
		logger:   log.With(logger.Component("process_journal")),
	}

	if config.BreakerFailureThreshold > 0 {
		for _, s := range sinks {
			h.breakers[s.Name()] = circuitbreaker.SinkBreaker(
				s.Name(),
				config.BreakerFailureThreshold,
				config.BreakerCooldown,
				h.onBreakerStateChange,
			)
		}
	}

	return h
}

func (h *ProcessJournalHandler) onBreakerStateChange(name string, from, to circuitbreaker.State) {
	h.logger.Warn("sink circuit breaker state changed",
		logger.Sink(name),
		logger.String("from", from.String()),
		logger.String("to", to.String()),
	)
}

// BreakerState returns the breaker state of a sink. Sinks without a breaker
// are always reported as closed.
func (h *ProcessJournalHandler) BreakerState(sink string) circuitbreaker.State {
	if cb, ok := h.breakers[sink]; ok {
		return cb.State()
	}
	return circuitbreaker.StateClosed
}

// Sinks returns the configured sink names.
func (h *ProcessJournalHandler) Sinks() []string {
	names := make([]string, 0, len(h.sinks))
	for _, s := range h.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Handle drains the journal and delivers the records.
func (h *ProcessJournalHandler) Handle(
	ctx context.Context,
	cmd ProcessJournalCommand,
) (*ProcessJournalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("process_journal: %w", err)
	}

	result := &ProcessJournalResult{
		Records:     h.source.DrainJournal(),
		Deliveries:  make([]SinkDelivery, 0, len(h.sinks)),
		FailedSinks: make([]string, 0),
		ProcessedAt: time.Now().UTC(),
	}

	log := h.logger
	if cmd.CorrelationID != "" {
		log = log.WithRequestID(cmd.CorrelationID)
	}

	if len(result.Records) == 0 {
		log.Debug("journal empty, nothing to deliver")
		return result, nil
	}

	// Sinks are independent; deliver to all of them in parallel.
	deliveries := make([]SinkDelivery, len(h.sinks))
	var eg errgroup.Group

	for i, sink := range h.sinks {
		eg.Go(func() error {
			delivery := SinkDelivery{Sink: sink.Name(), Delivered: true}

			if err := h.deliver(ctx, sink, result.Records); err != nil {
				delivery.Delivered = false
				delivery.Error = err.Error()
				log.Error("journal delivery failed",
					logger.Sink(sink.Name()),
					logger.Count(len(result.Records)),
					logger.Err(err),
				)
			} else {
				log.Info("journal delivered",
					logger.Sink(sink.Name()),
					logger.Count(len(result.Records)),
				)
			}

			deliveries[i] = delivery
			return nil
		})
	}
	_ = eg.Wait()

	for _, d := range deliveries {
		if !d.Delivered {
			result.FailedSinks = append(result.FailedSinks, d.Sink)
		}
	}
	result.Deliveries = deliveries

	return result, nil
}

// deliver archives records into one sink through its breaker.
func (h *ProcessJournalHandler) deliver(ctx context.Context, sink JournalSink, records []journal.Record) error {
	cb, ok := h.breakers[sink.Name()]
	if !ok {
		return h.deliverWithRetry(ctx, sink, records)
	}
	return cb.Execute(ctx, func(ctx context.Context) error {
		return h.deliverWithRetry(ctx, sink, records)
	})
}

// deliverWithRetry archives records into one sink with exponential backoff.
func (h *ProcessJournalHandler) deliverWithRetry(ctx context.Context, sink JournalSink, records []journal.Record) error {
	if h.config.SinkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.SinkTimeout)
		defer cancel()
	}

	retrier := retry.SinkRetrier(h.config.MaxAttempts, h.config.InitialDelay,
		func(attempt int, err error, delay time.Duration) {
			h.logger.Warn("retrying journal delivery",
				logger.Sink(sink.Name()),
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		})

	return retrier.Do(ctx, func(ctx context.Context) error {
		return sink.Archive(ctx, records)
	})
}

// Package escalation tells operators about reconciliation cases nobody has looked at yet.
package escalation

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/metrics"
	"github.com/iho/transferhub/internal/usecase"
)

// Notifier delivers a case to whoever reconciles money movements.
type Notifier interface {
	Notify(ctx context.Context, c *domain.ReconciliationCase) error
}

// Config for Worker.
type Config struct {
	Cases     usecase.ReconciliationRepository
	Notifier  Notifier
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
	BatchSize int           // cases fetched per poll
	Interval  time.Duration // polling interval
}

// Worker polls open, unnotified cases and escalates each one once.
type Worker struct {
	cases     usecase.ReconciliationRepository
	notifier  Notifier
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	batchSize int
	interval  time.Duration
	now       func() time.Time
}

// NewWorker creates a new Worker.
func NewWorker(cfg Config) *Worker {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 50
	}
	if cfg.Interval == 0 {
		cfg.Interval = 30 * time.Second
	}

	return &Worker{
		cases:     cfg.Cases,
		notifier:  cfg.Notifier,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		now:       time.Now,
	}
}

// Start runs until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().
		Int("batch_size", w.batchSize).
		Dur("interval", w.interval).
		Msg("reconciliation escalation started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if err := w.escalate(ctx); err != nil {
		w.logger.Error().Err(err).Msg("escalating cases on start")
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("reconciliation escalation shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := w.escalate(ctx); err != nil {
				w.logger.Error().Err(err).Msg("escalating cases")
			}
		}
	}
}

// escalate notifies one batch of cases.
func (w *Worker) escalate(ctx context.Context) error {
	cases, err := w.cases.ListUnnotified(ctx, w.batchSize)
	if err != nil {
		return err
	}

	for _, c := range cases {
		if err := w.notifier.Notify(ctx, c); err != nil {
			w.logger.Error().
				Err(err).
				Str("case_id", c.ID).
				Str("kind", string(c.Kind)).
				Msg("failed to notify reconciliation case")
			continue
		}

		// A case that was notified but not marked is notified again on the next poll.
		if err := w.cases.MarkNotified(ctx, c.ID, w.now()); err != nil {
			w.logger.Error().
				Err(err).
				Str("case_id", c.ID).
				Msg("failed to mark reconciliation case notified")
			continue
		}

		if w.metrics != nil {
			w.metrics.ReconciliationEscalations.Inc()
		}
	}

	return nil
}

// LogNotifier writes cases to the error log, where alerting picks them up.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the case with its payload.
func (n *LogNotifier) Notify(ctx context.Context, c *domain.ReconciliationCase) error {
	n.logger.Error().
		Str("case_id", c.ID).
		Str("kind", string(c.Kind)).
		Str("reference", c.Reference).
		Str("resource_id", c.ResourceID).
		Interface("payload", c.Payload).
		Time("opened_at", c.CreatedAt).
		Msg("RECONCILIATION REQUIRED")

	return nil
}

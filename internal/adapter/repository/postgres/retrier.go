package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/transferhub/internal/infrastructure/metrics"
)

// Transient PostgreSQL conditions worth replaying the whole transaction for.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

// Retrier replays a transactional closure when PostgreSQL aborts it for
// contention. Any other error is returned to the caller untouched.
type Retrier struct {
	attempts uint64
	initial  time.Duration
	ceiling  time.Duration
	budget   time.Duration
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// RetrierOption tunes a Retrier.
type RetrierOption func(*Retrier)

// WithMaxRetries caps the number of replays after the first attempt.
func WithMaxRetries(n int) RetrierOption {
	return func(r *Retrier) {
		if n >= 0 {
			r.attempts = uint64(n)
		}
	}
}

// WithBackoff sets the first wait, the longest single wait and the total
// time allowed across all replays.
func WithBackoff(initial, ceiling, budget time.Duration) RetrierOption {
	return func(r *Retrier) {
		r.initial = initial
		r.ceiling = ceiling
		r.budget = budget
	}
}

func NewRetrier(log zerolog.Logger, m *metrics.Metrics, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		attempts: 3,
		initial:  50 * time.Millisecond,
		ceiling:  time.Second,
		budget:   10 * time.Second,
		logger:   log.With().Str("component", "db_retrier").Logger(),
		metrics:  m,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retry runs operation, replaying it with exponential backoff while it fails
// with a contention error and the retry allowance lasts.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initial
	policy.MaxInterval = r.ceiling
	policy.MaxElapsedTime = r.budget

	var b backoff.BackOff = backoff.WithMaxRetries(policy, r.attempts)
	b = backoff.WithContext(b, ctx)

	replay := 0
	notify := func(err error, wait time.Duration) {
		replay++
		if r.metrics != nil {
			r.metrics.DBRetries.Inc()
		}
		r.logger.Warn().
			Err(err).
			Int("replay", replay).
			Dur("wait", wait).
			Msg("transaction aborted by contention, replaying")
	}

	return backoff.RetryNotify(func() error {
		err := operation()
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, notify)
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
		return true
	default:
		return false
	}
}

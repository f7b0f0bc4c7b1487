package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/infrastructure/metrics"
)

// Retrier re-runs a whole unit of work when Postgres aborted it to break a
// deadlock or a serialization conflict. Any other failure is final.
type Retrier struct {
	maxRetries int
	newBackOff func() backoff.BackOff
	metrics    *metrics.Metrics
}

// NewRetrier creates a retrier allowing three re-runs with jittered exponential backoff.
func NewRetrier() *Retrier {
	return &Retrier{
		maxRetries: 3,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 50 * time.Millisecond
			b.MaxInterval = time.Second
			b.MaxElapsedTime = 10 * time.Second
			return b
		},
	}
}

// WithMaxRetries overrides the retry budget. Zero disables retries.
func (r *Retrier) WithMaxRetries(n int) *Retrier {
	if n < 0 {
		n = 0
	}
	r.maxRetries = n
	return r
}

// WithMetrics counts every re-run by SQLSTATE.
func (r *Retrier) WithMetrics(m *metrics.Metrics) *Retrier {
	r.metrics = m
	return r
}

// Retry implements usecase.Retrier.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.maxRetries)), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := operation()
		if err == nil {
			return nil
		}
		if lostLockRace(err) == "" {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		state := lostLockRace(err)
		if r.metrics != nil {
			r.metrics.UnitOfWorkRetries.WithLabelValues(state).Inc()
		}
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("sqlstate", state).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("unit of work lost a lock race, retrying")
	})
}

// lostLockRace returns the SQLSTATE when err is a deadlock or serialization
// failure, and "" otherwise. Mapped ledger conflicts keep the driver error in
// their chain.
func lostLockRace(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ""
	}
	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure:
		return pgErr.Code
	}
	return ""
}

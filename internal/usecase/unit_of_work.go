package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
)

// ErrCacheMiss is returned by Cache.Get for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// unitOfWorkContext detaches ctx from caller cancellation and bounds it by
// DefaultTransactionTimeout: once begun, a unit of work commits or aborts on its own.
func unitOfWorkContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), DefaultTransactionTimeout)
}

// inUnitOfWork runs fn inside one database transaction and commits it.
func inUnitOfWork(ctx context.Context, txManager TransactionManager, fn func(ctx context.Context, tx Transaction) error) error {
	txCtx, cancel := unitOfWorkContext(ctx)
	defer cancel()

	tx, err := txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := fn(txCtx, tx); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

func newOutboxEvent(id, aggregateType, aggregateID, eventType string, payload map[string]any, now time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            id,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}

// observe records duration and error kind of a ledger operation.
func observe(m *metrics.Metrics, operation string, start time.Time, err error) {
	if m == nil {
		return
	}

	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.OperationErrors.WithLabelValues(operation, string(domain.KindOf(err))).Inc()
	}
}

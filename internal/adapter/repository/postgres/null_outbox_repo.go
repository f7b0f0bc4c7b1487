package postgres

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

// NullOutboxRepository stands in for the outbox when OUTBOX_ENABLED is off.
// Events are discarded and never reach the publisher.
type NullOutboxRepository struct {
	dropped atomic.Int64
}

// NewNullOutboxRepository creates a new NullOutboxRepository.
func NewNullOutboxRepository() *NullOutboxRepository {
	return &NullOutboxRepository{}
}

// Create discards the event.
func (r *NullOutboxRepository) Create(ctx context.Context, _ usecase.Transaction, event *domain.OutboxEvent) error {
	r.dropped.Add(1)
	zerolog.Ctx(ctx).Debug().
		Str("event_type", event.EventType).
		Str("aggregate_id", event.AggregateID).
		Msg("outbox disabled, event dropped")
	return nil
}

// Dropped reports how many events were discarded since start.
func (r *NullOutboxRepository) Dropped() int64 {
	return r.dropped.Load()
}

func (r *NullOutboxRepository) GetUnpublished(context.Context, int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (r *NullOutboxRepository) MarkPublished(context.Context, string, time.Time) error {
	return nil
}

func (r *NullOutboxRepository) DeletePublished(context.Context, time.Time) error {
	return nil
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/postgres/generated"
	"github.com/iho/pocketledger/internal/usecase"
)

// OutboxRepository stores ledger events next to the rows they describe and
// serves them to the publisher oldest first.
type OutboxRepository struct {
	queries *generated.Queries
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(db generated.DBTX) *OutboxRepository {
	return &OutboxRepository{queries: generated.New(db)}
}

// Create writes event inside tx; it commits or vanishes with the ledger change.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.EventType, err)
	}

	return mapError("create outbox event", queriesFor(tx).CreateOutboxEvent(ctx, generated.CreateOutboxEventParams{
		ID:            event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       payload,
		CreatedAt:     timeToPgTimestamptz(event.CreatedAt),
		Published:     event.Published,
	}))
}

// GetUnpublished returns up to limit pending events ordered by creation.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	rows, err := r.queries.GetUnpublishedEvents(ctx, pageLimit(limit))
	if err != nil {
		return nil, mapError("get unpublished events", err)
	}

	events := make([]*domain.OutboxEvent, len(rows))
	for i, row := range rows {
		if events[i], err = outboxEventFromRow(row); err != nil {
			return nil, err
		}
	}

	return events, nil
}

// MarkPublished stamps an event as delivered.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return mapError("mark event published", r.queries.MarkEventPublished(ctx, generated.MarkEventPublishedParams{
		ID:          id,
		PublishedAt: timeToPgTimestamptz(publishedAt),
	}))
}

// DeletePublished prunes events delivered before the cutoff.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	removed, err := r.queries.DeletePublishedEvents(ctx, timeToPgTimestamptz(before))
	if err != nil {
		return mapError("delete published events", err)
	}

	if removed > 0 {
		zerolog.Ctx(ctx).Debug().Int64("removed", removed).Time("before", before).Msg("pruned published outbox events")
	}
	return nil
}

// Backlog counts events still waiting to be published.
func (r *OutboxRepository) Backlog(ctx context.Context) (int64, error) {
	count, err := r.queries.CountUnpublishedEvents(ctx)
	if err != nil {
		return 0, mapError("count unpublished events", err)
	}
	return count, nil
}

func outboxEventFromRow(row generated.OutboxEvent) (*domain.OutboxEvent, error) {
	var payload map[string]any
	if len(row.Payload) > 0 {
		if err := json.Unmarshal(row.Payload, &payload); err != nil {
			return nil, &domain.StorageError{Op: "decode outbox event " + row.ID, Err: err}
		}
	}

	return &domain.OutboxEvent{
		ID:            row.ID,
		AggregateID:   row.AggregateID,
		AggregateType: row.AggregateType,
		EventType:     row.EventType,
		Payload:       payload,
		CreatedAt:     row.CreatedAt.Time,
		PublishedAt:   timestamptzPtr(row.PublishedAt),
		Published:     row.Published,
	}, nil
}

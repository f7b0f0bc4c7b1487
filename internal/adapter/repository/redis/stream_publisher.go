package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/pocketledger/internal/domain"
)

// StreamPublisher appends outbox events to a Redis stream.
type StreamPublisher struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewStreamPublisher creates a publisher writing to stream, trimmed
// approximately to maxLen entries when maxLen > 0.
func NewStreamPublisher(client redis.Cmdable, stream string, maxLen int64) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

// Publish adds event to the stream.
func (p *StreamPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_id":       event.ID,
			"event_type":     event.EventType,
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
			"payload":        string(payload),
			"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

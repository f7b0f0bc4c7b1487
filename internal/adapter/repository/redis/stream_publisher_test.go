package redis

import (
	"context"
	"testing"
	"time"

	"github.com/iho/pocketledger/internal/domain"
)

func TestStreamPublisherAppendsEvent(t *testing.T) {
	client, _ := newMiniredis(t)

	pub := NewStreamPublisher(client, "pocketledger:events", 0)
	ctx := context.Background()

	event := &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateType: "loan",
		AggregateID:   "loan-1",
		EventType:     domain.EventTypeLoanPaymentCreated,
		Payload:       map[string]any{"amount": "25.00"},
		CreatedAt:     time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := pub.Publish(ctx, event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	msgs, err := client.XRange(ctx, "pocketledger:events", "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected one stream entry, got %d", len(msgs))
	}

	values := msgs[0].Values
	if values["event_id"] != "evt-1" || values["event_type"] != domain.EventTypeLoanPaymentCreated {
		t.Fatalf("unexpected entry: %#v", values)
	}
	if values["payload"] != `{"amount":"25.00"}` {
		t.Fatalf("unexpected payload: %v", values["payload"])
	}
}

func TestStreamPublisherFailsWhenServerDown(t *testing.T) {
	client, mr := newMiniredis(t)
	mr.Close()

	err := NewStreamPublisher(client, "events", 100).Publish(context.Background(), &domain.OutboxEvent{ID: "evt-1"})
	if err == nil {
		t.Fatal("expected publish error")
	}
}

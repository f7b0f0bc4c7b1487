package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
	"github.com/iho/pocketledger/internal/usecase"
)

// Publisher delivers one outbox event to the outside world.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// backlogCounter is implemented by outbox stores that can count pending events.
type backlogCounter interface {
	Backlog(ctx context.Context) (int64, error)
}

// Config for EventPublisher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	BatchSize  int           // events fetched per poll, default 100
	Interval   time.Duration // poll period, default 5s
	// Retention is how long published events are kept. Zero keeps them forever.
	Retention time.Duration
}

// EventPublisher polls the transactional outbox and relays ledger events in
// creation order. Events of one aggregate are never delivered out of order:
// after a failure the rest of that aggregate's batch waits for the next poll.
type EventPublisher struct {
	outboxRepo usecase.OutboxRepository
	publisher  Publisher
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	batchSize  int
	interval   time.Duration
	retention  time.Duration
	now        func() time.Time
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}

	return &EventPublisher{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger.With().Str("component", "event_publisher").Logger(),
		metrics:    cfg.Metrics,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		retention:  cfg.Retention,
		now:        time.Now,
	}
}

// Start polls until ctx is cancelled and then returns ctx.Err().
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Dur("retention", ep.retention).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	for {
		ep.tick(ctx)

		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (ep *EventPublisher) tick(ctx context.Context) {
	if err := ep.processEvents(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error processing events")
	}
	ep.sampleBacklog(ctx)
	if err := ep.cleanup(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error deleting published events")
	}
}

// processEvents publishes one batch. Failed events stay pending.
func (ep *EventPublisher) processEvents(ctx context.Context) error {
	events, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize)
	if err != nil || len(events) == 0 {
		return err
	}

	ep.logger.Debug().Int("count", len(events)).Msg("processing events")

	blocked := make(map[string]bool)
	for _, event := range events {
		aggregate := event.AggregateType + ":" + event.AggregateID
		if blocked[aggregate] {
			continue
		}

		log := ep.logger.With().
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Str("aggregate", aggregate).
			Logger()

		if err := ep.publisher.Publish(ctx, event); err != nil {
			blocked[aggregate] = true
			log.Error().Err(err).Msg("failed to publish event")
			if ep.metrics != nil {
				ep.metrics.EventsFailed.WithLabelValues(event.EventType).Inc()
			}
			continue
		}

		if ep.metrics != nil {
			ep.metrics.EventsPublished.WithLabelValues(event.EventType).Inc()
		}

		// a failed mark means at-least-once: the event is delivered again next poll
		if err := ep.outboxRepo.MarkPublished(ctx, event.ID, ep.now().UTC()); err != nil {
			blocked[aggregate] = true
			log.Error().Err(err).Msg("failed to mark event as published")
		}
	}

	return nil
}

func (ep *EventPublisher) sampleBacklog(ctx context.Context) {
	counter, ok := ep.outboxRepo.(backlogCounter)
	if !ok || ep.metrics == nil {
		return
	}

	backlog, err := counter.Backlog(ctx)
	if err != nil {
		ep.logger.Warn().Err(err).Msg("failed to count outbox backlog")
		return
	}
	ep.metrics.OutboxBacklog.Set(float64(backlog))
}

func (ep *EventPublisher) cleanup(ctx context.Context) error {
	if ep.retention <= 0 {
		return nil
	}
	return ep.outboxRepo.DeletePublished(ctx, ep.now().UTC().Add(-ep.retention))
}

// LogPublisher writes events to a logger; used when no broker is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event with its payload as raw JSON.
func (p *LogPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}

package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/hamstergame/platform/internal/metrics"
	"github.com/hamstergame/platform/internal/repository"
)

// Publisher delivers one message to a broker topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// OutboxRelay polls the event outbox and publishes events in insertion order.
type OutboxRelay struct {
	outbox      repository.OutboxRepository
	publisher   Publisher
	logger      *slog.Logger
	topicPrefix string
	interval    time.Duration
	batchSize   int
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(outbox repository.OutboxRepository, publisher Publisher, logger *slog.Logger, cfg *Config) *OutboxRelay {
	interval, batch := cfg.OutboxPollInterval, cfg.OutboxBatchSize
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &OutboxRelay{
		outbox:      outbox,
		publisher:   publisher,
		logger:      logger,
		topicPrefix: cfg.KafkaTopicPrefix,
		interval:    interval,
		batchSize:   batch,
	}
}

// Run polls until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) {
	r.logger.Info("outbox relay started", "interval", r.interval, "batch_size", r.batchSize)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.PollOnce(ctx); err != nil {
				r.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

type outboxMessage struct {
	EventID       string          `json:"event_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// PollOnce publishes one batch and returns how many events were marked
// published. A failed publish stops the batch so later events of the same
// aggregate are not delivered ahead of it.
func (r *OutboxRelay) PollOnce(ctx context.Context) (int, error) {
	events, err := r.outbox.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch unpublished: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	published := make([]int64, 0, len(events))
	var pubErr error
	for _, e := range events {
		if pubErr = r.publish(ctx, e); pubErr != nil {
			r.logger.Error("kafka publish failed", "event_id", e.EventID, "topic", r.topic(e), "error", pubErr)
			break
		}
		published = append(published, e.SeqID)
	}

	metrics.RecordOutboxPublish(len(published), true)
	if pubErr != nil {
		metrics.RecordOutboxPublish(1, false)
	}

	if len(published) > 0 {
		if err := r.outbox.MarkPublished(ctx, published); err != nil {
			return 0, fmt.Errorf("mark published: %w", err)
		}
	}

	r.logger.Debug("outbox poll complete", "published", len(published), "fetched", len(events))
	return len(published), pubErr
}

func (r *OutboxRelay) topic(e domain.OutboxDraft) string {
	if r.topicPrefix == "" {
		return e.Topic()
	}
	return r.topicPrefix + "." + e.Topic()
}

func (r *OutboxRelay) publish(ctx context.Context, e domain.OutboxDraft) error {
	msg, err := json.Marshal(outboxMessage{
		EventID:       e.EventID.String(),
		AggregateType: string(e.AggregateType),
		AggregateID:   e.AggregateID,
		EventType:     string(e.EventType),
		Payload:       e.Payload,
		OccurredAt:    e.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return r.publisher.Publish(ctx, r.topic(e), []byte(e.PartitionKey), msg)
}

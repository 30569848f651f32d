// Package messaging relays domain events recorded in the transactional outbox
// to a message broker.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/domain/shared"
	"storefront/pkg/logger"

	"go.uber.org/zap"
)

// Record status values
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusPublished  = "PUBLISHED"
	StatusFailed     = "FAILED"
)

// Record outbox row as seen by the relay
type Record struct {
	ID          string
	AggregateID string
	EventType   string
	Payload     string
	Status      string
	RetryCount  int
	CreatedAt   time.Time
}

// Store outbox storage the worker drains
type Store interface {
	GetPendingEvents(ctx context.Context, limit int) ([]Record, error)
	MarkEventProcessing(ctx context.Context, eventID string) error
	MarkEventPublished(ctx context.Context, eventID string) error
	MarkEventFailed(ctx context.Context, eventID string, maxRetries int) error
}

// Publisher broker adapter; key is the aggregate id
type Publisher interface {
	Publish(ctx context.Context, eventType, key, payload string) error
}

// EncodeEvent JSON envelope of a domain event
func EncodeEvent(event shared.DomainEvent) (string, error) {
	data := map[string]any{
		"event_name":   event.EventName(),
		"aggregate_id": event.GetAggregateID(),
		"occurred_on":  event.OccurredOn().UTC(),
	}
	if pe, ok := event.(shared.PayloadEvent); ok {
		data["data"] = pe.Payload()
	}

	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode event %s: %w", event.EventName(), err)
	}
	return string(b), nil
}

// LoggingPublisher publishes to the log; used when no broker is configured
type LoggingPublisher struct{}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType, key, payload string) error {
	logger.Info("Outbox event published",
		zap.String("event_type", eventType),
		zap.String("key", key),
		zap.String("payload", payload),
	)
	return nil
}

// Worker polls the outbox and publishes pending events
type Worker struct {
	store        Store
	publisher    Publisher
	pollInterval time.Duration
	batchSize    int
	maxRetries   int
}

func NewWorker(
	store Store,
	publisher Publisher,
	pollInterval time.Duration,
	batchSize int,
	maxRetries int,
) (*Worker, error) {
	if store == nil {
		return nil, fmt.Errorf("outbox store is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher is required")
	}
	if pollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	if maxRetries <= 0 {
		return nil, fmt.Errorf("max retries must be positive")
	}

	return &Worker{
		store:        store,
		publisher:    publisher,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		maxRetries:   maxRetries,
	}, nil
}

// Run polls until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil {
				logger.Error("Outbox batch processing failed", zap.Error(err))
			}
		}
	}
}

// ProcessBatch publishes one batch and returns how many events were published
func (w *Worker) ProcessBatch(ctx context.Context) (int, error) {
	events, err := w.store.GetPendingEvents(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, event := range events {
		if err := w.store.MarkEventProcessing(ctx, event.ID); err != nil {
			logger.Warn("Skip outbox event due to lock contention",
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
			continue
		}

		if err := w.publisher.Publish(ctx, event.EventType, event.AggregateID, event.Payload); err != nil {
			logger.Warn("Outbox publish failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			if failErr := w.store.MarkEventFailed(ctx, event.ID, w.maxRetries); failErr != nil {
				logger.Error("Failed to mark outbox event as failed",
					zap.String("event_id", event.ID),
					zap.Error(failErr),
				)
			}
			continue
		}

		if err := w.store.MarkEventPublished(ctx, event.ID); err != nil {
			logger.Error("Failed to mark outbox event as published",
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
			continue
		}
		published++
	}

	return published, nil
}

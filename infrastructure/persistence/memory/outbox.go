package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/domain/shared"
	"storefront/infrastructure/messaging"

	"github.com/google/uuid"
)

// OutboxRepository in-memory outbox, drained by messaging.Worker
type OutboxRepository struct {
	mu      sync.Mutex
	records map[string]*messaging.Record
}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{records: make(map[string]*messaging.Record)}
}

func (r *OutboxRepository) SaveEvent(ctx context.Context, event shared.DomainEvent) error {
	if err := shared.ValidateEvent(event); err != nil {
		return fmt.Errorf("invalid domain event: %w", err)
	}
	payload, err := messaging.EncodeEvent(event)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.records[id] = &messaging.Record{
		ID:          id,
		AggregateID: event.GetAggregateID(),
		EventType:   event.EventName(),
		Payload:     payload,
		Status:      messaging.StatusPending,
		CreatedAt:   time.Now(),
	}
	return nil
}

func (r *OutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]messaging.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []messaging.Record
	for _, rec := range r.records {
		if rec.Status == messaging.StatusPending {
			pending = append(pending, *rec)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *OutboxRepository) MarkEventProcessing(ctx context.Context, eventID string) error {
	return r.transition(eventID, func(rec *messaging.Record) error {
		if rec.Status != messaging.StatusPending {
			return fmt.Errorf("event not found or already being processed: %s", eventID)
		}
		rec.Status = messaging.StatusProcessing
		return nil
	})
}

func (r *OutboxRepository) MarkEventPublished(ctx context.Context, eventID string) error {
	return r.transition(eventID, func(rec *messaging.Record) error {
		rec.Status = messaging.StatusPublished
		return nil
	})
}

func (r *OutboxRepository) MarkEventFailed(ctx context.Context, eventID string, maxRetries int) error {
	return r.transition(eventID, func(rec *messaging.Record) error {
		rec.RetryCount++
		rec.Status = messaging.StatusFailed
		if rec.RetryCount < maxRetries {
			rec.Status = messaging.StatusPending
		}
		return nil
	})
}

// Events snapshot of every record, for inspection
func (r *OutboxRepository) Events() []messaging.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]messaging.Record, 0, len(r.records))
	for _, rec := range r.records {
		result = append(result, *rec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

func (r *OutboxRepository) transition(eventID string, fn func(*messaging.Record) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[eventID]
	if !ok {
		return fmt.Errorf("event not found: %s", eventID)
	}
	return fn(rec)
}

var (
	_ shared.OutboxRepository = (*OutboxRepository)(nil)
	_ messaging.Store         = (*OutboxRepository)(nil)
)

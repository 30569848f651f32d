package mysql

import (
	"context"
	"fmt"

	"storefront/domain/shared"
	"storefront/infrastructure/messaging"
	"storefront/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// OutboxRepository MySQL/GORM implementation of outbox repository
// Implements transactional outbox pattern for reliable domain event publishing
type OutboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository Create outbox repository
func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// SaveEvent Save domain event to outbox table
// Uses transaction from context when called within UoW.Execute()
// Creates its own transaction when called standalone
func (r *OutboxRepository) SaveEvent(ctx context.Context, event shared.DomainEvent) error {
	if err := shared.ValidateEvent(event); err != nil {
		return fmt.Errorf("invalid domain event: %w", err)
	}

	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		outboxPO, err := po.FromDomainEvent(event)
		if err != nil {
			return fmt.Errorf("failed to convert domain event: %w", err)
		}
		if err := tx.Create(outboxPO).Error; err != nil {
			return fmt.Errorf("failed to save event to outbox: %w", err)
		}
		return nil
	})
}

// GetPendingEvents oldest first
func (r *OutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]messaging.Record, error) {
	var events []po.OutboxEventPO
	err := conn(ctx, r.db).Where("status = ?", messaging.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get pending events: %w", err)
	}

	records := make([]messaging.Record, len(events))
	for i := range events {
		records[i] = events[i].ToRecord()
	}
	return records, nil
}

// MarkEventProcessing claims a pending event; fails when another worker got there first
func (r *OutboxRepository) MarkEventProcessing(ctx context.Context, eventID string) error {
	result := conn(ctx, r.db).Model(&po.OutboxEventPO{}).
		Where("id = ? AND status = ?", eventID, messaging.StatusPending).
		Updates(map[string]interface{}{
			"status":     messaging.StatusProcessing,
			"updated_at": gorm.Expr("NOW()"),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("event not found or already being processed: %s", eventID)
	}

	return nil
}

// MarkEventPublished Mark event as successfully published
func (r *OutboxRepository) MarkEventPublished(ctx context.Context, eventID string) error {
	result := conn(ctx, r.db).Model(&po.OutboxEventPO{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"status":     messaging.StatusPublished,
			"updated_at": gorm.Expr("NOW()"),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("event not found: %s", eventID)
	}

	return nil
}

// MarkEventFailed puts the event back to pending until maxRetries is reached
func (r *OutboxRepository) MarkEventFailed(ctx context.Context, eventID string, maxRetries int) error {
	db := conn(ctx, r.db)

	var event po.OutboxEventPO
	if err := db.First(&event, "id = ?", eventID).Error; err != nil {
		return fmt.Errorf("failed to find event: %w", err)
	}

	newRetryCount := event.RetryCount + 1
	newStatus := messaging.StatusFailed
	if newRetryCount < maxRetries {
		newStatus = messaging.StatusPending
	}

	return db.Model(&po.OutboxEventPO{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"status":      newStatus,
			"retry_count": newRetryCount,
			"updated_at":  gorm.Expr("NOW()"),
		}).Error
}

// Compile-time interface implementation check
var (
	_ shared.OutboxRepository = (*OutboxRepository)(nil)
	_ messaging.Store         = (*OutboxRepository)(nil)
)

package po

import (
	"time"

	"storefront/domain/shared"
	"storefront/infrastructure/messaging"

	"github.com/google/uuid"
)

// OutboxEventPO Outbox event persistence object
// Implements transactional outbox pattern for reliable event publishing
type OutboxEventPO struct {
	ID          string    `gorm:"primaryKey;size:64"`
	AggregateID string    `gorm:"size:64;index;not null"`
	EventType   string    `gorm:"size:100;index;not null"`          // e.g. "order.placed", "order.paid"
	Payload     string    `gorm:"type:json;not null"`               // JSON envelope from messaging.EncodeEvent
	Status      string    `gorm:"size:20;default:PENDING;not null"` // PENDING, PROCESSING, PUBLISHED, FAILED
	RetryCount  int       `gorm:"default:0;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// TableName Specify table name
func (OutboxEventPO) TableName() string {
	return "outbox_events"
}

// FromDomainEvent Convert domain event to outbox persistence object
func FromDomainEvent(event shared.DomainEvent) (*OutboxEventPO, error) {
	payload, err := messaging.EncodeEvent(event)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &OutboxEventPO{
		ID:          uuid.New().String(),
		AggregateID: event.GetAggregateID(),
		EventType:   event.EventName(),
		Payload:     payload,
		Status:      messaging.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ToRecord the relay's view of the row
func (po *OutboxEventPO) ToRecord() messaging.Record {
	return messaging.Record{
		ID:          po.ID,
		AggregateID: po.AggregateID,
		EventType:   po.EventType,
		Payload:     po.Payload,
		Status:      po.Status,
		RetryCount:  po.RetryCount,
		CreatedAt:   po.CreatedAt,
	}
}

package shared

import (
	"fmt"
	"time"
)

// DomainEvent something that happened in the domain
type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
	GetAggregateID() string
}

// PayloadEvent event that exposes its data for serialization into the outbox
type PayloadEvent interface {
	DomainEvent
	Payload() map[string]any
}

// ValidateEvent rejects events the outbox cannot route
func ValidateEvent(event DomainEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	if event.EventName() == "" {
		return fmt.Errorf("event name cannot be empty")
	}

	if event.GetAggregateID() == "" {
		return fmt.Errorf("aggregate ID cannot be empty")
	}

	if event.OccurredOn().IsZero() {
		return fmt.Errorf("occurred on time cannot be zero")
	}

	return nil
}

package mysql

import (
	"testing"
	"time"

	"storefront/domain/shared"
	"storefront/infrastructure/persistence/retry"

	"github.com/stretchr/testify/assert"
)

type stockEvent struct {
	name string
	id   string
}

func (e stockEvent) EventName() string      { return e.name }
func (e stockEvent) OccurredOn() time.Time  { return time.Now() }
func (e stockEvent) GetAggregateID() string { return e.id }

type aggregate struct {
	id     string
	events []shared.DomainEvent
}

func (a *aggregate) ID() string   { return a.id }
func (a *aggregate) Version() int { return 1 }

func (a *aggregate) PullEvents() []shared.DomainEvent {
	events := a.events
	a.events = nil
	return events
}

type otherAggregate struct{ aggregate }

func TestPendingEventsOncePerAggregate(t *testing.T) {
	placed := &aggregate{id: "o-1", events: []shared.DomainEvent{
		stockEvent{name: "order.placed", id: "o-1"},
		stockEvent{name: "order.paid", id: "o-1"},
	}}
	restocked := &otherAggregate{aggregate{id: "o-1", events: []shared.DomainEvent{
		stockEvent{name: "product.restocked", id: "o-1"},
	}}}

	uow := NewUnitOfWork(nil, retry.Config{})
	uow.RegisterNew(placed)
	uow.RegisterDirty(placed)
	uow.RegisterDirty(restocked)

	var names []string
	for _, event := range pendingEvents(uow.aggregates) {
		names = append(names, event.EventName())
	}
	assert.Equal(t, []string{"order.placed", "order.paid", "product.restocked"}, names)
	assert.Empty(t, placed.PullEvents(), "events are pulled exactly once")
}

func TestPendingEventsEmpty(t *testing.T) {
	assert.Empty(t, pendingEvents(nil))
	assert.Empty(t, pendingEvents([]shared.AggregateRoot{&aggregate{id: "p-1"}}))
}

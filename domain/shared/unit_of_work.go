package shared

import "context"

// UnitOfWork transaction boundary that also collects aggregate events.
// Events of registered aggregates are pulled and handed to the outbox
// when fn returns without error.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
	RegisterNew(aggregate AggregateRoot)
	RegisterDirty(aggregate AggregateRoot)
	RegisterRemoved(aggregate AggregateRoot)
}

type UnitOfWorkFactory interface {
	New() UnitOfWork
}

type OutboxRepository interface {
	SaveEvent(ctx context.Context, event DomainEvent) error
}

package memory

import (
	"context"
	"fmt"
	"sync"

	"storefront/domain/shared"
)

// UnitOfWork in-memory unit of work. There is no rollback: each repository
// write is atomic on its own, and events reach the outbox only when fn succeeds.
type UnitOfWork struct {
	mu         sync.Mutex
	aggregates []shared.AggregateRoot
	outbox     shared.OutboxRepository
}

func NewUnitOfWork(outbox shared.OutboxRepository) *UnitOfWork {
	return &UnitOfWork{outbox: outbox}
}

func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	u.mu.Lock()
	u.aggregates = nil
	u.mu.Unlock()

	if err := fn(ctx); err != nil {
		return err
	}

	u.mu.Lock()
	aggregates := u.aggregates
	u.aggregates = nil
	u.mu.Unlock()

	if u.outbox == nil {
		return nil
	}
	for _, agg := range aggregates {
		for _, event := range agg.PullEvents() {
			if err := u.outbox.SaveEvent(ctx, event); err != nil {
				return fmt.Errorf("failed to save event to outbox: %w", err)
			}
		}
	}
	return nil
}

func (u *UnitOfWork) RegisterNew(aggregate shared.AggregateRoot)     { u.register(aggregate) }
func (u *UnitOfWork) RegisterDirty(aggregate shared.AggregateRoot)   { u.register(aggregate) }
func (u *UnitOfWork) RegisterRemoved(aggregate shared.AggregateRoot) { u.register(aggregate) }

func (u *UnitOfWork) register(aggregate shared.AggregateRoot) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.aggregates = append(u.aggregates, aggregate)
}

// UnitOfWorkFactory hands out one UnitOfWork per operation
type UnitOfWorkFactory struct {
	outbox shared.OutboxRepository
}

func NewUnitOfWorkFactory(outbox shared.OutboxRepository) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{outbox: outbox}
}

func (f *UnitOfWorkFactory) New() shared.UnitOfWork {
	return NewUnitOfWork(f.outbox)
}

var (
	_ shared.UnitOfWork        = (*UnitOfWork)(nil)
	_ shared.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
)

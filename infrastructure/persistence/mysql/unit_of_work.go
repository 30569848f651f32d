package mysql

import (
	"context"
	"fmt"

	"storefront/domain/shared"
	"storefront/infrastructure/persistence"
	"storefront/infrastructure/persistence/retry"
	"storefront/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnitOfWork one storefront operation (checkout, settlement, cancellation,
// admin update) as a single MySQL transaction. Events recorded by the
// registered orders and products are written to the outbox table inside the
// same transaction, so the worker only ever relays committed changes.
type UnitOfWork struct {
	db         *gorm.DB
	outbox     *OutboxRepository
	retry      retry.Config
	aggregates []shared.AggregateRoot
}

func NewUnitOfWork(db *gorm.DB, retryConfig retry.Config) *UnitOfWork {
	return &UnitOfWork{
		db:     db,
		outbox: NewOutboxRepository(db),
		retry:  retryConfig,
	}
}

// Execute runs fn in a transaction; repositories pick it up from the context.
// Stale versions and deadlocks re-run fn from scratch, so fn must reload
// whatever it mutates.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.ExecuteWithRetry(ctx, u.retry, func(ctx context.Context) error {
		u.aggregates = u.aggregates[:0]

		return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			txCtx := persistence.ContextWithTx(ctx, tx)
			if err := fn(txCtx); err != nil {
				return err
			}
			return u.stageEvents(txCtx)
		})
	})
}

func (u *UnitOfWork) stageEvents(ctx context.Context) error {
	log := logger.FromContext(ctx)
	for _, event := range pendingEvents(u.aggregates) {
		if err := u.outbox.SaveEvent(ctx, event); err != nil {
			return fmt.Errorf("stage %s for %s: %w", event.EventName(), event.GetAggregateID(), err)
		}
		log.Debug("event staged in outbox",
			zap.String("event_type", event.EventName()),
			zap.String("aggregate_id", event.GetAggregateID()))
	}
	return nil
}

// pendingEvents pulls events once per aggregate, in registration order; an
// order registered both as new and dirty contributes its events once
func pendingEvents(aggregates []shared.AggregateRoot) []shared.DomainEvent {
	seen := make(map[string]bool, len(aggregates))
	var events []shared.DomainEvent
	for _, agg := range aggregates {
		key := fmt.Sprintf("%T/%s", agg, agg.ID())
		if seen[key] {
			continue
		}
		seen[key] = true
		events = append(events, agg.PullEvents()...)
	}
	return events
}

func (u *UnitOfWork) RegisterNew(aggregate shared.AggregateRoot)     { u.register(aggregate) }
func (u *UnitOfWork) RegisterDirty(aggregate shared.AggregateRoot)   { u.register(aggregate) }
func (u *UnitOfWork) RegisterRemoved(aggregate shared.AggregateRoot) { u.register(aggregate) }

func (u *UnitOfWork) register(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

// UnitOfWorkFactory hands out one transactional UnitOfWork per operation
type UnitOfWorkFactory struct {
	db    *gorm.DB
	retry retry.Config
}

func NewUnitOfWorkFactory(db *gorm.DB, retryConfig retry.Config) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db, retry: retryConfig}
}

func (f *UnitOfWorkFactory) New() shared.UnitOfWork {
	return NewUnitOfWork(f.db, f.retry)
}

var (
	_ shared.UnitOfWork        = (*UnitOfWork)(nil)
	_ shared.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
)

package shared

// AggregateRoot consistency boundary of a cluster of entities.
// It owns a global identity, guards its invariants and records domain events.
type AggregateRoot interface {
	// ID global identity
	ID() string

	// Version optimistic locking version
	Version() int

	// PullEvents returns and clears recorded domain events.
	// The unit of work pulls them after a successful save.
	PullEvents() []DomainEvent
}

// Entity object identified by ID rather than attributes
type Entity interface {
	ID() string
}

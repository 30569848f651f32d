package order

import (
	"context"

	"storefront/domain/shared"
)

// Repository Order repository interface
type Repository interface {
	// NextIdentity Generate new order ID
	NextIdentity() string

	// Save creates or updates the order aggregate.
	// Version 0 means create; updates check the stored version.
	Save(ctx context.Context, order *Order) error

	// FindByID returns ErrOrderNotFound when missing
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindByIDForUser only matches orders owned by userID
	FindByIDForUser(ctx context.Context, id, userID string) (*Order, error)

	// FindByTrackingID guest orders only; email narrows the match when non-empty
	FindByTrackingID(ctx context.Context, trackingID, email string) (*Order, error)

	// FindByUserID newest first
	FindByUserID(ctx context.Context, userID string) ([]*Order, error)

	// FindAll newest first, filtered by spec when non-nil
	FindAll(ctx context.Context, spec shared.Specification[*Order]) ([]*Order, error)
}

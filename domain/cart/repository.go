package cart

import "context"

// Repository cart store, one cart per user
type Repository interface {
	NextIdentity() string

	// FindByOwner returns (nil, nil) when the user has no cart
	FindByOwner(ctx context.Context, userID string) (*Cart, error)

	// Save creates or replaces the user's cart
	Save(ctx context.Context, c *Cart) error

	// Clear empties the user's cart; a user without a cart is a no-op
	Clear(ctx context.Context, userID string) error
}

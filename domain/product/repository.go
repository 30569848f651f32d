package product

import "context"

// Repository catalog store
type Repository interface {
	// NextIdentity new product id
	NextIdentity() string

	// Save create or update every non-stock field (and stock fields on create)
	Save(ctx context.Context, p *Product) error

	// FindByID returns ErrProductNotFound when missing
	FindByID(ctx context.Context, id string) (*Product, error)

	// FindByIDs returns the products found, keyed by id; missing ids are absent
	FindByIDs(ctx context.Context, ids []string) (map[string]*Product, error)

	// List newest first
	List(ctx context.Context) ([]*Product, error)

	// Latest newest products, at most limit
	Latest(ctx context.Context, limit int) ([]*Product, error)

	// BestSellers by sold descending, at most limit
	BestSellers(ctx context.Context, limit int) ([]*Product, error)

	// Related products in a category, at most limit
	Related(ctx context.Context, category Category, limit int) ([]*Product, error)

	// Delete removes a product
	Delete(ctx context.Context, id string) error

	// IncrementStockAndSold unconditional: quantity += delta, sold -= delta.
	// Used to restore stock on cancellation.
	IncrementStockAndSold(ctx context.Context, id string, delta int) error

	// DecrementStockIfAvailable atomic conditional update:
	// quantity -= qty, sold += qty WHERE quantity >= qty.
	// Returns ErrInsufficientStock when the guard fails.
	DecrementStockIfAvailable(ctx context.Context, id string, qty int) error
}

package memory

import (
	"context"
	"sync"

	"storefront/domain/cart"
)

// CartRepository in-memory cart store keyed by owner
type CartRepository struct {
	mu      sync.RWMutex
	byOwner map[string]cart.ReconstructionDTO
}

func NewCartRepository() *CartRepository {
	return &CartRepository{byOwner: make(map[string]cart.ReconstructionDTO)}
}

func (r *CartRepository) NextIdentity() string {
	return newID()
}

func (r *CartRepository) FindByOwner(ctx context.Context, userID string) (*cart.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dto, ok := r.byOwner[userID]
	if !ok {
		return nil, nil
	}
	return cart.RebuildFromDTO(dto), nil
}

func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byOwner[c.UserID()]
	if ok && existing.Version != c.Version() {
		return errStale("cart", c.ID())
	}
	c.IncrementVersionForSave()
	r.byOwner[c.UserID()] = c.ToDTO()
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dto, ok := r.byOwner[userID]
	if !ok {
		return nil
	}
	dto.Items = nil
	dto.Version++
	r.byOwner[userID] = dto
	return nil
}

var _ cart.Repository = (*CartRepository)(nil)

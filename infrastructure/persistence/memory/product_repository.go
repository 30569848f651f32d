// Package memory in-process implementations of every repository.
// Each operation is atomic per record, mirroring the row-level guarantees
// the MySQL implementation relies on.
package memory

import (
	"context"
	"sort"
	"sync"

	"storefront/domain/product"

	"github.com/google/uuid"
)

type productRecord struct {
	dto product.ReconstructionDTO
	seq int64
}

// ProductRepository in-memory catalog store
type ProductRepository struct {
	mu      sync.RWMutex
	records map[string]*productRecord
	seq     int64
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{records: make(map[string]*productRecord)}
}

func (r *ProductRepository) NextIdentity() string {
	return newID()
}

func (r *ProductRepository) Save(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[p.ID()]
	if ok && existing.dto.Version != p.Version() {
		return errStaleProduct(p.ID())
	}
	p.IncrementVersionForSave()

	rec := &productRecord{dto: p.ToDTO()}
	if ok {
		rec.seq = existing.seq
	} else {
		r.seq++
		rec.seq = r.seq
	}
	r.records[p.ID()] = rec
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, product.NewProductNotFoundError(id)
	}
	return product.RebuildFromDTO(rec.dto), nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*product.Product, len(ids))
	for _, id := range ids {
		if rec, ok := r.records[id]; ok {
			result[id] = product.RebuildFromDTO(rec.dto)
		}
	}
	return result, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*product.Product, error) {
	return r.query(nil, newestFirst, 0), nil
}

func (r *ProductRepository) Latest(ctx context.Context, limit int) ([]*product.Product, error) {
	return r.query(nil, newestFirst, limit), nil
}

func (r *ProductRepository) BestSellers(ctx context.Context, limit int) ([]*product.Product, error) {
	return r.query(nil, func(a, b *productRecord) bool {
		if a.dto.Sold != b.dto.Sold {
			return a.dto.Sold > b.dto.Sold
		}
		return newestFirst(a, b)
	}, limit), nil
}

func (r *ProductRepository) Related(ctx context.Context, category product.Category, limit int) ([]*product.Product, error) {
	return r.query(func(rec *productRecord) bool {
		return rec.dto.Category == category
	}, newestFirst, limit), nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return product.NewProductNotFoundError(id)
	}
	delete(r.records, id)
	return nil
}

func (r *ProductRepository) IncrementStockAndSold(ctx context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return product.NewProductNotFoundError(id)
	}
	rec.dto.Quantity += delta
	rec.dto.Sold -= delta
	if rec.dto.Sold < 0 {
		rec.dto.Sold = 0
	}
	rec.dto.Version++
	return nil
}

func (r *ProductRepository) DecrementStockIfAvailable(ctx context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return product.NewProductNotFoundError(id)
	}
	if rec.dto.Quantity < qty {
		return product.NewInsufficientStockError(id, qty)
	}
	rec.dto.Quantity -= qty
	rec.dto.Sold += qty
	rec.dto.Version++
	return nil
}

func (r *ProductRepository) query(filter func(*productRecord) bool, less func(a, b *productRecord) bool, limit int) []*product.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*productRecord, 0, len(r.records))
	for _, rec := range r.records {
		if filter == nil || filter(rec) {
			matched = append(matched, rec)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return less(matched[i], matched[j]) })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	result := make([]*product.Product, len(matched))
	for i, rec := range matched {
		result[i] = product.RebuildFromDTO(rec.dto)
	}
	return result
}

func newestFirst(a, b *productRecord) bool {
	if !a.dto.CreatedAt.Equal(b.dto.CreatedAt) {
		return a.dto.CreatedAt.After(b.dto.CreatedAt)
	}
	return a.seq > b.seq
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

var _ product.Repository = (*ProductRepository)(nil)

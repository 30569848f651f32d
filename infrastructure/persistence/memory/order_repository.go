package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"storefront/domain/order"
	"storefront/domain/shared"
)

type orderRecord struct {
	dto order.ReconstructionDTO
	seq int64
}

// OrderRepository in-memory order store
type OrderRepository struct {
	mu      sync.RWMutex
	records map[string]*orderRecord
	seq     int64
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{records: make(map[string]*orderRecord)}
}

func (r *OrderRepository) NextIdentity() string {
	return newID()
}

func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[o.ID()]
	if ok && existing.dto.Version != o.Version() {
		return order.NewConcurrentModificationError(o.ID())
	}
	if !ok && o.TrackingID() != "" {
		for _, rec := range r.records {
			if rec.dto.TrackingID == o.TrackingID() {
				return order.NewTrackingIDAlreadyAssignedError(rec.dto.ID)
			}
		}
	}
	o.IncrementVersionForSave()

	rec := &orderRecord{dto: o.ToDTO()}
	if ok {
		rec.seq = existing.seq
	} else {
		r.seq++
		rec.seq = r.seq
	}
	r.records[o.ID()] = rec
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, order.NewOrderNotFoundError(id)
	}
	return order.RebuildFromDTO(rec.dto), nil
}

func (r *OrderRepository) FindByIDForUser(ctx context.Context, id, userID string) (*order.Order, error) {
	o, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, order.NewOrderNotFoundError(id)
	}
	return o, nil
}

func (r *OrderRepository) FindByTrackingID(ctx context.Context, trackingID, email string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if rec.dto.TrackingID != trackingID || rec.dto.Guest == nil {
			continue
		}
		if email != "" && !strings.EqualFold(rec.dto.Guest.Email, email) {
			continue
		}
		return order.RebuildFromDTO(rec.dto), nil
	}
	return nil, order.NewGuestOrderNotFoundError(trackingID)
}

func (r *OrderRepository) FindByUserID(ctx context.Context, userID string) ([]*order.Order, error) {
	return r.FindAll(ctx, ownedBy{userID: userID})
}

func (r *OrderRepository) FindAll(ctx context.Context, spec shared.Specification[*order.Order]) ([]*order.Order, error) {
	r.mu.RLock()
	records := make([]*orderRecord, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec)
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.dto.CreatedAt.Equal(b.dto.CreatedAt) {
			return a.dto.CreatedAt.After(b.dto.CreatedAt)
		}
		return a.seq > b.seq
	})

	result := make([]*order.Order, 0, len(records))
	for _, rec := range records {
		o := order.RebuildFromDTO(rec.dto)
		if spec == nil || spec.IsSatisfiedBy(o) {
			result = append(result, o)
		}
	}
	return result, nil
}

type ownedBy struct {
	userID string
}

func (s ownedBy) IsSatisfiedBy(o *order.Order) bool {
	return o.IsOwnedBy(s.userID)
}

var _ order.Repository = (*OrderRepository)(nil)

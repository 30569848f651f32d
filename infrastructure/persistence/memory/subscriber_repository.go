package memory

import (
	"context"
	"sort"
	"sync"

	"storefront/domain/newsletter"
)

// SubscriberRepository in-memory newsletter subscriber store
type SubscriberRepository struct {
	mu      sync.RWMutex
	records map[string]newsletter.ReconstructionDTO
}

func NewSubscriberRepository() *SubscriberRepository {
	return &SubscriberRepository{records: make(map[string]newsletter.ReconstructionDTO)}
}

func (r *SubscriberRepository) NextIdentity() string {
	return newID()
}

func (r *SubscriberRepository) FindByEmail(ctx context.Context, email string) (*newsletter.Subscriber, error) {
	return r.find(func(dto newsletter.ReconstructionDTO) bool { return dto.Email == email }), nil
}

func (r *SubscriberRepository) FindByConfirmationToken(ctx context.Context, token string) (*newsletter.Subscriber, error) {
	if token == "" {
		return nil, nil
	}
	return r.find(func(dto newsletter.ReconstructionDTO) bool { return dto.ConfirmationToken == token }), nil
}

func (r *SubscriberRepository) FindByUnsubscribeToken(ctx context.Context, token string) (*newsletter.Subscriber, error) {
	if token == "" {
		return nil, nil
	}
	return r.find(func(dto newsletter.ReconstructionDTO) bool { return dto.UnsubscribeToken == token }), nil
}

func (r *SubscriberRepository) FindActiveConfirmed(ctx context.Context) ([]*newsletter.Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*newsletter.Subscriber
	for _, dto := range r.records {
		if dto.IsConfirmed && dto.IsActive {
			result = append(result, newsletter.RebuildFromDTO(dto))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SubscribedAt().Before(result[j].SubscribedAt())
	})
	return result, nil
}

func (r *SubscriberRepository) Save(ctx context.Context, s *newsletter.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.records[s.ID()]; ok && existing.Version != s.Version() {
		return errStale("subscriber", s.ID())
	}
	for id, dto := range r.records {
		if id != s.ID() && dto.Email == s.Email() {
			return newsletter.NewAlreadySubscribedError()
		}
	}
	s.IncrementVersionForSave()
	r.records[s.ID()] = s.ToDTO()
	return nil
}

func (r *SubscriberRepository) find(match func(newsletter.ReconstructionDTO) bool) *newsletter.Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, dto := range r.records {
		if match(dto) {
			return newsletter.RebuildFromDTO(dto)
		}
	}
	return nil
}

var _ newsletter.Repository = (*SubscriberRepository)(nil)

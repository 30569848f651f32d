package mysql

import (
	"context"
	"errors"

	"storefront/domain/newsletter"
	"storefront/domain/shared"
	"storefront/infrastructure/persistence/mysql/po"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubscriberRepository MySQL/GORM newsletter subscriber store
type SubscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

func (r *SubscriberRepository) NextIdentity() string {
	return uuid.New().String()
}

func (r *SubscriberRepository) FindByEmail(ctx context.Context, email string) (*newsletter.Subscriber, error) {
	return r.findOne(conn(ctx, r.db).Where("email = ?", email))
}

func (r *SubscriberRepository) FindByConfirmationToken(ctx context.Context, token string) (*newsletter.Subscriber, error) {
	if token == "" {
		return nil, nil
	}
	return r.findOne(conn(ctx, r.db).Where("confirmation_token = ?", token))
}

func (r *SubscriberRepository) FindByUnsubscribeToken(ctx context.Context, token string) (*newsletter.Subscriber, error) {
	if token == "" {
		return nil, nil
	}
	return r.findOne(conn(ctx, r.db).Where("unsubscribe_token = ?", token))
}

func (r *SubscriberRepository) FindActiveConfirmed(ctx context.Context) ([]*newsletter.Subscriber, error) {
	var subscriberPOs []po.SubscriberPO
	if err := conn(ctx, r.db).
		Where("is_confirmed = ? AND is_active = ?", true, true).
		Order("subscribed_at ASC").
		Find(&subscriberPOs).Error; err != nil {
		return nil, err
	}
	subscribers := make([]*newsletter.Subscriber, len(subscriberPOs))
	for i := range subscriberPOs {
		subscribers[i] = subscriberPOs[i].ToDomain()
	}
	return subscribers, nil
}

func (r *SubscriberRepository) Save(ctx context.Context, s *newsletter.Subscriber) error {
	subscriberPO := po.FromSubscriberDomain(s)
	db := conn(ctx, r.db)

	if s.Version() == 0 {
		subscriberPO.Version = 1
		if err := db.Create(subscriberPO).Error; err != nil {
			if isDuplicateKeyError(err) {
				return newsletter.NewAlreadySubscribedError()
			}
			return err
		}
		s.IncrementVersionForSave()
		return nil
	}

	subscriberPO.Version = s.Version() + 1
	found, updated, err := versionedUpdate(db, subscriberPO, s.ID(), s.Version(),
		"email", "confirmation_token", "unsubscribe_token", "is_confirmed", "is_active")
	if err != nil {
		if isDuplicateKeyError(err) {
			return newsletter.NewAlreadySubscribedError()
		}
		return err
	}
	if !found || !updated {
		return shared.NewConflictError("subscriber", "subscriber "+s.ID()+" was modified by another transaction, please retry")
	}
	s.IncrementVersionForSave()
	return nil
}

func (r *SubscriberRepository) findOne(query *gorm.DB) (*newsletter.Subscriber, error) {
	var subscriberPO po.SubscriberPO
	if err := query.First(&subscriberPO).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return subscriberPO.ToDomain(), nil
}

var _ newsletter.Repository = (*SubscriberRepository)(nil)

package mysql

import (
	"context"
	"errors"

	"storefront/domain/cart"
	"storefront/domain/shared"
	"storefront/infrastructure/persistence/mysql/po"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository MySQL/GORM cart store, one cart row per user
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) NextIdentity() string {
	return uuid.New().String()
}

func (r *CartRepository) FindByOwner(ctx context.Context, userID string) (*cart.Cart, error) {
	db := conn(ctx, r.db)
	var cartPO po.CartPO
	if err := db.First(&cartPO, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var itemPOs []po.CartItemPO
	if err := db.Where("cart_id = ?", cartPO.ID).Order("position ASC").Find(&itemPOs).Error; err != nil {
		return nil, err
	}
	return cartPO.ToDomain(itemPOs)
}

func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	cartPO, itemPOs := po.FromCartDomain(c)

	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		if c.Version() == 0 {
			cartPO.Version = 1
			if err := tx.Create(cartPO).Error; err != nil {
				if isDuplicateKeyError(err) {
					return shared.NewConflictError("cart", "cart "+c.ID()+" was modified by another transaction, please retry")
				}
				return err
			}
		} else {
			cartPO.Version = c.Version() + 1
			found, updated, err := versionedUpdate(tx, cartPO, c.ID(), c.Version(), "updated_at")
			if err != nil {
				return err
			}
			if !found || !updated {
				return shared.NewConflictError("cart", "cart "+c.ID()+" was modified by another transaction, please retry")
			}
			if err := tx.Where("cart_id = ?", c.ID()).Delete(&po.CartItemPO{}).Error; err != nil {
				return err
			}
		}
		if len(itemPOs) > 0 {
			return tx.Create(&itemPOs).Error
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.IncrementVersionForSave()
	return nil
}

// Clear drops the lines and bumps the version so a concurrent editor sees a conflict
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		var cartPO po.CartPO
		if err := tx.First(&cartPO, "user_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("cart_id = ?", cartPO.ID).Delete(&po.CartItemPO{}).Error; err != nil {
			return err
		}
		return tx.Model(&po.CartPO{}).Where("id = ?", cartPO.ID).
			Update("version", gorm.Expr("version + 1")).Error
	})
}

var _ cart.Repository = (*CartRepository)(nil)

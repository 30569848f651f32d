package mysql

import (
	"context"
	"errors"
	"strings"

	"storefront/domain/order"
	"storefront/domain/shared"
	"storefront/infrastructure/persistence/mysql/po"
	"storefront/infrastructure/persistence/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository MySQL/GORM implementation of order repository
// DDD principle: Repository is only responsible for persistence of aggregate roots, not event publishing
// GORM usage specification: Association features are prohibited to maintain DDD aggregate boundaries
type OrderRepository struct {
	db         *gorm.DB
	translator specification.OrderTranslator
}

// NewOrderRepository Create order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db, translator: specification.NewOrderTranslator()}
}

// NextIdentity Generate new order ID
func (r *OrderRepository) NextIdentity() string {
	return uuid.New().String()
}

// Save Save order (create or update)
// Note: Manually manage saving of orders and order items, do not use GORM associations
// When called within UoW.Execute(), it uses the transaction from context
// When called standalone, it creates its own transaction for atomicity
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	orderPO, itemPOs := po.FromOrderDomain(o)

	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		if o.Version() == 0 {
			return r.create(tx, orderPO, itemPOs)
		}
		return r.update(tx, o, orderPO, itemPOs)
	})
	if err != nil {
		return err
	}
	o.IncrementVersionForSave()
	return nil
}

func (r *OrderRepository) create(tx *gorm.DB, orderPO *po.OrderPO, itemPOs []po.OrderItemPO) error {
	orderPO.Version = 1
	if err := tx.Create(orderPO).Error; err != nil {
		if isDuplicateKeyError(err) {
			return order.NewTrackingIDAlreadyAssignedError(orderPO.ID)
		}
		return err
	}
	if len(itemPOs) > 0 {
		if err := tx.Create(&itemPOs).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepository) update(tx *gorm.DB, o *order.Order, orderPO *po.OrderPO, itemPOs []po.OrderItemPO) error {
	orderPO.Version = o.Version() + 1
	found, updated, err := versionedUpdate(tx, orderPO, o.ID(), o.Version(),
		"user_id", "is_guest", "guest_first_name", "guest_last_name", "guest_email", "guest_phone",
		"shipping_street", "shipping_city", "shipping_state", "shipping_country",
		"payment_method", "payment_status", "status", "total_amount", "currency", "tracking_id",
		"payment_reference", "payment_authorization_code", "payment_channel", "payment_currency",
		"payment_ip_address", "payment_fees", "paid_at", "delivered_at", "updated_at")
	if err != nil {
		if isDuplicateKeyError(err) {
			return order.NewTrackingIDAlreadyAssignedError(o.ID())
		}
		return err
	}
	if !found {
		return order.NewOrderNotFoundError(o.ID())
	}
	if !updated {
		return order.NewConcurrentModificationError(o.ID())
	}

	// Delete old order items (simple strategy: delete then insert)
	if err := tx.Where("order_id = ?", o.ID()).Delete(&po.OrderItemPO{}).Error; err != nil {
		return err
	}
	if len(itemPOs) > 0 {
		if err := tx.Create(&itemPOs).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID Find order by ID
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	return r.findOne(ctx, id, conn(ctx, r.db).Where("id = ?", id))
}

func (r *OrderRepository) FindByIDForUser(ctx context.Context, id, userID string) (*order.Order, error) {
	if userID == "" {
		return nil, order.NewOrderNotFoundError(id)
	}
	return r.findOne(ctx, id, conn(ctx, r.db).Where("id = ? AND user_id = ?", id, userID))
}

// FindByTrackingID guest orders only; the email comparison is case-insensitive
func (r *OrderRepository) FindByTrackingID(ctx context.Context, trackingID, email string) (*order.Order, error) {
	query := conn(ctx, r.db).Where("tracking_id = ? AND is_guest = ?", trackingID, true)
	if email != "" {
		query = query.Where("LOWER(guest_email) = ?", strings.ToLower(email))
	}
	o, err := r.findOne(ctx, trackingID, query)
	if errors.Is(err, order.ErrOrderNotFound) {
		return nil, order.NewGuestOrderNotFoundError(trackingID)
	}
	return o, err
}

// FindByUserID Find order list by user ID
func (r *OrderRepository) FindByUserID(ctx context.Context, userID string) ([]*order.Order, error) {
	return r.findMany(ctx, conn(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC"))
}

// FindAll known specifications run in SQL; anything else is filtered after loading
func (r *OrderRepository) FindAll(ctx context.Context, spec shared.Specification[*order.Order]) ([]*order.Order, error) {
	query := conn(ctx, r.db).Order("created_at DESC")
	scope, ok := r.translator.Translate(spec)
	if ok {
		return r.findMany(ctx, query.Scopes(scope))
	}

	orders, err := r.findMany(ctx, query)
	if err != nil {
		return nil, err
	}
	matched := orders[:0]
	for _, o := range orders {
		if spec.IsSatisfiedBy(o) {
			matched = append(matched, o)
		}
	}
	return matched, nil
}

func (r *OrderRepository) findOne(ctx context.Context, id string, query *gorm.DB) (*order.Order, error) {
	var orderPO po.OrderPO
	if err := query.First(&orderPO).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NewOrderNotFoundError(id)
		}
		return nil, err
	}

	// Manually query order items (do not use GORM's Preload to keep aggregate boundaries clear)
	var itemPOs []po.OrderItemPO
	if err := conn(ctx, r.db).Where("order_id = ?", orderPO.ID).Order("position ASC").Find(&itemPOs).Error; err != nil {
		return nil, err
	}
	return orderPO.ToDomain(itemPOs)
}

// findMany loads the items of every order in one query
func (r *OrderRepository) findMany(ctx context.Context, query *gorm.DB) ([]*order.Order, error) {
	var orderPOs []po.OrderPO
	if err := query.Find(&orderPOs).Error; err != nil {
		return nil, err
	}
	if len(orderPOs) == 0 {
		return []*order.Order{}, nil
	}

	ids := make([]string, len(orderPOs))
	for i, orderPO := range orderPOs {
		ids[i] = orderPO.ID
	}
	var itemPOs []po.OrderItemPO
	if err := conn(ctx, r.db).Where("order_id IN ?", ids).Order("order_id, position ASC").Find(&itemPOs).Error; err != nil {
		return nil, err
	}
	itemsByOrder := make(map[string][]po.OrderItemPO, len(orderPOs))
	for _, item := range itemPOs {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	orders := make([]*order.Order, len(orderPOs))
	for i := range orderPOs {
		o, err := orderPOs[i].ToDomain(itemsByOrder[orderPOs[i].ID])
		if err != nil {
			return nil, err
		}
		orders[i] = o
	}
	return orders, nil
}

// Compile-time interface implementation check
var _ order.Repository = (*OrderRepository)(nil)

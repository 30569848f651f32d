package po

import (
	"time"

	"storefront/domain/cart"
)

// CartPO one cart per user
type CartPO struct {
	ID        string `gorm:"primaryKey;size:64"`
	UserID    string `gorm:"size:64;uniqueIndex;not null"`
	Version   int    `gorm:"default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartPO) TableName() string {
	return "carts"
}

// CartItemPO cart line; Price is the unit price
type CartItemPO struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	CartID      string `gorm:"size:64;index;not null"`
	Position    int    `gorm:"not null"`
	ProductID   string `gorm:"size:64;not null"`
	ProductName string `gorm:"size:255;not null"`
	Quantity    int    `gorm:"not null"`
	Price       string `gorm:"type:decimal(14,2);not null"`
	Currency    string `gorm:"size:3;not null"`
}

func (CartItemPO) TableName() string {
	return "cart_items"
}

func FromCartDomain(c *cart.Cart) (*CartPO, []CartItemPO) {
	dto := c.ToDTO()
	cartPO := &CartPO{
		ID:        dto.ID,
		UserID:    dto.UserID,
		Version:   dto.Version,
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
	}
	itemPOs := make([]CartItemPO, len(dto.Items))
	for i, item := range dto.Items {
		itemPOs[i] = CartItemPO{
			CartID:      dto.ID,
			Position:    i,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       moneyColumn(item.Price),
			Currency:    item.Price.Currency(),
		}
	}
	return cartPO, itemPOs
}

// ToDomain items must be ordered by position; the total is recomputed by the aggregate
func (po *CartPO) ToDomain(itemPOs []CartItemPO) (*cart.Cart, error) {
	items := make([]cart.Item, len(itemPOs))
	for i, itemPO := range itemPOs {
		price, err := parseMoneyColumn("cart_items.price", itemPO.Price, itemPO.Currency)
		if err != nil {
			return nil, err
		}
		items[i] = cart.Item{
			ProductID:   itemPO.ProductID,
			ProductName: itemPO.ProductName,
			Quantity:    itemPO.Quantity,
			Price:       price,
		}
	}
	return cart.RebuildFromDTO(cart.ReconstructionDTO{
		ID:        po.ID,
		UserID:    po.UserID,
		Items:     items,
		Version:   po.Version,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}), nil
}

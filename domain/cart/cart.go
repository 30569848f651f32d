/*
Package cart Shopping cart subdomain.

A user has at most one cart. Item prices are unit prices refreshed from the
live catalog on every add or update; totalPrice is always derived from the
items and never taken from input. Clearing empties the items but keeps the
cart's identity.
*/
package cart

import (
	"fmt"
	"time"

	"storefront/domain/product"
	"storefront/domain/shared"
)

const (
	ReasonCartNotFound     = "CART_NOT_FOUND"
	ReasonItemNotInCart    = "ITEM_NOT_IN_CART"
	ReasonInvalidQuantity  = "INVALID_QUANTITY"
	ReasonOutOfStock       = "OUT_OF_STOCK"
	ReasonNotEnoughInStock = "INSUFFICIENT_STOCK"
)

// Item cart line; Price is the unit price
type Item struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       shared.Money
}

// Cart aggregate root
type Cart struct {
	id         string
	userID     string
	items      []Item
	totalPrice shared.Money
	version    int
	createdAt  time.Time
	updatedAt  time.Time
}

// NewCart empty cart for a user
func NewCart(id, userID string) (*Cart, error) {
	if userID == "" {
		return nil, shared.NewValidationError("cart", "user", "cart owner is required")
	}
	now := time.Now()
	return &Cart{
		id:         id,
		userID:     userID,
		totalPrice: shared.ZeroMoney(shared.DefaultCurrency),
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// AddItem adds quantity of a product; the stock check counts what is already in the cart
func (c *Cart) AddItem(p *product.Product, quantity int) error {
	if quantity < 1 {
		return newInvalidQuantityError()
	}

	idx := c.indexOf(p.ID())
	inCart := 0
	if idx >= 0 {
		inCart = c.items[idx].Quantity
	}
	if err := checkStock(p, quantity, inCart); err != nil {
		return err
	}

	if idx >= 0 {
		c.items[idx].Quantity += quantity
		c.items[idx].Price = p.Price()
		c.items[idx].ProductName = p.Name()
	} else {
		c.items = append(c.items, Item{
			ProductID:   p.ID(),
			ProductName: p.Name(),
			Quantity:    quantity,
			Price:       p.Price(),
		})
	}
	c.recalculate()
	return nil
}

// UpdateItem sets the quantity of an item already in the cart
func (c *Cart) UpdateItem(p *product.Product, quantity int) error {
	if quantity < 1 {
		return newInvalidQuantityError()
	}
	idx := c.indexOf(p.ID())
	if idx < 0 {
		return newItemNotInCartError()
	}
	if err := checkStock(p, quantity, 0); err != nil {
		return err
	}

	c.items[idx].Quantity = quantity
	c.items[idx].Price = p.Price()
	c.items[idx].ProductName = p.Name()
	c.recalculate()
	return nil
}

// RemoveItem drops a product from the cart
func (c *Cart) RemoveItem(productID string) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return newItemNotInCartError()
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	c.recalculate()
	return nil
}

// Clear empties the cart, keeping its identity
func (c *Cart) Clear() {
	c.items = nil
	c.recalculate()
}

func (c *Cart) indexOf(productID string) int {
	for i, item := range c.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// recalculate derives totalPrice as the sum of price × quantity
func (c *Cart) recalculate() {
	total := shared.ZeroMoney(shared.DefaultCurrency)
	for _, item := range c.items {
		// single currency store; Add only fails on mismatched currencies
		if sum, err := total.Add(item.Price.Multiply(item.Quantity)); err == nil {
			total = sum
		}
	}
	c.totalPrice = total
	c.updatedAt = time.Now()
}

func checkStock(p *product.Product, requested, inCart int) error {
	if p.IsOutOfStock() || !p.InStock() {
		return shared.NewError(shared.ErrInvalidInput, "cart", ReasonOutOfStock, "quantity",
			"Product is currently out of stock")
	}
	if p.Quantity() < requested {
		return shared.NewError(shared.ErrInvalidInput, "cart", ReasonNotEnoughInStock, "quantity",
			fmt.Sprintf("Only %d items available in stock", p.Quantity()))
	}
	if p.Quantity() < requested+inCart {
		return shared.NewError(shared.ErrInvalidInput, "cart", ReasonNotEnoughInStock, "quantity",
			fmt.Sprintf("Cannot add %d items. Only %d more items can be added (%d total available, %d already in cart)",
				requested, p.Quantity()-inCart, p.Quantity(), inCart))
	}
	return nil
}

func newInvalidQuantityError() error {
	return shared.NewError(shared.ErrInvalidInput, "cart", ReasonInvalidQuantity, "quantity", "Quantity must be at least 1")
}

func newItemNotInCartError() error {
	return shared.NewError(shared.ErrNotFound, "cart", ReasonItemNotInCart, "productId", "Item not found in cart")
}

// NewCartNotFoundError 404 for a user without a cart
func NewCartNotFoundError() error {
	return shared.NewError(shared.ErrNotFound, "cart", ReasonCartNotFound, "", "Cart not found")
}

// ============================================================================
// Reconstruction
// ============================================================================

// ReconstructionDTO persisted state of a cart
type ReconstructionDTO struct {
	ID        string
	UserID    string
	Items     []Item
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RebuildFromDTO rebuilds a cart; the total is recomputed, never loaded
func RebuildFromDTO(dto ReconstructionDTO) *Cart {
	c := &Cart{
		id:        dto.ID,
		userID:    dto.UserID,
		items:     append([]Item(nil), dto.Items...),
		version:   dto.Version,
		createdAt: dto.CreatedAt,
	}
	c.recalculate()
	c.updatedAt = dto.UpdatedAt
	return c
}

// ToDTO snapshot for persistence
func (c *Cart) ToDTO() ReconstructionDTO {
	return ReconstructionDTO{
		ID:        c.id,
		UserID:    c.userID,
		Items:     c.Items(),
		Version:   c.version,
		CreatedAt: c.createdAt,
		UpdatedAt: c.updatedAt,
	}
}

func (c *Cart) ID() string                       { return c.id }
func (c *Cart) UserID() string                   { return c.userID }
func (c *Cart) TotalPrice() shared.Money         { return c.totalPrice }
func (c *Cart) Version() int                     { return c.version }
func (c *Cart) CreatedAt() time.Time             { return c.createdAt }
func (c *Cart) UpdatedAt() time.Time             { return c.updatedAt }
func (c *Cart) IsEmpty() bool                    { return len(c.items) == 0 }
func (c *Cart) PullEvents() []shared.DomainEvent { return nil }

// Items copy of the cart lines
func (c *Cart) Items() []Item {
	return append([]Item(nil), c.items...)
}

// TotalItems sum of quantities
func (c *Cart) TotalItems() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// IncrementVersionForSave bumps the optimistic lock version
func (c *Cart) IncrementVersionForSave() {
	c.version++
}

var _ shared.AggregateRoot = (*Cart)(nil)

/*
Package cart Application Layer - shopping cart use cases.

Every call acts on the cart of the identity passed in; prices are always
taken from the live catalog.
*/
package cart

import (
	"context"

	"storefront/domain/cart"
	"storefront/domain/product"
	"storefront/domain/shared"
)

// ApplicationService cart application service
type ApplicationService struct {
	carts    cart.Repository
	products product.Repository
}

func NewApplicationService(carts cart.Repository, products product.Repository) *ApplicationService {
	return &ApplicationService{carts: carts, products: products}
}

// GetCart returns an empty view when the user has no cart yet
func (s *ApplicationService) GetCart(ctx context.Context, identity shared.Identity) (*CartResponse, error) {
	if err := identity.RequireUser(); err != nil {
		return nil, err
	}
	c, err := s.carts.FindByOwner(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return emptyCart(identity.ID), nil
	}
	return toCartResponse(c), nil
}

// AddToCart creates the cart lazily on first add
func (s *ApplicationService) AddToCart(ctx context.Context, identity shared.Identity, req AddItemRequest) (*CartResponse, error) {
	if err := identity.RequireUser(); err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	c, err := s.carts.FindByOwner(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		if c, err = cart.NewCart(s.carts.NextIdentity(), identity.ID); err != nil {
			return nil, err
		}
	}
	if err := c.AddItem(p, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return toCartResponse(c), nil
}

// UpdateCartItem sets the quantity of a line already in the cart
func (s *ApplicationService) UpdateCartItem(ctx context.Context, identity shared.Identity, req UpdateItemRequest) (*CartResponse, error) {
	if err := identity.RequireUser(); err != nil {
		return nil, err
	}
	c, err := s.requireCart(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateItem(p, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return toCartResponse(c), nil
}

// RemoveFromCart drops one product
func (s *ApplicationService) RemoveFromCart(ctx context.Context, identity shared.Identity, productID string) (*CartResponse, error) {
	if err := identity.RequireUser(); err != nil {
		return nil, err
	}
	c, err := s.requireCart(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveItem(productID); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return toCartResponse(c), nil
}

// ClearCart empties the cart; a missing cart is not an error
func (s *ApplicationService) ClearCart(ctx context.Context, identity shared.Identity) (*CartResponse, error) {
	if err := identity.RequireUser(); err != nil {
		return nil, err
	}
	if err := s.carts.Clear(ctx, identity.ID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, identity)
}

func (s *ApplicationService) requireCart(ctx context.Context, userID string) (*cart.Cart, error) {
	c, err := s.carts.FindByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, cart.NewCartNotFoundError()
	}
	return c, nil
}

func emptyCart(userID string) *CartResponse {
	return &CartResponse{
		User:       userID,
		Items:      []ItemResponse{},
		TotalPrice: shared.ZeroMoney(shared.DefaultCurrency).String(),
	}
}

func toCartResponse(c *cart.Cart) *CartResponse {
	items := make([]ItemResponse, 0, len(c.Items()))
	for _, item := range c.Items() {
		items = append(items, ItemResponse{
			Product:     item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price.String(),
			Subtotal:    item.Price.Multiply(item.Quantity).String(),
		})
	}
	updated := c.UpdatedAt()
	return &CartResponse{
		ID:         c.ID(),
		User:       c.UserID(),
		Items:      items,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice().String(),
		UpdatedAt:  &updated,
	}
}

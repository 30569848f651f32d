package order

import (
	"context"

	"storefront/domain/product"
	"storefront/domain/shared"
)

// ItemRequest client requested line; any client price is ignored
type ItemRequest struct {
	ProductID string
	Quantity  int
}

// ValidatedOrder validated snapshot lines and their total
type ValidatedOrder struct {
	Items       []LineItem
	TotalAmount shared.Money
}

// Validator order validation domain service.
// It only reads the catalog; stock is committed later, at settlement.
type Validator struct {
	catalog product.Repository
}

// NewValidator Create order validator
func NewValidator(catalog product.Repository) *Validator {
	return &Validator{catalog: catalog}
}

// Validate checks items against live stock and prices and computes snapshot line totals
func (v *Validator) Validate(ctx context.Context, items []ItemRequest, address ShippingAddress) (*ValidatedOrder, error) {
	if len(items) == 0 {
		return nil, NewEmptyOrderError()
	}
	if !address.IsComplete() {
		return nil, NewIncompleteAddressError()
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, NewInvalidQuantityError(item.ProductID)
		}
		ids = append(ids, item.ProductID)
	}

	products, err := v.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]LineItem, 0, len(items))
	total := shared.ZeroMoney(shared.DefaultCurrency)
	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			return nil, NewLineProductNotFoundError(item.ProductID)
		}
		if !p.HasStockFor(item.Quantity) {
			return nil, NewInsufficientStockError(p.ID(), p.Name(), p.Quantity(), item.Quantity)
		}

		linePrice := p.Price().Multiply(item.Quantity)
		total, err = total.Add(linePrice)
		if err != nil {
			return nil, err
		}

		lines = append(lines, LineItem{
			ProductID:   p.ID(),
			ProductName: p.Name(),
			Quantity:    item.Quantity,
			Price:       linePrice,
		})
	}

	return &ValidatedOrder{Items: lines, TotalAmount: total}, nil
}

package product

import (
	"errors"
	"fmt"

	"storefront/domain/shared"
)

var (
	// ErrProductNotFound product missing from the catalog
	ErrProductNotFound = errors.New("product not found")

	// ErrInsufficientStock conditional decrement guard failed
	ErrInsufficientStock = errors.New("insufficient stock")
)

const (
	ReasonProductNotFound   = "PRODUCT_NOT_FOUND"
	ReasonInsufficientStock = "INSUFFICIENT_STOCK"
	ReasonInvalidProduct    = "INVALID_PRODUCT"
)

// NewProductNotFoundError not found error naming the product id
func NewProductNotFoundError(id string) error {
	return &productError{
		DomainError: shared.NewError(shared.ErrNotFound, "product", ReasonProductNotFound, "product",
			fmt.Sprintf("Product with ID %s not found", id)),
		sentinel: ErrProductNotFound,
	}
}

// NewInsufficientStockError raised by the store when the stock guard fails
func NewInsufficientStockError(id string, requested int) error {
	return &productError{
		DomainError: shared.NewError(shared.ErrConflict, "product", ReasonInsufficientStock, "quantity",
			fmt.Sprintf("insufficient stock for product %s: requested %d", id, requested)),
		sentinel: ErrInsufficientStock,
	}
}

func newInvalidFieldError(field, message string) error {
	return shared.NewError(shared.ErrInvalidInput, "product", ReasonInvalidProduct, field, message)
}

// productError matches both the product sentinel and the shared one
type productError struct {
	*shared.DomainError
	sentinel error
}

func (e *productError) Is(target error) bool {
	return target == e.sentinel
}

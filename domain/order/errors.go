/*
Package order - order domain errors.

Every error is a *shared.DomainError (or wraps one) so the API layer can read
the sentinel, the machine reason and the creation-time stack uniformly.
*/
package order

import (
	"errors"
	"fmt"

	"storefront/domain/shared"
)

// ============================================================================
// Reasons
// ============================================================================

const (
	ReasonEmptyOrder           = "EMPTY_ORDER"
	ReasonIncompleteAddress    = "INCOMPLETE_ADDRESS"
	ReasonProductNotFound      = "PRODUCT_NOT_FOUND"
	ReasonInsufficientStock    = "INSUFFICIENT_STOCK"
	ReasonInvalidQuantity      = "INVALID_QUANTITY"
	ReasonInvalidGuestDetails  = "INVALID_GUEST_DETAILS"
	ReasonOrderNotFound        = "ORDER_NOT_FOUND"
	ReasonOrderAlreadyPaid     = "ORDER_ALREADY_PAID"
	ReasonAlreadyShipped       = "ALREADY_SHIPPED"
	ReasonAlreadyCancelled     = "ALREADY_CANCELLED"
	ReasonInvalidStatus        = "INVALID_STATUS"
	ReasonTrackingIDAssigned   = "TRACKING_ID_ALREADY_ASSIGNED"
	ReasonConcurrentModified   = "CONCURRENT_MODIFICATION"
	ReasonMissingParameters    = "MISSING_PARAMETERS"
	ReasonVerificationFailed   = "VERIFICATION_FAILED"
	ReasonGatewayUnavailable   = "GATEWAY_UNAVAILABLE"
	ReasonReferenceMismatch    = "REFERENCE_MISMATCH"
	ReasonSettlementInProgress = "SETTLEMENT_IN_PROGRESS"
	ReasonAmountMismatch       = "AMOUNT_MISMATCH"
	ReasonRefundRequired       = "REFUND_REQUIRED"
)

// client messages of payment provider failures
const (
	MessagePaymentInitFailed  = "Failed to initialize payment"
	MessagePaymentUnavailable = "Payment provider unavailable"
)

// ============================================================================
// Sentinels
// ============================================================================

var (
	// ErrOrderNotFound order missing or not visible to the caller
	ErrOrderNotFound = errors.New("order not found")

	// ErrConcurrentModification optimistic lock failure
	ErrConcurrentModification = errors.New("order was modified by another transaction, please retry")
)

// ============================================================================
// Constructors
// ============================================================================

// NewOrderNotFoundError 404 for a missing order
func NewOrderNotFoundError(orderID string) error {
	return &orderError{
		DomainError: shared.NewError(shared.ErrNotFound, "order", ReasonOrderNotFound, "", "Order not found"),
		sentinel:    ErrOrderNotFound,
		orderID:     orderID,
	}
}

// NewGuestOrderNotFoundError 404 for a tracking id lookup
func NewGuestOrderNotFoundError(trackingID string) error {
	return &orderError{
		DomainError: shared.NewError(shared.ErrNotFound, "order", ReasonOrderNotFound, "",
			"Order not found. Please check the tracking ID and email."),
		sentinel: ErrOrderNotFound,
		orderID:  trackingID,
	}
}

// NewConcurrentModificationError 409 for a stale version
func NewConcurrentModificationError(orderID string) error {
	return &orderError{
		DomainError: shared.NewError(shared.ErrConflict, "order", ReasonConcurrentModified, "",
			"order "+orderID+" was modified by another transaction, please retry"),
		sentinel: ErrConcurrentModification,
		orderID:  orderID,
	}
}

func NewEmptyOrderError() error {
	return shared.NewError(shared.ErrInvalidInput, "order", ReasonEmptyOrder, "items", "Order items are required")
}

func NewIncompleteAddressError() error {
	return shared.NewError(shared.ErrInvalidInput, "order", ReasonIncompleteAddress, "shippingAddress",
		"Complete shipping address is required")
}

func NewInvalidQuantityError(productID string) error {
	return shared.NewError(shared.ErrInvalidInput, "order", ReasonInvalidQuantity, "quantity",
		fmt.Sprintf("quantity for product %s must be at least 1", productID))
}

func NewLineProductNotFoundError(productID string) error {
	return shared.NewError(shared.ErrInvalidInput, "order", ReasonProductNotFound, "product",
		fmt.Sprintf("Product with ID %s not found", productID))
}

func NewInvalidGuestDetailsError(field, message string) error {
	return shared.NewError(shared.ErrInvalidInput, "order", ReasonInvalidGuestDetails, "guestDetails."+field, message)
}

func NewAlreadyPaidError(orderID string) error {
	return shared.NewError(shared.ErrBusinessRule, "order", ReasonOrderAlreadyPaid, "paymentStatus",
		"order "+orderID+" is already paid")
}

func NewCannotCancelPaidOrderError() error {
	return shared.NewError(shared.ErrBusinessRule, "order", ReasonOrderAlreadyPaid, "paymentStatus",
		"Cannot cancel a paid order. Please contact us for refund")
}

func NewAlreadyShippedError() error {
	return shared.NewError(shared.ErrBusinessRule, "order", ReasonAlreadyShipped, "orderStatus",
		"Cannot cancel an order that has already been shipped or delivered")
}

func NewAlreadyCancelledError() error {
	return shared.NewError(shared.ErrBusinessRule, "order", ReasonAlreadyCancelled, "orderStatus",
		"Order is already cancelled")
}

func NewTrackingIDAlreadyAssignedError(orderID string) error {
	return shared.NewError(shared.ErrConflict, "order", ReasonTrackingIDAssigned, "orderTrackingId",
		"tracking id of order "+orderID+" is already assigned")
}

// NewMissingParametersError verification called without reference or order id
func NewMissingParametersError() error {
	return shared.NewError(shared.ErrGateway, "payment", ReasonMissingParameters, "reference",
		"Reference and orderId required")
}

// NewVerificationFailedError provider did not report a successful transaction
func NewVerificationFailedError(message string) error {
	if message == "" {
		message = "Transaction verification failed"
	}
	return shared.NewError(shared.ErrGateway, "payment", ReasonVerificationFailed, "reference", message)
}

// NewGatewayUnavailableError provider unreachable or answered with a non-success response.
// message is shown to the caller; cause stays in the chain for logs.
func NewGatewayUnavailableError(message string, cause error) error {
	if message == "" {
		message = MessagePaymentUnavailable
	}
	e := shared.NewError(shared.ErrGateway, "payment", ReasonGatewayUnavailable, "", message)
	e.Cause = cause
	return e
}

// NewReferenceMismatchError the verified transaction belongs to another order
func NewReferenceMismatchError(reference, orderID string) error {
	return shared.NewError(shared.ErrGateway, "payment", ReasonReferenceMismatch, "reference",
		fmt.Sprintf("transaction %s does not belong to order %s", reference, orderID))
}

// NewAmountMismatchError the provider charged a different amount than the order total
func NewAmountMismatchError(reference string) error {
	return shared.NewError(shared.ErrGateway, "payment", ReasonAmountMismatch, "reference",
		"Transaction verification failed: amount of "+reference+" does not match the order total")
}

// NewSettlementInProgressError another request is settling the same reference
func NewSettlementInProgressError(reference string) error {
	return shared.NewError(shared.ErrConflict, "payment", ReasonSettlementInProgress, "reference",
		"payment "+reference+" is already being verified")
}

// ============================================================================
// Typed errors
// ============================================================================

// InsufficientStockError a line asks for more than the catalog holds
type InsufficientStockError struct {
	*shared.DomainError
	ProductID string
	Available int
	Requested int
}

// NewInsufficientStockError uses the product name in the human message
func NewInsufficientStockError(productID, productName string, available, requested int) error {
	return &InsufficientStockError{
		DomainError: shared.NewError(shared.ErrInvalidInput, "order", ReasonInsufficientStock, "quantity",
			productName+" is out of stock or insufficient quantity available"),
		ProductID: productID,
		Available: available,
		Requested: requested,
	}
}

// orderError matches both the order sentinel and the shared one
type orderError struct {
	*shared.DomainError
	sentinel error
	orderID  string
}

func (e *orderError) Is(target error) bool {
	return target == e.sentinel
}

/*
Package order Order subdomain.

The Order aggregate is created once at checkout and never deleted; it only
moves through its payment and fulfilment status enums. Line item prices are
snapshots (unit price × quantity at creation time) and are never recomputed
from the live catalog.

Owner is either an authenticated user or guest details, never both.
*/
package order

import (
	"strings"
	"time"

	"storefront/domain/shared"
)

// PaymentMethod payment provider selector
type PaymentMethod string

const PaymentMethodPaystack PaymentMethod = "paystack"

// ParsePaymentMethod defaults to paystack when empty
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case "", PaymentMethodPaystack:
		return PaymentMethodPaystack, nil
	}
	return "", shared.NewError(shared.ErrInvalidInput, "order", ReasonInvalidStatus, "paymentMethod",
		"unsupported payment method: "+s)
}

// RequiresGateway whether checkout must initiate an external payment session
func (m PaymentMethod) RequiresGateway() bool {
	return m == PaymentMethodPaystack
}

// PaymentStatus payment state
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// ParsePaymentStatus validates an admin supplied payment status
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return st, nil
	}
	return "", shared.NewError(shared.ErrInvalidInput, "order", ReasonInvalidStatus, "paymentStatus",
		"invalid payment status: "+s)
}

// Status fulfilment state
type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus validates an admin supplied order status
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", shared.NewError(shared.ErrInvalidInput, "order", ReasonInvalidStatus, "orderStatus",
		"invalid order status: "+s)
}

// ShippingAddress all fields required
type ShippingAddress struct {
	Street  string
	City    string
	State   string
	Country string
}

// IsComplete every field present
func (a ShippingAddress) IsComplete() bool {
	return strings.TrimSpace(a.Street) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.State) != "" &&
		strings.TrimSpace(a.Country) != ""
}

// LineItem snapshot line; Price is the line total
type LineItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       shared.Money
}

// PaymentDetails filled incrementally: Reference at initiation, the rest at verification
type PaymentDetails struct {
	Reference         string
	AuthorizationCode string
	Channel           string
	Currency          string
	IPAddress         string
	Fees              *shared.Money
	PaidAt            *time.Time
}

// merge copies non-empty fields of other, never overwriting an existing reference
func (d PaymentDetails) merge(other PaymentDetails) PaymentDetails {
	if d.Reference == "" {
		d.Reference = other.Reference
	}
	if other.AuthorizationCode != "" {
		d.AuthorizationCode = other.AuthorizationCode
	}
	if other.Channel != "" {
		d.Channel = other.Channel
	}
	if other.Currency != "" {
		d.Currency = other.Currency
	}
	if other.IPAddress != "" {
		d.IPAddress = other.IPAddress
	}
	if other.Fees != nil {
		fees := *other.Fees
		d.Fees = &fees
	}
	if other.PaidAt != nil {
		paidAt := *other.PaidAt
		d.PaidAt = &paidAt
	}
	return d
}

// Order aggregate root
type Order struct {
	id              string
	userID          string
	guest           *GuestDetails
	items           []LineItem
	shippingAddress ShippingAddress
	paymentMethod   PaymentMethod
	paymentStatus   PaymentStatus
	status          Status
	totalAmount     shared.Money
	trackingID      string
	paymentDetails  PaymentDetails
	placedAt        time.Time
	deliveredAt     *time.Time
	version         int
	createdAt       time.Time
	updatedAt       time.Time

	events []shared.DomainEvent
}

// ============================================================================
// Factory Methods
// ============================================================================

// NewUserOrder order owned by an authenticated user
func NewUserOrder(id, userID string, validated *ValidatedOrder, address ShippingAddress, method PaymentMethod) (*Order, error) {
	if userID == "" {
		return nil, shared.NewUnauthorizedError("user order requires an authenticated user")
	}
	o, err := newOrder(id, validated, address, method)
	if err != nil {
		return nil, err
	}
	o.userID = userID
	if err := o.AssignTrackingID(UserTrackingID(id)); err != nil {
		return nil, err
	}
	o.record(newOrderPlacedEvent(o))
	return o, nil
}

// NewGuestOrder order owned by a guest; details must already be validated
func NewGuestOrder(id string, guest GuestDetails, validated *ValidatedOrder, address ShippingAddress, method PaymentMethod, trackingID string) (*Order, error) {
	if err := guest.Validate(); err != nil {
		return nil, err
	}
	o, err := newOrder(id, validated, address, method)
	if err != nil {
		return nil, err
	}
	g := guest.normalized()
	o.guest = &g
	if err := o.AssignTrackingID(trackingID); err != nil {
		return nil, err
	}
	o.record(newOrderPlacedEvent(o))
	return o, nil
}

func newOrder(id string, validated *ValidatedOrder, address ShippingAddress, method PaymentMethod) (*Order, error) {
	if id == "" {
		return nil, shared.NewValidationError("order", "id", "order id is required")
	}
	if validated == nil || len(validated.Items) == 0 {
		return nil, NewEmptyOrderError()
	}
	if !address.IsComplete() {
		return nil, NewIncompleteAddressError()
	}
	if method == "" {
		method = PaymentMethodPaystack
	}

	now := time.Now()
	return &Order{
		id:              id,
		items:           append([]LineItem(nil), validated.Items...),
		shippingAddress: address,
		paymentMethod:   method,
		paymentStatus:   PaymentPending,
		status:          StatusProcessing,
		totalAmount:     validated.TotalAmount,
		paymentDetails:  PaymentDetails{Currency: validated.TotalAmount.Currency()},
		placedAt:        now,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ============================================================================
// Behaviour
// ============================================================================

// AssignTrackingID sets the tracking id exactly once
func (o *Order) AssignTrackingID(trackingID string) error {
	if trackingID == "" {
		return shared.NewValidationError("order", "orderTrackingId", "tracking id is required")
	}
	if o.trackingID != "" {
		if o.trackingID == trackingID {
			return nil
		}
		return NewTrackingIDAlreadyAssignedError(o.id)
	}
	o.trackingID = trackingID
	return nil
}

// AttachPaymentReference stores the gateway reference returned at initiation
func (o *Order) AttachPaymentReference(reference, currency string) {
	o.paymentDetails.Reference = reference
	if currency != "" {
		o.paymentDetails.Currency = currency
	}
	o.touch()
}

// MarkPaid merges verified payment details and marks the order paid
func (o *Order) MarkPaid(details PaymentDetails, now time.Time) error {
	if o.paymentStatus == PaymentPaid {
		return NewAlreadyPaidError(o.id)
	}
	o.paymentDetails = o.paymentDetails.merge(details)
	if o.paymentDetails.PaidAt == nil {
		paidAt := now
		o.paymentDetails.PaidAt = &paidAt
	}
	o.paymentStatus = PaymentPaid
	o.touch()
	o.record(newOrderPaidEvent(o))
	return nil
}

// Cancel cancels an unpaid, unshipped order
func (o *Order) Cancel() error {
	if o.paymentStatus == PaymentPaid {
		return NewCannotCancelPaidOrderError()
	}
	if o.status == StatusShipped || o.status == StatusDelivered {
		return NewAlreadyShippedError()
	}
	if o.status == StatusCancelled {
		return NewAlreadyCancelledError()
	}
	o.status = StatusCancelled
	o.touch()
	o.record(newOrderCancelledEvent(o))
	return nil
}

// AdminUpdate fields an administrator may set directly
type AdminUpdate struct {
	OrderStatus   *Status
	PaymentStatus *PaymentStatus
}

// ApplyAdminUpdate sets the provided fields. delivered stamps deliveredAt;
// paid stamps paidAt unless it is already set.
func (o *Order) ApplyAdminUpdate(update AdminUpdate, now time.Time) {
	previousStatus, previousPayment := o.status, o.paymentStatus

	if update.OrderStatus != nil {
		o.status = *update.OrderStatus
		if o.status == StatusDelivered {
			deliveredAt := now
			o.deliveredAt = &deliveredAt
		}
	}
	if update.PaymentStatus != nil {
		o.paymentStatus = *update.PaymentStatus
		if o.paymentStatus == PaymentPaid && o.paymentDetails.PaidAt == nil {
			paidAt := now
			o.paymentDetails.PaidAt = &paidAt
		}
	}

	o.touch()
	if previousStatus != o.status || previousPayment != o.paymentStatus {
		o.record(newOrderStatusChangedEvent(o, previousStatus, previousPayment))
	}
}

// NeedsRefund the order was cancelled but a payment arrived for it
func (o *Order) NeedsRefund() bool {
	return o.status == StatusCancelled && o.paymentStatus == PaymentPaid
}

// IsOwnedBy whether an authenticated user owns the order
func (o *Order) IsOwnedBy(userID string) bool {
	return userID != "" && !o.IsGuestOrder() && o.userID == userID
}

// PayerEmail email the gateway charges: the guest's, or the given account email
func (o *Order) PayerEmail(accountEmail string) string {
	if o.guest != nil {
		return o.guest.Email
	}
	return accountEmail
}

func (o *Order) touch() {
	o.updatedAt = time.Now()
}

func (o *Order) record(event shared.DomainEvent) {
	o.events = append(o.events, event)
}

// ============================================================================
// ReconstructionDTO - repository use only
// ============================================================================

// ReconstructionDTO persisted state of an order
type ReconstructionDTO struct {
	ID              string
	UserID          string
	Guest           *GuestDetails
	Items           []LineItem
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	Status          Status
	TotalAmount     shared.Money
	TrackingID      string
	PaymentDetails  PaymentDetails
	PlacedAt        time.Time
	DeliveredAt     *time.Time
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RebuildFromDTO rebuilds an order from storage without recording events
func RebuildFromDTO(dto ReconstructionDTO) *Order {
	var guest *GuestDetails
	if dto.Guest != nil {
		g := *dto.Guest
		guest = &g
	}
	return &Order{
		id:              dto.ID,
		userID:          dto.UserID,
		guest:           guest,
		items:           append([]LineItem(nil), dto.Items...),
		shippingAddress: dto.ShippingAddress,
		paymentMethod:   dto.PaymentMethod,
		paymentStatus:   dto.PaymentStatus,
		status:          dto.Status,
		totalAmount:     dto.TotalAmount,
		trackingID:      dto.TrackingID,
		paymentDetails:  dto.PaymentDetails,
		placedAt:        dto.PlacedAt,
		deliveredAt:     dto.DeliveredAt,
		version:         dto.Version,
		createdAt:       dto.CreatedAt,
		updatedAt:       dto.UpdatedAt,
	}
}

// ToDTO snapshot for persistence
func (o *Order) ToDTO() ReconstructionDTO {
	return ReconstructionDTO{
		ID:              o.id,
		UserID:          o.userID,
		Guest:           o.GuestDetails(),
		Items:           o.Items(),
		ShippingAddress: o.shippingAddress,
		PaymentMethod:   o.paymentMethod,
		PaymentStatus:   o.paymentStatus,
		Status:          o.status,
		TotalAmount:     o.totalAmount,
		TrackingID:      o.trackingID,
		PaymentDetails:  o.paymentDetails,
		PlacedAt:        o.placedAt,
		DeliveredAt:     o.deliveredAt,
		Version:         o.version,
		CreatedAt:       o.createdAt,
		UpdatedAt:       o.updatedAt,
	}
}

// ============================================================================
// Getters
// ============================================================================

func (o *Order) ID() string                       { return o.id }
func (o *Order) UserID() string                   { return o.userID }
func (o *Order) IsGuestOrder() bool               { return o.guest != nil }
func (o *Order) ShippingAddress() ShippingAddress { return o.shippingAddress }
func (o *Order) PaymentMethod() PaymentMethod     { return o.paymentMethod }
func (o *Order) PaymentStatus() PaymentStatus     { return o.paymentStatus }
func (o *Order) Status() Status                   { return o.status }
func (o *Order) TotalAmount() shared.Money        { return o.totalAmount }
func (o *Order) TrackingID() string               { return o.trackingID }
func (o *Order) PaymentDetails() PaymentDetails   { return o.paymentDetails }
func (o *Order) PlacedAt() time.Time              { return o.placedAt }
func (o *Order) DeliveredAt() *time.Time          { return o.deliveredAt }
func (o *Order) Version() int                     { return o.version }
func (o *Order) CreatedAt() time.Time             { return o.createdAt }
func (o *Order) UpdatedAt() time.Time             { return o.updatedAt }

// GuestDetails copy of the guest owner, nil for user orders
func (o *Order) GuestDetails() *GuestDetails {
	if o.guest == nil {
		return nil
	}
	g := *o.guest
	return &g
}

// Items copy of the line items
func (o *Order) Items() []LineItem {
	return append([]LineItem(nil), o.items...)
}

// PullEvents returns and clears recorded events
func (o *Order) PullEvents() []shared.DomainEvent {
	events := o.events
	o.events = nil
	return events
}

// IncrementVersionForSave bumps the optimistic lock version
func (o *Order) IncrementVersionForSave() {
	o.version++
}

var _ shared.AggregateRoot = (*Order)(nil)

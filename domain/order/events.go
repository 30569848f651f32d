package order

import "time"

type OrderPlacedEvent struct {
	orderID     string
	userID      string
	guest       bool
	trackingID  string
	totalAmount string
	currency    string
	occurredOn  time.Time
}

func newOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		orderID:     o.id,
		userID:      o.userID,
		guest:       o.IsGuestOrder(),
		trackingID:  o.trackingID,
		totalAmount: o.totalAmount.String(),
		currency:    o.totalAmount.Currency(),
		occurredOn:  time.Now(),
	}
}

func (e *OrderPlacedEvent) EventName() string      { return "order.placed" }
func (e *OrderPlacedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderPlacedEvent) GetAggregateID() string { return e.orderID }
func (e *OrderPlacedEvent) OrderID() string        { return e.orderID }

func (e *OrderPlacedEvent) Payload() map[string]any {
	return map[string]any{
		"order_id":       e.orderID,
		"user_id":        e.userID,
		"is_guest_order": e.guest,
		"tracking_id":    e.trackingID,
		"total_amount":   e.totalAmount,
		"currency":       e.currency,
	}
}

type OrderPaidEvent struct {
	orderID    string
	reference  string
	amount     string
	occurredOn time.Time
}

func newOrderPaidEvent(o *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		orderID:    o.id,
		reference:  o.paymentDetails.Reference,
		amount:     o.totalAmount.String(),
		occurredOn: time.Now(),
	}
}

func (e *OrderPaidEvent) EventName() string      { return "order.paid" }
func (e *OrderPaidEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderPaidEvent) GetAggregateID() string { return e.orderID }
func (e *OrderPaidEvent) OrderID() string        { return e.orderID }

func (e *OrderPaidEvent) Payload() map[string]any {
	return map[string]any{
		"order_id":  e.orderID,
		"reference": e.reference,
		"amount":    e.amount,
	}
}

type OrderCancelledEvent struct {
	orderID    string
	occurredOn time.Time
}

func newOrderCancelledEvent(o *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{orderID: o.id, occurredOn: time.Now()}
}

func (e *OrderCancelledEvent) EventName() string      { return "order.cancelled" }
func (e *OrderCancelledEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderCancelledEvent) GetAggregateID() string { return e.orderID }
func (e *OrderCancelledEvent) OrderID() string        { return e.orderID }

func (e *OrderCancelledEvent) Payload() map[string]any {
	return map[string]any{"order_id": e.orderID}
}

type OrderStatusChangedEvent struct {
	orderID         string
	previousStatus  Status
	status          Status
	previousPayment PaymentStatus
	payment         PaymentStatus
	occurredOn      time.Time
}

func newOrderStatusChangedEvent(o *Order, previousStatus Status, previousPayment PaymentStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		orderID:         o.id,
		previousStatus:  previousStatus,
		status:          o.status,
		previousPayment: previousPayment,
		payment:         o.paymentStatus,
		occurredOn:      time.Now(),
	}
}

func (e *OrderStatusChangedEvent) EventName() string      { return "order.status_changed" }
func (e *OrderStatusChangedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderStatusChangedEvent) GetAggregateID() string { return e.orderID }
func (e *OrderStatusChangedEvent) OrderID() string        { return e.orderID }

func (e *OrderStatusChangedEvent) Payload() map[string]any {
	return map[string]any{
		"order_id":                e.orderID,
		"previous_order_status":   string(e.previousStatus),
		"order_status":            string(e.status),
		"previous_payment_status": string(e.previousPayment),
		"payment_status":          string(e.payment),
	}
}

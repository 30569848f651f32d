package order

import "time"

// ItemRequest one requested line; any client supplied price is ignored
type ItemRequest struct {
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// AddressRequest shipping address input
type AddressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// CreateOrderRequest authenticated checkout input
type CreateOrderRequest struct {
	Items           []ItemRequest  `json:"items"`
	ShippingAddress AddressRequest `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
}

// GuestDetailsRequest guest contact input
type GuestDetailsRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// CreateGuestOrderRequest guest checkout input
type CreateGuestOrderRequest struct {
	CreateOrderRequest
	GuestDetails *GuestDetailsRequest `json:"guestDetails"`
}

// UpdateOrderStatusRequest admin update; absent fields are left untouched
type UpdateOrderStatusRequest struct {
	OrderStatus   *string `json:"orderStatus"`
	PaymentStatus *string `json:"paymentStatus"`
}

// ListOrdersRequest admin listing filter
type ListOrdersRequest struct {
	OrderStatus   string `form:"orderStatus"`
	PaymentStatus string `form:"paymentStatus"`
	GuestOnly     *bool  `form:"guestOnly"`
}

// OrderResponse order view
type OrderResponse struct {
	ID              string                 `json:"id"`
	User            string                 `json:"user,omitempty"`
	IsGuestOrder    bool                   `json:"isGuestOrder"`
	GuestDetails    *GuestDetailsResponse  `json:"guestDetails,omitempty"`
	Items           []LineItemResponse     `json:"items"`
	ShippingAddress AddressResponse        `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	PaymentStatus   string                 `json:"paymentStatus"`
	OrderStatus     string                 `json:"orderStatus"`
	TotalAmount     string                 `json:"totalAmount"`
	Currency        string                 `json:"currency"`
	OrderTrackingID string                 `json:"orderTrackingId"`
	PaymentDetails  PaymentDetailsResponse `json:"paymentDetails"`
	PlacedAt        time.Time              `json:"placedAt"`
	DeliveredAt     *time.Time             `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// GuestDetailsResponse guest contact view
type GuestDetailsResponse struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// LineItemResponse price is the line total captured at checkout
type LineItemResponse struct {
	Product     string `json:"product"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
}

// AddressResponse shipping address view
type AddressResponse struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// PaymentDetailsResponse gateway details view
type PaymentDetailsResponse struct {
	Reference         string     `json:"reference,omitempty"`
	AuthorizationCode string     `json:"authorizationCode,omitempty"`
	Channel           string     `json:"channel,omitempty"`
	Currency          string     `json:"currency,omitempty"`
	IPAddress         string     `json:"ipAddress,omitempty"`
	Fees              string     `json:"fees,omitempty"`
	PaidAt            *time.Time `json:"paidAt,omitempty"`
}

// PaymentResponse redirect information for the client
type PaymentResponse struct {
	AuthorizationURL string `json:"authorizationUrl"`
	Reference        string `json:"reference"`
}

// CreateOrderResponse created order plus payment session, when one was opened
type CreateOrderResponse struct {
	Order   *OrderResponse   `json:"order"`
	Payment *PaymentResponse `json:"payment,omitempty"`
}

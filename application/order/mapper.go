package order

import (
	"storefront/domain/order"
)

func toItemRequests(items []ItemRequest) []order.ItemRequest {
	requests := make([]order.ItemRequest, len(items))
	for i, item := range items {
		requests[i] = order.ItemRequest{ProductID: item.Product, Quantity: item.Quantity}
	}
	return requests
}

func toShippingAddress(a AddressRequest) order.ShippingAddress {
	return order.ShippingAddress{Street: a.Street, City: a.City, State: a.State, Country: a.Country}
}

func toGuestDetails(g *GuestDetailsRequest) order.GuestDetails {
	if g == nil {
		return order.GuestDetails{}
	}
	return order.GuestDetails{FirstName: g.FirstName, LastName: g.LastName, Email: g.Email, Phone: g.Phone}
}

func toOrderResponse(o *order.Order) *OrderResponse {
	items := make([]LineItemResponse, len(o.Items()))
	for i, item := range o.Items() {
		items[i] = LineItemResponse{
			Product:     item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price.String(),
		}
	}

	addr := o.ShippingAddress()
	details := o.PaymentDetails()
	resp := &OrderResponse{
		ID:              o.ID(),
		User:            o.UserID(),
		IsGuestOrder:    o.IsGuestOrder(),
		Items:           items,
		ShippingAddress: AddressResponse{Street: addr.Street, City: addr.City, State: addr.State, Country: addr.Country},
		PaymentMethod:   string(o.PaymentMethod()),
		PaymentStatus:   string(o.PaymentStatus()),
		OrderStatus:     string(o.Status()),
		TotalAmount:     o.TotalAmount().String(),
		Currency:        o.TotalAmount().Currency(),
		OrderTrackingID: o.TrackingID(),
		PaymentDetails: PaymentDetailsResponse{
			Reference:         details.Reference,
			AuthorizationCode: details.AuthorizationCode,
			Channel:           details.Channel,
			Currency:          details.Currency,
			IPAddress:         details.IPAddress,
			PaidAt:            details.PaidAt,
		},
		PlacedAt:    o.PlacedAt(),
		DeliveredAt: o.DeliveredAt(),
		CreatedAt:   o.CreatedAt(),
		UpdatedAt:   o.UpdatedAt(),
	}
	if details.Fees != nil {
		resp.PaymentDetails.Fees = details.Fees.String()
	}
	if g := o.GuestDetails(); g != nil {
		resp.GuestDetails = &GuestDetailsResponse{FirstName: g.FirstName, LastName: g.LastName, Email: g.Email, Phone: g.Phone}
	}
	return resp
}

func toOrderResponses(orders []*order.Order) []*OrderResponse {
	responses := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		responses[i] = toOrderResponse(o)
	}
	return responses
}

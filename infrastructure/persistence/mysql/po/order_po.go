package po

import (
	"database/sql"
	"time"

	"storefront/domain/order"
)

// OrderPO Order persistence object.
// Either UserID or the guest columns are set, never both.
// Defining GORM associations is prohibited here.
type OrderPO struct {
	ID     string         `gorm:"primaryKey;size:64"`
	UserID sql.NullString `gorm:"size:64;index"`

	IsGuest        bool   `gorm:"not null;default:false;index"`
	GuestFirstName string `gorm:"size:100"`
	GuestLastName  string `gorm:"size:100"`
	GuestEmail     string `gorm:"size:255;index"`
	GuestPhone     string `gorm:"size:50"`

	ShippingStreet  string `gorm:"size:255;not null"`
	ShippingCity    string `gorm:"size:100;not null"`
	ShippingState   string `gorm:"size:100;not null"`
	ShippingCountry string `gorm:"size:100;not null"`

	PaymentMethod string `gorm:"size:20;not null"`
	PaymentStatus string `gorm:"size:20;not null;index"`
	Status        string `gorm:"size:20;not null;index"`
	TotalAmount   string `gorm:"type:decimal(14,2);not null"`
	Currency      string `gorm:"size:3;not null"`
	TrackingID    string `gorm:"size:64;uniqueIndex;not null"`

	PaymentReference         string         `gorm:"size:100;index"`
	PaymentAuthorizationCode string         `gorm:"size:100"`
	PaymentChannel           string         `gorm:"size:50"`
	PaymentCurrency          string         `gorm:"size:3"`
	PaymentIPAddress         string         `gorm:"size:64"`
	PaymentFees              sql.NullString `gorm:"type:decimal(14,2)"`
	PaidAt                   *time.Time

	PlacedAt    time.Time `gorm:"not null"`
	DeliveredAt *time.Time
	Version     int       `gorm:"default:0"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (OrderPO) TableName() string {
	return "orders"
}

// OrderItemPO snapshot line; Price is the line total
type OrderItemPO struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	OrderID     string `gorm:"size:64;index;not null"` // Only store ID, no GORM association
	Position    int    `gorm:"not null"`
	ProductID   string `gorm:"size:64;not null"`
	ProductName string `gorm:"size:255;not null"`
	Quantity    int    `gorm:"not null"`
	Price       string `gorm:"type:decimal(14,2);not null"`
	Currency    string `gorm:"size:3;not null"`
}

func (OrderItemPO) TableName() string {
	return "order_items"
}

// FromOrderDomain Convert domain model to persistence objects
func FromOrderDomain(o *order.Order) (*OrderPO, []OrderItemPO) {
	dto := o.ToDTO()
	orderPO := &OrderPO{
		ID:              dto.ID,
		ShippingStreet:  dto.ShippingAddress.Street,
		ShippingCity:    dto.ShippingAddress.City,
		ShippingState:   dto.ShippingAddress.State,
		ShippingCountry: dto.ShippingAddress.Country,
		PaymentMethod:   string(dto.PaymentMethod),
		PaymentStatus:   string(dto.PaymentStatus),
		Status:          string(dto.Status),
		TotalAmount:     moneyColumn(dto.TotalAmount),
		Currency:        dto.TotalAmount.Currency(),
		TrackingID:      dto.TrackingID,

		PaymentReference:         dto.PaymentDetails.Reference,
		PaymentAuthorizationCode: dto.PaymentDetails.AuthorizationCode,
		PaymentChannel:           dto.PaymentDetails.Channel,
		PaymentCurrency:          dto.PaymentDetails.Currency,
		PaymentIPAddress:         dto.PaymentDetails.IPAddress,
		PaidAt:                   dto.PaymentDetails.PaidAt,

		PlacedAt:    dto.PlacedAt,
		DeliveredAt: dto.DeliveredAt,
		Version:     dto.Version,
		CreatedAt:   dto.CreatedAt,
		UpdatedAt:   dto.UpdatedAt,
	}
	if dto.UserID != "" {
		orderPO.UserID = sql.NullString{String: dto.UserID, Valid: true}
	}
	if dto.Guest != nil {
		orderPO.IsGuest = true
		orderPO.GuestFirstName = dto.Guest.FirstName
		orderPO.GuestLastName = dto.Guest.LastName
		orderPO.GuestEmail = dto.Guest.Email
		orderPO.GuestPhone = dto.Guest.Phone
	}
	if dto.PaymentDetails.Fees != nil {
		orderPO.PaymentFees = sql.NullString{String: moneyColumn(*dto.PaymentDetails.Fees), Valid: true}
	}

	itemPOs := make([]OrderItemPO, len(dto.Items))
	for i, item := range dto.Items {
		itemPOs[i] = OrderItemPO{
			OrderID:     dto.ID,
			Position:    i,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       moneyColumn(item.Price),
			Currency:    item.Price.Currency(),
		}
	}
	return orderPO, itemPOs
}

// ToDomain Convert persistence objects to domain model; items must be ordered by position
func (po *OrderPO) ToDomain(itemPOs []OrderItemPO) (*order.Order, error) {
	total, err := parseMoneyColumn("orders.total_amount", po.TotalAmount, po.Currency)
	if err != nil {
		return nil, err
	}

	items := make([]order.LineItem, len(itemPOs))
	for i, itemPO := range itemPOs {
		price, err := parseMoneyColumn("order_items.price", itemPO.Price, itemPO.Currency)
		if err != nil {
			return nil, err
		}
		items[i] = order.LineItem{
			ProductID:   itemPO.ProductID,
			ProductName: itemPO.ProductName,
			Quantity:    itemPO.Quantity,
			Price:       price,
		}
	}

	details := order.PaymentDetails{
		Reference:         po.PaymentReference,
		AuthorizationCode: po.PaymentAuthorizationCode,
		Channel:           po.PaymentChannel,
		Currency:          po.PaymentCurrency,
		IPAddress:         po.PaymentIPAddress,
		PaidAt:            po.PaidAt,
	}
	if po.PaymentFees.Valid {
		fees, err := parseMoneyColumn("orders.payment_fees", po.PaymentFees.String, po.Currency)
		if err != nil {
			return nil, err
		}
		details.Fees = &fees
	}

	var guest *order.GuestDetails
	if po.IsGuest {
		guest = &order.GuestDetails{
			FirstName: po.GuestFirstName,
			LastName:  po.GuestLastName,
			Email:     po.GuestEmail,
			Phone:     po.GuestPhone,
		}
	}

	return order.RebuildFromDTO(order.ReconstructionDTO{
		ID:     po.ID,
		UserID: po.UserID.String,
		Guest:  guest,
		Items:  items,
		ShippingAddress: order.ShippingAddress{
			Street:  po.ShippingStreet,
			City:    po.ShippingCity,
			State:   po.ShippingState,
			Country: po.ShippingCountry,
		},
		PaymentMethod:  order.PaymentMethod(po.PaymentMethod),
		PaymentStatus:  order.PaymentStatus(po.PaymentStatus),
		Status:         order.Status(po.Status),
		TotalAmount:    total,
		TrackingID:     po.TrackingID,
		PaymentDetails: details,
		PlacedAt:       po.PlacedAt,
		DeliveredAt:    po.DeliveredAt,
		Version:        po.Version,
		CreatedAt:      po.CreatedAt,
		UpdatedAt:      po.UpdatedAt,
	}), nil
}

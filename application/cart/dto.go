package cart

import "time"

// AddItemRequest add or increase a line
type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest set a line's quantity
type UpdateItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// CartResponse cart view; item prices are unit prices
type CartResponse struct {
	ID         string         `json:"id,omitempty"`
	User       string         `json:"user"`
	Items      []ItemResponse `json:"items"`
	TotalItems int            `json:"totalItems"`
	TotalPrice string         `json:"totalPrice"`
	UpdatedAt  *time.Time     `json:"updatedAt,omitempty"`
}

// ItemResponse cart line view
type ItemResponse struct {
	Product     string `json:"product"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
	Subtotal    string `json:"subtotal"`
}

package product

import "time"

type ProductAddedEvent struct {
	productID  string
	name       string
	price      string
	occurredOn time.Time
}

func newProductAddedEvent(p *Product) *ProductAddedEvent {
	return &ProductAddedEvent{
		productID:  p.id,
		name:       p.name,
		price:      p.price.String(),
		occurredOn: time.Now(),
	}
}

func (e *ProductAddedEvent) EventName() string      { return "product.added" }
func (e *ProductAddedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *ProductAddedEvent) GetAggregateID() string { return e.productID }

func (e *ProductAddedEvent) Payload() map[string]any {
	return map[string]any{
		"product_id": e.productID,
		"name":       e.name,
		"price":      e.price,
	}
}

package order

import "storefront/domain/shared"

// ByStatusSpecification orders in a fulfilment status
type ByStatusSpecification struct {
	Status Status
}

func (s ByStatusSpecification) IsSatisfiedBy(o *Order) bool {
	return o.Status() == s.Status
}

// ByPaymentStatusSpecification orders in a payment status
type ByPaymentStatusSpecification struct {
	PaymentStatus PaymentStatus
}

func (s ByPaymentStatusSpecification) IsSatisfiedBy(o *Order) bool {
	return o.PaymentStatus() == s.PaymentStatus
}

// GuestOrderSpecification guest orders
type GuestOrderSpecification struct{}

func (GuestOrderSpecification) IsSatisfiedBy(o *Order) bool {
	return o.IsGuestOrder()
}

// ListFilter admin listing filter
type ListFilter struct {
	Status        *Status
	PaymentStatus *PaymentStatus
	GuestOnly     *bool
}

// Specification composes the filter; nil when nothing is set
func (f ListFilter) Specification() shared.Specification[*Order] {
	var specs []shared.Specification[*Order]
	if f.Status != nil {
		specs = append(specs, ByStatusSpecification{Status: *f.Status})
	}
	if f.PaymentStatus != nil {
		specs = append(specs, ByPaymentStatusSpecification{PaymentStatus: *f.PaymentStatus})
	}
	if f.GuestOnly != nil {
		if *f.GuestOnly {
			specs = append(specs, GuestOrderSpecification{})
		} else {
			specs = append(specs, shared.Not[*Order](GuestOrderSpecification{}))
		}
	}
	return shared.And(specs...)
}

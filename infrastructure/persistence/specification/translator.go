// Package specification turns order specifications into GORM scopes so the
// MySQL repository filters in SQL rather than in memory.
package specification

import (
	"storefront/domain/order"
	"storefront/domain/shared"

	"gorm.io/gorm"
)

// Scope GORM query modifier
type Scope func(*gorm.DB) *gorm.DB

// OrderTranslator converts order specifications into WHERE clauses.
// ok is false when the tree contains a specification it cannot express;
// callers then fall back to evaluating IsSatisfiedBy in memory.
type OrderTranslator struct{}

func NewOrderTranslator() OrderTranslator {
	return OrderTranslator{}
}

// Translate nil spec translates to a no-op scope
func (t OrderTranslator) Translate(spec shared.Specification[*order.Order]) (Scope, bool) {
	if spec == nil {
		return func(db *gorm.DB) *gorm.DB { return db }, true
	}

	switch s := spec.(type) {
	case shared.AndSpecification[*order.Order]:
		left, ok := t.Translate(s.Left)
		if !ok {
			return nil, false
		}
		right, ok := t.Translate(s.Right)
		if !ok {
			return nil, false
		}
		return func(db *gorm.DB) *gorm.DB { return right(left(db)) }, true
	case shared.NotSpecification[*order.Order]:
		return t.translateNot(s.Inner)
	}
	return t.translateConcrete(spec, false)
}

// translateNot only single-column predicates can be negated in place
func (t OrderTranslator) translateNot(spec shared.Specification[*order.Order]) (Scope, bool) {
	if inner, ok := spec.(shared.NotSpecification[*order.Order]); ok {
		return t.Translate(inner.Inner)
	}
	return t.translateConcrete(spec, true)
}

func (t OrderTranslator) translateConcrete(spec shared.Specification[*order.Order], negate bool) (Scope, bool) {
	op := "="
	if negate {
		op = "<>"
	}

	switch s := spec.(type) {
	case order.ByStatusSpecification:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("status "+op+" ?", string(s.Status))
		}, true
	case order.ByPaymentStatusSpecification:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("payment_status "+op+" ?", string(s.PaymentStatus))
		}, true
	case order.GuestOrderSpecification:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("is_guest = ?", !negate)
		}, true
	}

	return nil, false
}

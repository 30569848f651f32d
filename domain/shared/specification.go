package shared

// Specification business predicate over an entity.
// In-memory repositories evaluate IsSatisfiedBy directly; the MySQL layer
// translates known specifications into WHERE clauses.
type Specification[T any] interface {
	IsSatisfiedBy(entity T) bool
}

// AndSpecification both must hold
type AndSpecification[T any] struct {
	Left  Specification[T]
	Right Specification[T]
}

func (s AndSpecification[T]) IsSatisfiedBy(entity T) bool {
	return s.Left.IsSatisfiedBy(entity) && s.Right.IsSatisfiedBy(entity)
}

// And combines specifications; nil operands are ignored
func And[T any](specs ...Specification[T]) Specification[T] {
	var result Specification[T]
	for _, s := range specs {
		if s == nil {
			continue
		}
		if result == nil {
			result = s
			continue
		}
		result = AndSpecification[T]{Left: result, Right: s}
	}
	return result
}

// NotSpecification negation
type NotSpecification[T any] struct {
	Inner Specification[T]
}

func (s NotSpecification[T]) IsSatisfiedBy(entity T) bool {
	return !s.Inner.IsSatisfiedBy(entity)
}

// Not negates a specification
func Not[T any](spec Specification[T]) Specification[T] {
	return NotSpecification[T]{Inner: spec}
}

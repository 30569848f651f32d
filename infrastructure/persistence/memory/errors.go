package memory

import "storefront/domain/shared"

func errStaleProduct(id string) error {
	return shared.NewConflictError("product", "product "+id+" was modified by another transaction, please retry")
}

func errStale(entity, id string) error {
	return shared.NewConflictError(entity, entity+" "+id+" was modified by another transaction, please retry")
}

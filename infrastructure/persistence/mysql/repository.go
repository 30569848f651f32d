package mysql

import (
	"context"
	"errors"
	"strings"

	"storefront/infrastructure/persistence"

	"gorm.io/gorm"
)

// conn returns the transaction from context if available, otherwise the default db
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}

// inTx runs fn in the ambient UoW transaction, or opens its own for atomicity
func inTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return fn(tx)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Duplicate entry") ||
		strings.Contains(errStr, "1062")
}

// versionedUpdate strict optimistic lock: the row only changes when the stored
// version still matches. value must already carry version+1; columns lists
// what to write so zero values are not skipped. Returns (found, updated).
func versionedUpdate(tx *gorm.DB, value any, id string, version int, columns ...string) (bool, bool, error) {
	result := tx.Model(value).
		Where("id = ? AND version = ?", id, version).
		Select(append(columns, "version")).
		Updates(value)
	if result.Error != nil {
		return false, false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, true, nil
	}

	var count int64
	if err := tx.Model(value).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, false, err
	}
	return count > 0, false, nil
}

package mysql

import (
	"fmt"

	"storefront/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// Models every table owned by the service
func Models() []any {
	return []any{
		&po.ProductPO{},
		&po.OrderPO{},
		&po.OrderItemPO{},
		&po.CartPO{},
		&po.CartItemPO{},
		&po.SubscriberPO{},
		&po.AccountPO{},
		&po.OutboxEventPO{},
	}
}

// AutoMigrate creates or widens the schema; it never drops columns
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

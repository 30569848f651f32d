package po

import (
	"fmt"

	"storefront/domain/shared"
)

// amounts are stored as DECIMAL and read back as strings
func moneyColumn(m shared.Money) string {
	return m.Amount().StringFixed(2)
}

func parseMoneyColumn(column, value, currency string) (shared.Money, error) {
	m, err := shared.ParseMoney(value, currency)
	if err != nil {
		return shared.Money{}, fmt.Errorf("column %s: %w", column, err)
	}
	return m, nil
}

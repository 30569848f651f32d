package specification

import (
	"testing"

	"storefront/domain/order"
	"storefront/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type ordersTable struct {
	ID string
}

func (ordersTable) TableName() string { return "orders" }

type unsupported struct{}

func (unsupported) IsSatisfiedBy(*order.Order) bool { return true }

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:pass@tcp(127.0.0.1:3306)/shop",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func sqlFor(t *testing.T, scope Scope) (string, []any) {
	t.Helper()
	var rows []ordersTable
	stmt := dryRun(t).Scopes(scope).Find(&rows).Statement
	return stmt.SQL.String(), stmt.Vars
}

func TestTranslateListFilter(t *testing.T) {
	paid := order.PaymentPaid
	shipped := order.StatusShipped
	guestOnly := false

	scope, ok := NewOrderTranslator().Translate(order.ListFilter{
		Status:        &shipped,
		PaymentStatus: &paid,
		GuestOnly:     &guestOnly,
	}.Specification())
	require.True(t, ok)

	sql, vars := sqlFor(t, scope)
	assert.Contains(t, sql, "status = ?")
	assert.Contains(t, sql, "payment_status = ?")
	assert.Contains(t, sql, "is_guest = ?")
	assert.Equal(t, []any{"shipped", "paid", false}, vars)
}

func TestTranslateNegation(t *testing.T) {
	scope, ok := NewOrderTranslator().Translate(shared.Not[*order.Order](order.ByStatusSpecification{Status: order.StatusCancelled}))
	require.True(t, ok)

	sql, vars := sqlFor(t, scope)
	assert.Contains(t, sql, "status <> ?")
	assert.Equal(t, []any{"cancelled"}, vars)

	double := shared.Not(shared.Not[*order.Order](order.GuestOrderSpecification{}))
	scope, ok = NewOrderTranslator().Translate(double)
	require.True(t, ok)
	_, vars = sqlFor(t, scope)
	assert.Equal(t, []any{true}, vars)
}

func TestTranslateUnknownFallsBack(t *testing.T) {
	_, ok := NewOrderTranslator().Translate(shared.And[*order.Order](order.GuestOrderSpecification{}, unsupported{}))
	assert.False(t, ok)

	_, ok = NewOrderTranslator().Translate(shared.Not[*order.Order](shared.And[*order.Order](order.GuestOrderSpecification{}, order.GuestOrderSpecification{})))
	assert.False(t, ok)

	scope, ok := NewOrderTranslator().Translate(nil)
	require.True(t, ok)
	sql, _ := sqlFor(t, scope)
	assert.NotContains(t, sql, "WHERE")
}

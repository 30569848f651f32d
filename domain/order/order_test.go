package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront/domain/order"
	"storefront/domain/product"
	"storefront/domain/shared"
	"storefront/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var address = order.ShippingAddress{Street: "12 Allen Ave", City: "Ikeja", State: "Lagos", Country: "NG"}

func seed(t *testing.T, repo *memory.ProductRepository, price string, qty int) *product.Product {
	t.Helper()
	p, err := product.NewProduct(product.NewProductOptions{
		ID:          repo.NextIdentity(),
		Name:        "Hoodie " + price,
		Price:       price,
		Category:    "unisex",
		SubCategory: "hoodie",
		Quantity:    qty,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func TestValidatorUsesLiveCatalogPrices(t *testing.T) {
	catalog := memory.NewProductRepository()
	a := seed(t, catalog, "19.99", 10)
	b := seed(t, catalog, "5.50", 10)
	v := order.NewValidator(catalog)

	got, err := v.Validate(context.Background(), []order.ItemRequest{
		{ProductID: a.ID(), Quantity: 3},
		{ProductID: b.ID(), Quantity: 2},
	}, address)
	require.NoError(t, err)

	require.Len(t, got.Items, 2)
	assert.Equal(t, "59.97", got.Items[0].Price.String())
	assert.Equal(t, "11.00", got.Items[1].Price.String())
	assert.Equal(t, "70.97", got.TotalAmount.String())
}

func TestValidatorFailures(t *testing.T) {
	catalog := memory.NewProductRepository()
	p := seed(t, catalog, "10", 2)
	off := seed(t, catalog, "10", 5)
	inStock := false
	require.NoError(t, off.Update(product.Patch{InStock: &inStock}))
	require.NoError(t, catalog.Save(context.Background(), off))
	v := order.NewValidator(catalog)

	tests := []struct {
		name    string
		items   []order.ItemRequest
		address order.ShippingAddress
		reason  string
	}{
		{"empty", nil, address, order.ReasonEmptyOrder},
		{"incomplete address", []order.ItemRequest{{ProductID: p.ID(), Quantity: 1}}, order.ShippingAddress{Street: "x"}, order.ReasonIncompleteAddress},
		{"unknown product", []order.ItemRequest{{ProductID: "nope", Quantity: 1}}, address, order.ReasonProductNotFound},
		{"zero quantity", []order.ItemRequest{{ProductID: p.ID(), Quantity: 0}}, address, order.ReasonInvalidQuantity},
		{"more than stock", []order.ItemRequest{{ProductID: p.ID(), Quantity: 3}}, address, order.ReasonInsufficientStock},
		{"not in stock", []order.ItemRequest{{ProductID: off.ID(), Quantity: 1}}, address, order.ReasonInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(context.Background(), tt.items, tt.address)
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
			assert.Equal(t, tt.reason, shared.ReasonOf(err))
		})
	}
}

func TestValidatorInsufficientStockDetails(t *testing.T) {
	catalog := memory.NewProductRepository()
	p := seed(t, catalog, "10", 2)

	_, err := order.NewValidator(catalog).Validate(context.Background(),
		[]order.ItemRequest{{ProductID: p.ID(), Quantity: 5}}, address)

	var stockErr *order.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, p.ID(), stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, p.Name()+" is out of stock or insufficient quantity available", err.Error())
}

func TestValidatorIsReadOnlyAndRacy(t *testing.T) {
	catalog := memory.NewProductRepository()
	p := seed(t, catalog, "10", 1)
	v := order.NewValidator(catalog)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = v.Validate(context.Background(), []order.ItemRequest{{ProductID: p.ID(), Quantity: 1}}, address)
		}(i)
	}
	wg.Wait()

	// both pass the optimistic pre-check; stock is committed at settlement
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])

	stored, err := catalog.FindByID(context.Background(), p.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Quantity())
}

func validated() *order.ValidatedOrder {
	return &order.ValidatedOrder{
		Items:       []order.LineItem{{ProductID: "p1", ProductName: "Tee", Quantity: 2, Price: shared.MustParseMoney("20")}},
		TotalAmount: shared.MustParseMoney("20"),
	}
}

func TestTrackingIDs(t *testing.T) {
	gen := order.RandomTrackingIDGenerator{Now: func() time.Time { return time.UnixMilli(1700000000123) }}
	id := gen.NewGuestTrackingID()

	assert.True(t, order.IsGuestTrackingID(id), id)
	assert.Regexp(t, `^GUEST-1700000000123-[0-9a-z]{9}$`, id)

	u, err := order.NewUserOrder("o-1", "u-1", validated(), address, "")
	require.NoError(t, err)
	assert.Equal(t, "USER-o-1", u.TrackingID())
	assert.Equal(t, order.PaymentMethodPaystack, u.PaymentMethod())

	assert.NoError(t, u.AssignTrackingID("USER-o-1"))
	assert.ErrorIs(t, u.AssignTrackingID("USER-other"), shared.ErrConflict)
	assert.Equal(t, "USER-o-1", u.TrackingID())
}

func TestGuestDetailsValidation(t *testing.T) {
	tests := []struct {
		name  string
		guest order.GuestDetails
		ok    bool
	}{
		{"valid", order.GuestDetails{FirstName: "Ada", LastName: "Obi", Email: "ada@example.com"}, true},
		{"missing last name", order.GuestDetails{FirstName: "Ada", Email: "ada@example.com"}, false},
		{"missing email", order.GuestDetails{FirstName: "Ada", LastName: "Obi"}, false},
		{"bad email", order.GuestDetails{FirstName: "Ada", LastName: "Obi", Email: "not-an-email"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.guest.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
			assert.Equal(t, order.ReasonInvalidGuestDetails, shared.ReasonOf(err))
		})
	}
}

func TestMarkPaidPreservesReference(t *testing.T) {
	o, err := order.NewUserOrder("o-1", "u-1", validated(), address, order.PaymentMethodPaystack)
	require.NoError(t, err)
	o.AttachPaymentReference("ref-original", "NGN")

	fees := shared.MustParseMoney("1.50")
	require.NoError(t, o.MarkPaid(order.PaymentDetails{
		Reference:         "ref-other",
		AuthorizationCode: "AUTH_x",
		Channel:           "card",
		Fees:              &fees,
	}, time.Now()))

	d := o.PaymentDetails()
	assert.Equal(t, order.PaymentPaid, o.PaymentStatus())
	assert.Equal(t, "ref-original", d.Reference)
	assert.Equal(t, "AUTH_x", d.AuthorizationCode)
	assert.Equal(t, "card", d.Channel)
	assert.Equal(t, "NGN", d.Currency)
	require.NotNil(t, d.PaidAt)

	assert.Equal(t, order.ReasonOrderAlreadyPaid, shared.ReasonOf(o.MarkPaid(order.PaymentDetails{}, time.Now())))
}

func TestCancelRules(t *testing.T) {
	newOrder := func() *order.Order {
		o, err := order.NewUserOrder("o-1", "u-1", validated(), address, order.PaymentMethodPaystack)
		require.NoError(t, err)
		return o
	}

	paid := newOrder()
	require.NoError(t, paid.MarkPaid(order.PaymentDetails{}, time.Now()))
	assert.Equal(t, order.ReasonOrderAlreadyPaid, shared.ReasonOf(paid.Cancel()))
	assert.Equal(t, order.StatusProcessing, paid.Status())

	shipped := newOrder()
	st := order.StatusShipped
	shipped.ApplyAdminUpdate(order.AdminUpdate{OrderStatus: &st}, time.Now())
	assert.Equal(t, order.ReasonAlreadyShipped, shared.ReasonOf(shipped.Cancel()))

	o := newOrder()
	require.NoError(t, o.Cancel())
	assert.Equal(t, order.StatusCancelled, o.Status())
	assert.ErrorIs(t, o.Cancel(), shared.ErrBusinessRule)
	assert.Equal(t, order.ReasonAlreadyCancelled, shared.ReasonOf(o.Cancel()))
}

func TestAdminUpdateStamps(t *testing.T) {
	o, err := order.NewUserOrder("o-1", "u-1", validated(), address, order.PaymentMethodPaystack)
	require.NoError(t, err)
	o.PullEvents()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	delivered := order.StatusDelivered
	paid := order.PaymentPaid
	o.ApplyAdminUpdate(order.AdminUpdate{OrderStatus: &delivered, PaymentStatus: &paid}, now)

	require.NotNil(t, o.DeliveredAt())
	assert.Equal(t, now, *o.DeliveredAt())
	require.NotNil(t, o.PaymentDetails().PaidAt)
	assert.Equal(t, now, *o.PaymentDetails().PaidAt)

	later := now.Add(time.Hour)
	o.ApplyAdminUpdate(order.AdminUpdate{PaymentStatus: &paid}, later)
	assert.Equal(t, now, *o.PaymentDetails().PaidAt)

	events := o.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "order.status_changed", events[0].EventName())
}

func TestGuestAndUserOwnershipAreExclusive(t *testing.T) {
	g, err := order.NewGuestOrder("o-2", order.GuestDetails{FirstName: "A", LastName: "B", Email: "a@b.co"},
		validated(), address, order.PaymentMethodPaystack, "GUEST-1-abcdefghi")
	require.NoError(t, err)

	assert.True(t, g.IsGuestOrder())
	assert.Empty(t, g.UserID())
	assert.False(t, g.IsOwnedBy(""))
	assert.Equal(t, "a@b.co", g.PayerEmail("ignored@x.co"))

	_, err = order.NewUserOrder("o-3", "", validated(), address, order.PaymentMethodPaystack)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestParseStatuses(t *testing.T) {
	_, err := order.ParseStatus("lost")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = order.ParsePaymentStatus("maybe")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = order.ParsePaymentMethod("bitcoin")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	s, err := order.ParseStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, s)
}

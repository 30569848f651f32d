package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront/domain/cart"
	"storefront/domain/order"
	"storefront/domain/product"
	"storefront/domain/shared"
	"storefront/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu          sync.Mutex
	initiated   []string
	verified    []string
	initiateErr error
	verifyErr   error
	verifyFor   string
	amounts     map[string]int64
	charged     *int64
}

func (g *fakeGateway) Initiate(ctx context.Context, o *order.Order, payerEmail string) (*PaymentSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initiated = append(g.initiated, payerEmail)
	if g.initiateErr != nil {
		return nil, g.initiateErr
	}
	if g.amounts == nil {
		g.amounts = map[string]int64{}
	}
	g.amounts["ref-"+o.ID()] = o.TotalAmount().MinorUnits()
	return &PaymentSession{
		AuthorizationURL: "https://checkout.example/" + o.ID(),
		Reference:        "ref-" + o.ID(),
		Currency:         "NGN",
	}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, reference string) (*VerifiedPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verified = append(g.verified, reference)
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	fees := shared.MustParseMoney("1.50")
	paidAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	amount := g.amounts[reference]
	if g.charged != nil {
		amount = *g.charged
	}
	return &VerifiedPayment{
		Reference:         reference,
		OrderID:           g.verifyFor,
		AmountMinor:       amount,
		AuthorizationCode: "AUTH_123",
		Channel:           "card",
		Currency:          "NGN",
		Fees:              &fees,
		PaidAt:            &paidAt,
	}, nil
}

func (g *fakeGateway) calls() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.initiated), len(g.verified)
}

type harness struct {
	svc      *ApplicationService
	products *memory.ProductRepository
	orders   *memory.OrderRepository
	carts    *memory.CartRepository
	outbox   *memory.OutboxRepository
	gateway  *fakeGateway
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		products: memory.NewProductRepository(),
		orders:   memory.NewOrderRepository(),
		carts:    memory.NewCartRepository(),
		outbox:   memory.NewOutboxRepository(),
		gateway:  &fakeGateway{},
	}
	h.svc = NewApplicationService(Dependencies{
		Orders:   h.orders,
		Products: h.products,
		Carts:    h.carts,
		UoW:      memory.NewUnitOfWorkFactory(h.outbox),
		Gateway:  h.gateway,
		Lock:     memory.NewSettlementLock(),
	})
	return h
}

func (h *harness) seed(t *testing.T, name, price string, qty int) *product.Product {
	t.Helper()
	p, err := product.NewProduct(product.NewProductOptions{
		ID:          h.products.NextIdentity(),
		Name:        name,
		Price:       price,
		Category:    "women",
		SubCategory: "sweatshirt",
		Quantity:    qty,
	})
	require.NoError(t, err)
	require.NoError(t, h.products.Save(context.Background(), p))
	return p
}

func (h *harness) stock(t *testing.T, id string) (int, int) {
	t.Helper()
	p, err := h.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity(), p.Sold()
}

var (
	shopper = shared.UserIdentity("user-1", "shopper@example.com")
	admin   = shared.AdminIdentity("admin-1", "admin@example.com")
	addr    = AddressRequest{Street: "5 Marina", City: "Lagos", State: "Lagos", Country: "Nigeria"}
)

func checkout(p *product.Product, qty int) CreateOrderRequest {
	return CreateOrderRequest{Items: []ItemRequest{{Product: p.ID(), Quantity: qty}}, ShippingAddress: addr}
}

func TestCreateOrderPersistsAndInitiatesPayment(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Crewneck", "12.50", 4)

	resp, err := h.svc.CreateOrder(context.Background(), shopper, checkout(p, 2))
	require.NoError(t, err)

	assert.Equal(t, "25.00", resp.Order.TotalAmount)
	assert.Equal(t, "pending", resp.Order.PaymentStatus)
	assert.Equal(t, "processing", resp.Order.OrderStatus)
	assert.Equal(t, "USER-"+resp.Order.ID, resp.Order.OrderTrackingID)
	require.NotNil(t, resp.Payment)
	assert.Equal(t, "ref-"+resp.Order.ID, resp.Payment.Reference)
	assert.Equal(t, []string{"shopper@example.com"}, h.gateway.initiated)

	stored, err := h.orders.FindByID(context.Background(), resp.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ref-"+resp.Order.ID, stored.PaymentDetails().Reference)

	qty, _ := h.stock(t, p.ID())
	assert.Equal(t, 4, qty, "checkout reserves nothing")

	events := h.outbox.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "order.placed", events[0].EventType)
}

func TestCreateOrderRequiresUser(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Crewneck", "12.50", 4)

	_, err := h.svc.CreateOrder(context.Background(), shared.Guest(), checkout(p, 1))
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestCreateOrderValidationFailurePersistsNothing(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Crewneck", "12.50", 1)

	_, err := h.svc.CreateOrder(context.Background(), shopper, checkout(p, 3))
	require.Error(t, err)
	assert.Equal(t, order.ReasonInsufficientStock, shared.ReasonOf(err))

	orders, err := h.orders.FindAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
	initiated, _ := h.gateway.calls()
	assert.Zero(t, initiated)
}

func TestCreateOrderGatewayFailureLeavesPendingOrder(t *testing.T) {
	h := newHarness(t)
	h.gateway.initiateErr = order.NewGatewayUnavailableError("", nil)
	p := h.seed(t, "Crewneck", "12.50", 4)

	_, err := h.svc.CreateOrder(context.Background(), shopper, checkout(p, 1))
	assert.ErrorIs(t, err, shared.ErrGateway)

	orders, err := h.orders.FindByUserID(context.Background(), shopper.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.PaymentPending, orders[0].PaymentStatus())
	assert.Empty(t, orders[0].PaymentDetails().Reference)
}

func TestCreateGuestOrderRejectsBadEmailBeforeAnything(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Crewneck", "12.50", 4)

	_, err := h.svc.CreateGuestOrder(context.Background(), CreateGuestOrderRequest{
		CreateOrderRequest: checkout(p, 1),
		GuestDetails:       &GuestDetailsRequest{FirstName: "Ada", LastName: "Obi", Email: "not-an-email"},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Equal(t, order.ReasonInvalidGuestDetails, shared.ReasonOf(err))

	orders, err := h.orders.FindAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
	initiated, _ := h.gateway.calls()
	assert.Zero(t, initiated)

	_, err = h.svc.CreateGuestOrder(context.Background(), CreateGuestOrderRequest{CreateOrderRequest: checkout(p, 1)})
	assert.Equal(t, order.ReasonInvalidGuestDetails, shared.ReasonOf(err))
}

func TestCreateGuestOrderAndLookup(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Crewneck", "10", 4)

	resp, err := h.svc.CreateGuestOrder(context.Background(), CreateGuestOrderRequest{
		CreateOrderRequest: checkout(p, 1),
		GuestDetails:       &GuestDetailsRequest{FirstName: "Ada", LastName: "Obi", Email: "ada@example.com"},
	})
	require.NoError(t, err)

	assert.True(t, resp.Order.IsGuestOrder)
	assert.Empty(t, resp.Order.User)
	assert.Regexp(t, `^GUEST-\d+-[0-9a-z]{9}$`, resp.Order.OrderTrackingID)
	assert.Equal(t, []string{"ada@example.com"}, h.gateway.initiated)

	found, err := h.svc.GetGuestOrder(context.Background(), resp.Order.OrderTrackingID, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, resp.Order.ID, found.ID)

	_, err = h.svc.GetGuestOrder(context.Background(), resp.Order.OrderTrackingID, "eve@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.EqualError(t, err, "Order not found. Please check the tracking ID and email.")

	_, err = h.svc.GetGuestOrder(context.Background(), "", "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestConcurrentCheckoutForLastUnitBothPassValidation(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Last One", "30", 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	ids := make([]string, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := h.svc.CreateOrder(context.Background(), shopper, checkout(p, 1))
			errs[i] = err
			if err == nil {
				ids[i] = resp.Order.ID
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// only one of them can commit the unit at settlement
	first, err := h.svc.VerifyAndSettle(context.Background(), "ref-"+ids[0], ids[0])
	require.NoError(t, err)
	assert.True(t, first.Complete())

	second, err := h.svc.VerifyAndSettle(context.Background(), "ref-"+ids[1], ids[1])
	require.NoError(t, err)
	assert.False(t, second.Complete())
	assert.Equal(t, "paid", second.Order.PaymentStatus)
	step, ok := second.Step(StepDecrementStock)
	require.True(t, ok)
	assert.Equal(t, StepFailed, step.Status)
	require.Len(t, step.Failures, 1)
	assert.Equal(t, order.ReasonInsufficientStock, step.Failures[0].Reason)

	qty, sold := h.stock(t, p.ID())
	assert.Equal(t, 0, qty)
	assert.Equal(t, 1, sold)
}

func placeWithCart(t *testing.T, h *harness, p *product.Product, qty int) string {
	t.Helper()
	ctx := context.Background()
	c, err := cart.NewCart(h.carts.NextIdentity(), shopper.ID)
	require.NoError(t, err)
	require.NoError(t, c.AddItem(p, qty))
	require.NoError(t, h.carts.Save(ctx, c))

	resp, err := h.svc.CreateOrder(ctx, shopper, checkout(p, qty))
	require.NoError(t, err)
	return resp.Order.ID
}

func TestVerifyAndSettleAppliesEveryStep(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Hoodie", "20", 5)
	orderID := placeWithCart(t, h, p, 2)

	result, err := h.svc.VerifyAndSettle(context.Background(), "ref-"+orderID, orderID)
	require.NoError(t, err)

	assert.False(t, result.AlreadySettled)
	assert.True(t, result.Complete())
	require.Len(t, result.Steps, 3)
	assert.Equal(t, StepMarkPaid, result.Steps[0].Name)
	assert.Equal(t, StepDecrementStock, result.Steps[1].Name)
	assert.Equal(t, StepClearCart, result.Steps[2].Name)
	for _, step := range result.Steps {
		assert.Equal(t, StepSucceeded, step.Status, step.Name)
	}

	assert.Equal(t, "paid", result.Order.PaymentStatus)
	assert.Equal(t, "ref-"+orderID, result.Order.PaymentDetails.Reference)
	assert.Equal(t, "AUTH_123", result.Order.PaymentDetails.AuthorizationCode)
	assert.Equal(t, "1.50", result.Order.PaymentDetails.Fees)

	qty, sold := h.stock(t, p.ID())
	assert.Equal(t, 3, qty)
	assert.Equal(t, 2, sold)

	c, err := h.carts.FindByOwner(context.Background(), shopper.ID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestVerifyAndSettleIsIdempotent(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Hoodie", "20", 5)
	orderID := placeWithCart(t, h, p, 2)

	_, err := h.svc.VerifyAndSettle(context.Background(), "ref-"+orderID, orderID)
	require.NoError(t, err)

	again, err := h.svc.VerifyAndSettle(context.Background(), "ref-"+orderID, orderID)
	require.NoError(t, err)
	assert.True(t, again.AlreadySettled)
	assert.Empty(t, again.Steps)

	qty, sold := h.stock(t, p.ID())
	assert.Equal(t, 3, qty, "stock decremented once")
	assert.Equal(t, 2, sold)
	_, verified := h.gateway.calls()
	assert.Equal(t, 1, verified, "provider not asked twice")
}

func TestVerifyAndSettleConcurrentCallbacksSettleOnce(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Hoodie", "20", 5)
	orderID := placeWithCart(t, h, p, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.VerifyAndSettle(context.Background(), "ref-"+orderID, orderID)
			if err != nil {
				assert.Equal(t, order.ReasonSettlementInProgress, shared.ReasonOf(err))
			}
		}()
	}
	wg.Wait()

	qty, sold := h.stock(t, p.ID())
	assert.Equal(t, 3, qty)
	assert.Equal(t, 2, sold)
}

func TestVerifyAndSettleFailures(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Hoodie", "20", 5)
	orderID := placeWithCart(t, h, p, 1)
	ctx := context.Background()

	_, err := h.svc.VerifyAndSettle(ctx, "", orderID)
	assert.Equal(t, order.ReasonMissingParameters, shared.ReasonOf(err))

	_, err = h.svc.VerifyAndSettle(ctx, "ref-x", "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	h.gateway.verifyErr = order.NewVerificationFailedError("")
	_, err = h.svc.VerifyAndSettle(ctx, "ref-"+orderID, orderID)
	assert.Equal(t, order.ReasonVerificationFailed, shared.ReasonOf(err))

	h.gateway.verifyErr = nil
	h.gateway.verifyFor = "someone-else"
	_, err = h.svc.VerifyAndSettle(ctx, "ref-"+orderID, orderID)
	assert.Equal(t, order.ReasonReferenceMismatch, shared.ReasonOf(err))

	stored, err := h.orders.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentPending, stored.PaymentStatus())
	qty, _ := h.stock(t, p.ID())
	assert.Equal(t, 5, qty)
}

func TestVerifyAndSettleRejectsForeignPayment(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Hoodie", "20", 5)
	orderID := placeWithCart(t, h, p, 2)
	ctx := context.Background()

	undercharged := int64(100)
	h.gateway.charged = &undercharged
	_, err := h.svc.VerifyAndSettle(ctx, "ref-"+orderID, orderID)
	assert.ErrorIs(t, err, shared.ErrGateway)
	assert.Equal(t, order.ReasonAmountMismatch, shared.ReasonOf(err))

	// without metadata the reference must be the one stored at initiation
	h.gateway.charged = nil
	_, err = h.svc.VerifyAndSettle(ctx, "ref-elsewhere", orderID)
	assert.Equal(t, order.ReasonReferenceMismatch, shared.ReasonOf(err))

	stored, err := h.orders.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentPending, stored.PaymentStatus())
	qty, sold := h.stock(t, p.ID())
	assert.Equal(t, 5, qty)
	assert.Equal(t, 0, sold)

	result, err := h.svc.VerifyAndSettle(ctx, "ref-"+orderID, orderID)
	require.NoError(t, err)
	assert.True(t, result.Complete())
}

func TestVerifyAndSettleWithoutStoredReference(t *testing.T) {
	h := newHarness(t)
	h.gateway.initiateErr = order.NewGatewayUnavailableError("", nil)
	p := h.seed(t, "Hoodie", "20", 5)
	_, err := h.svc.CreateOrder(context.Background(), shopper, checkout(p, 1))
	require.Error(t, err)

	orders, err := h.orders.FindByUserID(context.Background(), shopper.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	orderID := orders[0].ID()

	_, err = h.svc.VerifyAndSettle(context.Background(), "ref-"+orderID, orderID)
	assert.Equal(t, order.ReasonReferenceMismatch, shared.ReasonOf(err))
}

func TestVerifyAndSettleCancelledOrderFlagsRefund(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Hoodie", "20", 5)
	orderID := placeWithCart(t, h, p, 2)
	ctx := context.Background()

	_, err := h.svc.CancelOrder(ctx, shopper, orderID)
	require.NoError(t, err)
	qty, sold := h.stock(t, p.ID())
	require.Equal(t, 7, qty)

	result, err := h.svc.VerifyAndSettle(ctx, "ref-"+orderID, orderID)
	require.NoError(t, err)
	assert.False(t, result.Complete())
	assert.True(t, result.RefundRequired())
	assert.Equal(t, "paid", result.Order.PaymentStatus)
	assert.Equal(t, "cancelled", result.Order.OrderStatus)

	for name, want := range map[StepName]StepStatus{
		StepMarkPaid:       StepSucceeded,
		StepDecrementStock: StepSkipped,
		StepClearCart:      StepSkipped,
		StepRefund:         StepFailed,
	} {
		step, ok := result.Step(name)
		require.True(t, ok, name)
		assert.Equal(t, want, step.Status, name)
	}
	refund, _ := result.Step(StepRefund)
	assert.Equal(t, order.ReasonRefundRequired, refund.Reason)

	afterQty, afterSold := h.stock(t, p.ID())
	assert.Equal(t, qty, afterQty, "no stock committed for a cancelled order")
	assert.Equal(t, sold, afterSold)
	c, err := h.carts.FindByOwner(ctx, shopper.ID)
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())

	stored, err := h.orders.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, stored.NeedsRefund())

	again, err := h.svc.VerifyAndSettle(ctx, "ref-"+orderID, orderID)
	require.NoError(t, err)
	assert.True(t, again.AlreadySettled)
}

func TestVerifyAndSettleGuestSkipsCart(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Hoodie", "20", 5)
	resp, err := h.svc.CreateGuestOrder(context.Background(), CreateGuestOrderRequest{
		CreateOrderRequest: checkout(p, 1),
		GuestDetails:       &GuestDetailsRequest{FirstName: "Ada", LastName: "Obi", Email: "ada@example.com"},
	})
	require.NoError(t, err)

	result, err := h.svc.VerifyAndSettle(context.Background(), resp.Payment.Reference, resp.Order.ID)
	require.NoError(t, err)
	step, ok := result.Step(StepClearCart)
	require.True(t, ok)
	assert.Equal(t, StepSkipped, step.Status)
	assert.True(t, result.Complete())
}

func TestCancelOrderRestoresStock(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Jacket", "50", 5)
	resp, err := h.svc.CreateOrder(context.Background(), shopper, checkout(p, 2))
	require.NoError(t, err)

	cancelled, err := h.svc.CancelOrder(context.Background(), shopper, resp.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.OrderStatus)

	qty, sold := h.stock(t, p.ID())
	assert.Equal(t, 7, qty)
	assert.Equal(t, 0, sold)

	_, err = h.svc.CancelOrder(context.Background(), shopper, resp.Order.ID)
	assert.Equal(t, order.ReasonAlreadyCancelled, shared.ReasonOf(err))
	qty, _ = h.stock(t, p.ID())
	assert.Equal(t, 7, qty)
}

func TestCancelPaidOrderIsRefusedAndChangesNothing(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Jacket", "50", 5)
	orderID := placeWithCart(t, h, p, 2)
	_, err := h.svc.VerifyAndSettle(context.Background(), "ref-"+orderID, orderID)
	require.NoError(t, err)
	qtyBefore, soldBefore := h.stock(t, p.ID())

	_, err = h.svc.CancelOrder(context.Background(), shopper, orderID)
	assert.ErrorIs(t, err, shared.ErrBusinessRule)
	assert.EqualError(t, err, "Cannot cancel a paid order. Please contact us for refund")

	qty, sold := h.stock(t, p.ID())
	assert.Equal(t, qtyBefore, qty)
	assert.Equal(t, soldBefore, sold)
	stored, err := h.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, stored.Status())
}

func TestCancelOrderOfAnotherUserIsNotFound(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Jacket", "50", 5)
	resp, err := h.svc.CreateOrder(context.Background(), shopper, checkout(p, 1))
	require.NoError(t, err)

	_, err = h.svc.CancelOrder(context.Background(), shared.UserIdentity("user-2", "x@y.z"), resp.Order.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateOrderStatusAdminOnly(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Jacket", "50", 5)
	resp, err := h.svc.CreateOrder(context.Background(), shopper, checkout(p, 1))
	require.NoError(t, err)

	delivered := "delivered"
	paid := "paid"
	req := UpdateOrderStatusRequest{OrderStatus: &delivered, PaymentStatus: &paid}

	_, err = h.svc.UpdateOrderStatus(context.Background(), shopper, resp.Order.ID, req)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	updated, err := h.svc.UpdateOrderStatus(context.Background(), admin, resp.Order.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "delivered", updated.OrderStatus)
	assert.Equal(t, "paid", updated.PaymentStatus)
	assert.NotNil(t, updated.DeliveredAt)
	assert.NotNil(t, updated.PaymentDetails.PaidAt)
	assert.Equal(t, resp.Order.OrderTrackingID, updated.OrderTrackingID)

	bogus := "lost"
	_, err = h.svc.UpdateOrderStatus(context.Background(), admin, resp.Order.ID, UpdateOrderStatusRequest{OrderStatus: &bogus})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestQueries(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, "Jacket", "50", 5)
	ctx := context.Background()
	mine, err := h.svc.CreateOrder(ctx, shopper, checkout(p, 1))
	require.NoError(t, err)
	_, err = h.svc.CreateGuestOrder(ctx, CreateGuestOrderRequest{
		CreateOrderRequest: checkout(p, 1),
		GuestDetails:       &GuestDetailsRequest{FirstName: "Ada", LastName: "Obi", Email: "ada@example.com"},
	})
	require.NoError(t, err)

	got, err := h.svc.GetOrder(ctx, shopper, mine.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.Order.ID, got.ID)

	_, err = h.svc.GetOrder(ctx, shared.UserIdentity("user-2", ""), mine.Order.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = h.svc.GetOrder(ctx, admin, mine.Order.ID)
	assert.NoError(t, err)

	list, err := h.svc.GetUserOrders(ctx, shopper)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = h.svc.ListOrders(ctx, shopper, ListOrdersRequest{})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	all, err := h.svc.ListOrders(ctx, admin, ListOrdersRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	guestOnly := true
	guests, err := h.svc.ListOrders(ctx, admin, ListOrdersRequest{GuestOnly: &guestOnly, PaymentStatus: "pending"})
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.True(t, guests[0].IsGuestOrder)

	_, err = h.svc.ListOrders(ctx, admin, ListOrdersRequest{OrderStatus: "bogus"})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

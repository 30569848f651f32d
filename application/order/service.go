/*
Package order Application Layer - order and payment orchestration.

Responsibilities:
1. Resolve what the caller may do from the explicit shared.Identity
2. Run the order validator against the live catalog
3. Persist aggregates through a per-operation UnitOfWork (events go to the outbox)
4. Drive the payment gateway and settle verified payments step by step
*/
package order

import (
	"context"
	"errors"
	"time"

	"storefront/domain/cart"
	"storefront/domain/order"
	"storefront/domain/product"
	"storefront/domain/shared"
	"storefront/pkg/logger"

	"go.uber.org/zap"
)

// Dependencies collaborators of the ApplicationService
type Dependencies struct {
	Orders     order.Repository
	Products   product.Repository
	Carts      cart.Repository
	UoW        shared.UnitOfWorkFactory
	Gateway    PaymentGateway
	Lock       SettlementLock
	TrackingID order.TrackingIDGenerator
	Metrics    Metrics
	Now        func() time.Time
}

// ApplicationService order application service
type ApplicationService struct {
	orders     order.Repository
	products   product.Repository
	carts      cart.Repository
	uow        shared.UnitOfWorkFactory
	gateway    PaymentGateway
	lock       SettlementLock
	validator  *order.Validator
	trackingID order.TrackingIDGenerator
	metrics    Metrics
	now        func() time.Time
}

// NewApplicationService Create order application service
func NewApplicationService(deps Dependencies) *ApplicationService {
	s := &ApplicationService{
		orders:     deps.Orders,
		products:   deps.Products,
		carts:      deps.Carts,
		uow:        deps.UoW,
		gateway:    deps.Gateway,
		lock:       deps.Lock,
		validator:  order.NewValidator(deps.Products),
		trackingID: deps.TrackingID,
		metrics:    deps.Metrics,
		now:        deps.Now,
	}
	if s.trackingID == nil {
		s.trackingID = order.RandomTrackingIDGenerator{}
	}
	if s.metrics == nil {
		s.metrics = NopMetrics{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ============================================================================
// Checkout
// ============================================================================

// CreateOrder checkout for an authenticated user. A validation failure
// persists nothing; a gateway failure leaves the pending order in place.
func (s *ApplicationService) CreateOrder(ctx context.Context, identity shared.Identity, req CreateOrderRequest) (*CreateOrderResponse, error) {
	if err := identity.RequireUser(); err != nil {
		return nil, err
	}
	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	validated, err := s.validator.Validate(ctx, toItemRequests(req.Items), toShippingAddress(req.ShippingAddress))
	if err != nil {
		return nil, err
	}

	var o *order.Order
	uow := s.uow.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		o, err = order.NewUserOrder(s.orders.NextIdentity(), identity.ID, validated, toShippingAddress(req.ShippingAddress), method)
		if err != nil {
			return err
		}
		if err := s.orders.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterNew(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.OrderCreated("user")

	return s.initiatePayment(ctx, o, o.PayerEmail(identity.Email))
}

// CreateGuestOrder checkout without an account. Guest details are checked
// before anything else so a bad email never reaches the catalog or gateway.
func (s *ApplicationService) CreateGuestOrder(ctx context.Context, req CreateGuestOrderRequest) (*CreateOrderResponse, error) {
	if req.GuestDetails == nil {
		return nil, order.NewInvalidGuestDetailsError("", "Guest details are required")
	}
	guest := toGuestDetails(req.GuestDetails)
	if err := guest.Validate(); err != nil {
		return nil, err
	}
	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	validated, err := s.validator.Validate(ctx, toItemRequests(req.Items), toShippingAddress(req.ShippingAddress))
	if err != nil {
		return nil, err
	}

	var o *order.Order
	uow := s.uow.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		o, err = order.NewGuestOrder(s.orders.NextIdentity(), guest, validated,
			toShippingAddress(req.ShippingAddress), method, s.trackingID.NewGuestTrackingID())
		if err != nil {
			return err
		}
		if err := s.orders.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterNew(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.OrderCreated("guest")

	return s.initiatePayment(ctx, o, o.PayerEmail(""))
}

func (s *ApplicationService) initiatePayment(ctx context.Context, o *order.Order, payerEmail string) (*CreateOrderResponse, error) {
	if !o.PaymentMethod().RequiresGateway() || s.gateway == nil {
		return &CreateOrderResponse{Order: toOrderResponse(o)}, nil
	}

	start := s.now()
	session, err := s.gateway.Initiate(ctx, o, payerEmail)
	s.metrics.GatewayCall("initialize", time.Since(start), err)
	if err != nil {
		logger.FromContext(ctx).Warn("payment initialization failed, order left pending",
			append(logger.ErrorFields(err), zap.String("order_id", o.ID()))...)
		return nil, err
	}

	o.AttachPaymentReference(session.Reference, session.Currency)
	if err := s.orders.Save(ctx, o); err != nil {
		logger.FromContext(ctx).Error("failed to persist payment reference",
			append(logger.ErrorFields(err), zap.String("order_id", o.ID()), zap.String("reference", session.Reference))...)
		return nil, err
	}

	return &CreateOrderResponse{
		Order:   toOrderResponse(o),
		Payment: &PaymentResponse{AuthorizationURL: session.AuthorizationURL, Reference: session.Reference},
	}, nil
}

// ============================================================================
// Lifecycle
// ============================================================================

// CancelOrder owner cancellation. Each line's quantity is handed back to the
// catalog once the cancelled order is stored.
func (s *ApplicationService) CancelOrder(ctx context.Context, identity shared.Identity, orderID string) (*OrderResponse, error) {
	if err := identity.RequireUser(); err != nil {
		return nil, err
	}

	var o *order.Order
	uow := s.uow.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orders.FindByIDForUser(ctx, orderID, identity.ID)
		if err != nil {
			return err
		}
		if err := o.Cancel(); err != nil {
			return err
		}
		if err := s.orders.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterDirty(o)

		for _, item := range o.Items() {
			err := s.products.IncrementStockAndSold(ctx, item.ProductID, item.Quantity)
			if errors.Is(err, product.ErrProductNotFound) {
				logger.FromContext(ctx).Warn("cancelled order references a deleted product",
					zap.String("order_id", o.ID()), zap.String("product_id", item.ProductID))
				continue
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.OrderCancelled()
	return toOrderResponse(o), nil
}

// UpdateOrderStatus admin override of order and payment status
func (s *ApplicationService) UpdateOrderStatus(ctx context.Context, identity shared.Identity, orderID string, req UpdateOrderStatusRequest) (*OrderResponse, error) {
	if err := identity.RequireAdmin(); err != nil {
		return nil, err
	}

	var update order.AdminUpdate
	if req.OrderStatus != nil && *req.OrderStatus != "" {
		st, err := order.ParseStatus(*req.OrderStatus)
		if err != nil {
			return nil, err
		}
		update.OrderStatus = &st
	}
	if req.PaymentStatus != nil && *req.PaymentStatus != "" {
		ps, err := order.ParsePaymentStatus(*req.PaymentStatus)
		if err != nil {
			return nil, err
		}
		update.PaymentStatus = &ps
	}

	var o *order.Order
	uow := s.uow.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		o.ApplyAdminUpdate(update, s.now())
		if err := s.orders.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterDirty(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// ============================================================================
// Queries
// ============================================================================

// GetOrder users see their own orders; admins see any
func (s *ApplicationService) GetOrder(ctx context.Context, identity shared.Identity, orderID string) (*OrderResponse, error) {
	if err := identity.RequireUser(); err != nil {
		return nil, err
	}

	var (
		o   *order.Order
		err error
	)
	if identity.IsAdmin() {
		o, err = s.orders.FindByID(ctx, orderID)
	} else {
		o, err = s.orders.FindByIDForUser(ctx, orderID, identity.ID)
	}
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// GetUserOrders caller's orders, newest first
func (s *ApplicationService) GetUserOrders(ctx context.Context, identity shared.Identity) ([]*OrderResponse, error) {
	if err := identity.RequireUser(); err != nil {
		return nil, err
	}
	orders, err := s.orders.FindByUserID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

// GetGuestOrder unauthenticated lookup by tracking id; email narrows the match
func (s *ApplicationService) GetGuestOrder(ctx context.Context, trackingID, email string) (*OrderResponse, error) {
	if trackingID == "" {
		return nil, shared.NewValidationError("order", "trackingId", "Tracking ID is required")
	}
	o, err := s.orders.FindByTrackingID(ctx, trackingID, email)
	if errors.Is(err, order.ErrOrderNotFound) {
		return nil, order.NewGuestOrderNotFoundError(trackingID)
	}
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// ListOrders admin listing, newest first
func (s *ApplicationService) ListOrders(ctx context.Context, identity shared.Identity, req ListOrdersRequest) ([]*OrderResponse, error) {
	if err := identity.RequireAdmin(); err != nil {
		return nil, err
	}

	filter := order.ListFilter{GuestOnly: req.GuestOnly}
	if req.OrderStatus != "" {
		st, err := order.ParseStatus(req.OrderStatus)
		if err != nil {
			return nil, err
		}
		filter.Status = &st
	}
	if req.PaymentStatus != "" {
		ps, err := order.ParsePaymentStatus(req.PaymentStatus)
		if err != nil {
			return nil, err
		}
		filter.PaymentStatus = &ps
	}

	orders, err := s.orders.FindAll(ctx, filter.Specification())
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

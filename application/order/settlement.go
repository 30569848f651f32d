package order

import (
	"context"
	"errors"
	"time"

	"storefront/domain/order"
	"storefront/domain/product"
	"storefront/pkg/logger"

	"go.uber.org/zap"
)

// StepName settlement step
type StepName string

const (
	StepMarkPaid       StepName = "mark_paid"
	StepDecrementStock StepName = "decrement_stock"
	StepClearCart      StepName = "clear_cart"
	StepRefund         StepName = "refund"
)

// StepStatus outcome of one settlement step
type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepSkipped   StepStatus = "skipped"
	StepFailed    StepStatus = "failed"
)

// LineFailure a line whose stock could not be committed
type LineFailure struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

// SettlementStep outcome of one step, with per-line failures for stock
type SettlementStep struct {
	Name     StepName      `json:"name"`
	Status   StepStatus    `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	Error    string        `json:"error,omitempty"`
	Failures []LineFailure `json:"failures,omitempty"`
}

// SettlementResult what verifyAndSettle did. AlreadySettled means the order
// was paid before this call and nothing was touched.
type SettlementResult struct {
	Order          *OrderResponse   `json:"order"`
	AlreadySettled bool             `json:"alreadySettled"`
	Steps          []SettlementStep `json:"steps,omitempty"`
}

// Complete true when no step failed
func (r *SettlementResult) Complete() bool {
	for _, step := range r.Steps {
		if step.Status == StepFailed {
			return false
		}
	}
	return true
}

// RefundRequired the payment was recorded against a cancelled order
func (r *SettlementResult) RefundRequired() bool {
	step, ok := r.Step(StepRefund)
	return ok && step.Status == StepFailed
}

// Step looks a step up by name
func (r *SettlementResult) Step(name StepName) (SettlementStep, bool) {
	for _, step := range r.Steps {
		if step.Name == name {
			return step, true
		}
	}
	return SettlementStep{}, false
}

var errNoGateway = errors.New("no payment provider is configured")

const (
	settlementSettled        = "settled"
	settlementPartial        = "partial"
	settlementAlreadySettled = "already_settled"
	settlementFailed         = "failed"
	settlementRefundRequired = "refund_required"
)

// VerifyAndSettle confirms a payment with the provider and applies its effects
// in order: mark the order paid, commit stock, clear the owner's cart.
//
// An order that is already paid short-circuits before the provider is called.
// A payment for a cancelled order is recorded but commits no stock; the result
// carries a failed refund step instead. Once mark_paid succeeds the call returns a result even if later steps fail;
// the failed steps are reported in the result and logged for reconciliation.
func (s *ApplicationService) VerifyAndSettle(ctx context.Context, reference, orderID string) (*SettlementResult, error) {
	if reference == "" || orderID == "" {
		return nil, order.NewMissingParametersError()
	}
	if s.gateway == nil {
		return nil, order.NewGatewayUnavailableError("", errNoGateway)
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus() == order.PaymentPaid {
		s.metrics.SettlementFinished(settlementAlreadySettled)
		return &SettlementResult{Order: toOrderResponse(o), AlreadySettled: true}, nil
	}

	if s.lock != nil {
		release, ok, err := s.lock.TryAcquire(ctx, "settlement:"+reference)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, order.NewSettlementInProgressError(reference)
		}
		defer release()

		// a concurrent settlement may have finished between the first read and the lock
		if o, err = s.orders.FindByID(ctx, orderID); err != nil {
			return nil, err
		}
		if o.PaymentStatus() == order.PaymentPaid {
			s.metrics.SettlementFinished(settlementAlreadySettled)
			return &SettlementResult{Order: toOrderResponse(o), AlreadySettled: true}, nil
		}
	}

	start := s.now()
	verified, err := s.gateway.Verify(ctx, reference)
	s.metrics.GatewayCall("verify", time.Since(start), err)
	if err != nil {
		s.metrics.SettlementFinished(settlementFailed)
		return nil, err
	}
	if err := matchPayment(ctx, o, reference, verified); err != nil {
		s.metrics.SettlementFinished(settlementFailed)
		return nil, err
	}

	result := &SettlementResult{}
	if o, err = s.markPaid(ctx, orderID, verified); err != nil {
		s.metrics.SettlementFinished(settlementFailed)
		return nil, err
	}
	result.Steps = append(result.Steps, SettlementStep{Name: StepMarkPaid, Status: StepSucceeded})
	if o.NeedsRefund() {
		result.Steps = append(result.Steps,
			SettlementStep{Name: StepDecrementStock, Status: StepSkipped},
			SettlementStep{Name: StepClearCart, Status: StepSkipped},
			SettlementStep{
				Name:   StepRefund,
				Status: StepFailed,
				Reason: order.ReasonRefundRequired,
				Error:  "order was cancelled before the payment was verified",
			})
	} else {
		result.Steps = append(result.Steps, s.commitStock(ctx, o))
		result.Steps = append(result.Steps, s.clearCart(ctx, o))
	}
	result.Order = toOrderResponse(o)

	switch {
	case result.RefundRequired():
		s.metrics.SettlementFinished(settlementRefundRequired)
		logger.FromContext(ctx).Warn("payment received for a cancelled order",
			zap.String("order_id", o.ID()), zap.String("reference", reference), zap.String("reason", order.ReasonRefundRequired))
	case result.Complete():
		s.metrics.SettlementFinished(settlementSettled)
	default:
		s.metrics.SettlementFinished(settlementPartial)
		logger.FromContext(ctx).Warn("payment settled partially",
			zap.String("order_id", o.ID()), zap.String("reference", reference), zap.Any("steps", result.Steps))
	}
	return result, nil
}

// matchPayment ties the verified transaction to the order: by the order id
// echoed in the metadata, or else by the reference stored at initiation; the
// charged amount must equal the order total
func matchPayment(ctx context.Context, o *order.Order, reference string, verified *VerifiedPayment) error {
	if verified.OrderID != "" {
		if verified.OrderID != o.ID() {
			return order.NewReferenceMismatchError(reference, o.ID())
		}
	} else if stored := o.PaymentDetails().Reference; stored == "" || stored != reference {
		return order.NewReferenceMismatchError(reference, o.ID())
	}

	if expected := o.TotalAmount().MinorUnits(); verified.AmountMinor != expected {
		logger.FromContext(ctx).Warn("verified amount differs from order total",
			zap.String("order_id", o.ID()), zap.String("reference", reference),
			zap.Int64("charged", verified.AmountMinor), zap.Int64("expected", expected))
		return order.NewAmountMismatchError(reference)
	}
	return nil
}

// markPaid reloads the order on every attempt so a retried transaction never
// applies the payment to a stale copy
func (s *ApplicationService) markPaid(ctx context.Context, orderID string, verified *VerifiedPayment) (*order.Order, error) {
	var paid *order.Order
	uow := s.uow.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		o, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		details := order.PaymentDetails{
			Reference:         verified.Reference,
			AuthorizationCode: verified.AuthorizationCode,
			Channel:           verified.Channel,
			Currency:          verified.Currency,
			IPAddress:         verified.IPAddress,
			Fees:              verified.Fees,
			PaidAt:            verified.PaidAt,
		}
		if err := o.MarkPaid(details, s.now()); err != nil {
			return err
		}
		if err := s.orders.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterDirty(o)
		paid = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// commitStock conditional decrement per line; a line that cannot be committed
// does not stop the others
func (s *ApplicationService) commitStock(ctx context.Context, o *order.Order) SettlementStep {
	step := SettlementStep{Name: StepDecrementStock, Status: StepSucceeded}
	for _, item := range o.Items() {
		err := s.products.DecrementStockIfAvailable(ctx, item.ProductID, item.Quantity)
		if err == nil {
			continue
		}

		reason := "STORAGE_ERROR"
		switch {
		case errors.Is(err, product.ErrInsufficientStock):
			reason = order.ReasonInsufficientStock
		case errors.Is(err, product.ErrProductNotFound):
			reason = order.ReasonProductNotFound
		}
		step.Failures = append(step.Failures, LineFailure{Product: item.ProductID, Quantity: item.Quantity, Reason: reason})
		logger.FromContext(ctx).Error("failed to commit stock for paid order",
			append(logger.ErrorFields(err), zap.String("order_id", o.ID()), zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity))...)
	}
	if len(step.Failures) > 0 {
		step.Status = StepFailed
		step.Error = "stock could not be committed for every line"
	}
	return step
}

func (s *ApplicationService) clearCart(ctx context.Context, o *order.Order) SettlementStep {
	step := SettlementStep{Name: StepClearCart, Status: StepSucceeded}
	if o.IsGuestOrder() || o.UserID() == "" || s.carts == nil {
		step.Status = StepSkipped
		return step
	}
	if err := s.carts.Clear(ctx, o.UserID()); err != nil {
		step.Status = StepFailed
		step.Error = "cart could not be cleared"
		logger.FromContext(ctx).Error("failed to clear cart after payment",
			append(logger.ErrorFields(err), zap.String("order_id", o.ID()), zap.String("user_id", o.UserID()))...)
	}
	return step
}

package order

import (
	"context"
	"time"

	"storefront/domain/order"
	"storefront/domain/shared"
)

// PaymentSession returned by the provider when a payment is initiated
type PaymentSession struct {
	AuthorizationURL string
	Reference        string
	Currency         string
}

// VerifiedPayment provider view of a successful transaction
type VerifiedPayment struct {
	Reference         string
	OrderID           string // correlation metadata attached at initiation
	AmountMinor       int64  // charged amount in minor units
	AuthorizationCode string
	Channel           string
	Currency          string
	IPAddress         string
	Fees              *shared.Money
	PaidAt            *time.Time
}

// PaymentGateway external payment provider.
// Verify fails with a shared.ErrGateway error unless the provider reports success.
type PaymentGateway interface {
	Initiate(ctx context.Context, o *order.Order, payerEmail string) (*PaymentSession, error)
	Verify(ctx context.Context, reference string) (*VerifiedPayment, error)
}

// SettlementLock keyed non-blocking lock; ok=false means another holder has it
type SettlementLock interface {
	TryAcquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

// Metrics order lifecycle instrumentation
type Metrics interface {
	OrderCreated(kind string)
	OrderCancelled()
	SettlementFinished(outcome string)
	GatewayCall(operation string, elapsed time.Duration, err error)
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) OrderCreated(string)                      {}
func (NopMetrics) OrderCancelled()                          {}
func (NopMetrics) SettlementFinished(string)                {}
func (NopMetrics) GatewayCall(string, time.Duration, error) {}

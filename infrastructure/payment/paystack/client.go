// Package paystack payment gateway adapter for the Paystack transaction API.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apporder "storefront/application/order"
	"storefront/config"
	"storefront/domain/order"
	"storefront/domain/shared"
	"storefront/pkg/logger"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.paystack.co"
	DefaultTimeout = 15 * time.Second

	// maxBody guards against a misbehaving upstream
	maxBody = 1 << 20
)

// Client Paystack HTTP client. Safe for concurrent use.
type Client struct {
	baseURL     string
	secretKey   string
	callbackURL string
	currency    string
	http        *http.Client
}

// NewClient builds a client whose transport is traced with otelhttp.
// A nil transport means http.DefaultTransport.
func NewClient(cfg config.PaystackConfig, transport http.RoundTripper) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	currency := cfg.Currency
	if currency == "" {
		currency = shared.DefaultCurrency
	}

	return &Client{
		baseURL:     baseURL,
		secretKey:   cfg.SecretKey,
		callbackURL: cfg.CallbackURL,
		currency:    currency,
		http: &http.Client{
			Transport: otelhttp.NewTransport(transport),
			Timeout:   timeout,
		},
	}
}

// envelope every Paystack response has this shape
type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type initializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"` // minor units (kobo)
	Currency    string   `json:"currency,omitempty"`
	CallbackURL string   `json:"callback_url,omitempty"`
	Metadata    metadata `json:"metadata"`
}

type metadata struct {
	OrderID      string        `json:"orderId"`
	CustomFields []customField `json:"custom_fields,omitempty"`
}

type customField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Status        string          `json:"status"`
	Reference     string          `json:"reference"`
	Amount        int64           `json:"amount"` // minor units
	Currency      string          `json:"currency"`
	Channel       string          `json:"channel"`
	IPAddress     string          `json:"ip_address"`
	Fees          *int64          `json:"fees"`
	PaidAt        string          `json:"paid_at"`
	Metadata      json.RawMessage `json:"metadata"`
	Authorization struct {
		AuthorizationCode string `json:"authorization_code"`
	} `json:"authorization"`
}

// Initiate opens a transaction for the order total; the order id travels as metadata
func (c *Client) Initiate(ctx context.Context, o *order.Order, payerEmail string) (*apporder.PaymentSession, error) {
	currency := o.TotalAmount().Currency()
	if currency == "" {
		currency = c.currency
	}
	body := initializeRequest{
		Email:       payerEmail,
		Amount:      o.TotalAmount().MinorUnits(),
		Currency:    currency,
		CallbackURL: c.callbackURL,
		Metadata: metadata{
			OrderID: o.ID(),
			CustomFields: []customField{
				{DisplayName: "Order ID", VariableName: "order_id", Value: o.ID()},
			},
		},
	}

	var resp envelope[initializeData]
	status, err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &resp)
	if err != nil {
		logger.FromContext(ctx).Warn("paystack initialization failed",
			zap.Error(err), zap.String("order_id", o.ID()))
		return nil, order.NewGatewayUnavailableError(order.MessagePaymentInitFailed, err)
	}
	if status != http.StatusOK || !resp.Status || resp.Data.Reference == "" {
		logger.FromContext(ctx).Warn("paystack rejected initialization",
			zap.Int("status", status), zap.String("message", resp.Message), zap.String("order_id", o.ID()))
		return nil, order.NewGatewayUnavailableError(order.MessagePaymentInitFailed,
			fmt.Errorf("paystack answered %d: %s", status, resp.Message))
	}

	return &apporder.PaymentSession{
		AuthorizationURL: resp.Data.AuthorizationURL,
		Reference:        resp.Data.Reference,
		Currency:         currency,
	}, nil
}

// Verify succeeds only when Paystack reports the transaction as "success"
func (c *Client) Verify(ctx context.Context, reference string) (*apporder.VerifiedPayment, error) {
	if reference == "" {
		return nil, order.NewMissingParametersError()
	}

	var resp envelope[verifyData]
	status, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &resp)
	if err != nil {
		logger.FromContext(ctx).Warn("paystack verification failed",
			zap.Error(err), zap.String("reference", reference))
		return nil, order.NewGatewayUnavailableError(order.MessagePaymentUnavailable, err)
	}
	if status >= http.StatusInternalServerError {
		return nil, order.NewGatewayUnavailableError(order.MessagePaymentUnavailable,
			fmt.Errorf("paystack answered %d", status))
	}
	if status != http.StatusOK || !resp.Status || resp.Data.Status != "success" {
		logger.FromContext(ctx).Info("paystack verification not successful",
			zap.Int("status", status), zap.String("reference", reference),
			zap.String("transaction_status", resp.Data.Status), zap.String("message", resp.Message))
		return nil, order.NewVerificationFailedError("")
	}

	currency := resp.Data.Currency
	if currency == "" {
		currency = c.currency
	}
	verified := &apporder.VerifiedPayment{
		Reference:         resp.Data.Reference,
		OrderID:           orderIDFromMetadata(resp.Data.Metadata),
		AmountMinor:       resp.Data.Amount,
		AuthorizationCode: resp.Data.Authorization.AuthorizationCode,
		Channel:           resp.Data.Channel,
		Currency:          currency,
		IPAddress:         resp.Data.IPAddress,
	}
	if verified.Reference == "" {
		verified.Reference = reference
	}
	if resp.Data.Fees != nil {
		fees := shared.FromMinorUnits(*resp.Data.Fees, currency)
		verified.Fees = &fees
	}
	if paidAt, err := time.Parse(time.RFC3339, resp.Data.PaidAt); err == nil {
		verified.PaidAt = &paidAt
	}
	return verified, nil
}

// do returns the HTTP status; err is only set when no usable response arrived
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode paystack request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0, err
		}
		return 0, fmt.Errorf("paystack unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read paystack response: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil && resp.StatusCode < http.StatusInternalServerError {
			return resp.StatusCode, fmt.Errorf("decode paystack response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// orderIDFromMetadata Paystack echoes metadata back either as an object or as
// a JSON-encoded string
func orderIDFromMetadata(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var md metadata
	if err := json.Unmarshal(raw, &md); err == nil {
		return md.OrderID
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &md); err == nil {
			return md.OrderID
		}
	}
	return ""
}

var _ apporder.PaymentGateway = (*Client)(nil)

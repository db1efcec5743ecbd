package razorpay

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/pgroom/pgroom-backend/pkg/config"
	"github.com/pgroom/pgroom-backend/pkg/errors"
	"github.com/pgroom/pgroom-backend/pkg/logger"
)

// Order is the gateway order a client checkout is bound to.
type Order struct {
	ID          string
	AmountMinor int64
	Currency    string
	Receipt     string
	Status      string
}

// PaymentDetails is the authoritative payment state fetched from the gateway.
type PaymentDetails struct {
	ID          string
	OrderID     string
	Status      string
	Method      string
	AmountMinor int64
	Currency    string
	Captured    bool
}

// Refund is the gateway's record of a refund instruction.
type Refund struct {
	ID          string
	PaymentID   string
	AmountMinor int64
	Status      string
}

// CreateOrderParams carries the order creation inputs in minor units.
type CreateOrderParams struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]any
}

// Gateway is the payment-gateway surface the services depend on.
type Gateway interface {
	CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error)
	CreateRefund(ctx context.Context, paymentID string, amountMinor int64, notes map[string]any) (*Refund, error)
}

// Client wraps the Razorpay SDK behind the Gateway interface and maps SDK
// failures onto the upstream error code.
type Client struct {
	sdk           *razorpay.Client
	keyID         string
	keySecret     string
	webhookSecret string
	logg          *logger.Logger
}

func NewClient(cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("razorpay key id and secret are required")
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("razorpay webhook secret is required")
	}

	sdk := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	if cfg.Timeout > 0 {
		sdk.SetTimeout(int16(cfg.Timeout.Seconds()))
	}

	return &Client{
		sdk:           sdk,
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		logg:          logg,
	}, nil
}

// KeyID is safe to expose to clients; checkout needs it.
func (c *Client) KeyID() string { return c.keyID }

// KeySecret signs client payment confirmations.
func (c *Client) KeySecret() string { return c.keySecret }

// WebhookSecret signs webhook deliveries.
func (c *Client) WebhookSecret() string { return c.webhookSecret }

func (c *Client) CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error) {
	data := map[string]any{
		"amount":   params.AmountMinor,
		"currency": params.Currency,
		"receipt":  params.Receipt,
	}
	if len(params.Notes) > 0 {
		data["notes"] = params.Notes
	}

	body, err := c.sdk.Order.Create(data, nil)
	if err != nil {
		c.logg.Error(ctx, "razorpay order creation failed", err)
		return nil, errors.Wrap(errors.CodeUpstream, err, "creating gateway order")
	}

	order := &Order{
		ID:          asString(body["id"]),
		AmountMinor: asInt64(body["amount"]),
		Currency:    asString(body["currency"]),
		Receipt:     asString(body["receipt"]),
		Status:      asString(body["status"]),
	}
	if order.ID == "" {
		return nil, errors.New(errors.CodeUpstream, "gateway order response missing id")
	}
	return order, nil
}

func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error) {
	if paymentID == "" {
		return nil, errors.New(errors.CodeValidation, "payment id is required")
	}

	body, err := c.sdk.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		c.logg.Error(ctx, "razorpay payment fetch failed", err)
		return nil, errors.Wrap(errors.CodeUpstream, err, "fetching gateway payment")
	}

	details := &PaymentDetails{
		ID:          asString(body["id"]),
		OrderID:     asString(body["order_id"]),
		Status:      asString(body["status"]),
		Method:      asString(body["method"]),
		AmountMinor: asInt64(body["amount"]),
		Currency:    asString(body["currency"]),
		Captured:    asBool(body["captured"]),
	}
	if details.ID == "" {
		return nil, errors.New(errors.CodeUpstream, "gateway payment response missing id")
	}
	return details, nil
}

func (c *Client) CreateRefund(ctx context.Context, paymentID string, amountMinor int64, notes map[string]any) (*Refund, error) {
	if paymentID == "" {
		return nil, errors.New(errors.CodeValidation, "payment id is required")
	}

	data := map[string]any{}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := c.sdk.Payment.Refund(paymentID, int(amountMinor), data, nil)
	if err != nil {
		c.logg.Error(ctx, "razorpay refund failed", err)
		return nil, errors.Wrap(errors.CodeUpstream, err, "creating gateway refund")
	}

	refund := &Refund{
		ID:          asString(body["id"]),
		PaymentID:   asString(body["payment_id"]),
		AmountMinor: asInt64(body["amount"]),
		Status:      asString(body["status"]),
	}
	if refund.ID == "" {
		return nil, errors.New(errors.CodeUpstream, "gateway refund response missing id")
	}
	return refund, nil
}

// The SDK decodes responses into map[string]interface{}, so numbers arrive
// as json float64 and everything needs defensive coercion.

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

package payments

import (
	"github.com/shopspring/decimal"

	"github.com/pgroom/pgroom-backend/pkg/db/models"
	"github.com/pgroom/pgroom-backend/pkg/razorpay"
)

// CreateOrderInput carries the fields needed to open a rent order.
type CreateOrderInput struct {
	TenantID   int64
	PropertyID int64
	RoomID     int64
	Amount     decimal.Decimal
	Notes      map[string]any
}

// CreateOrderResult pairs the persisted row with the gateway order the
// client checkout binds to.
type CreateOrderResult struct {
	Payment      *models.Payment
	GatewayOrder *razorpay.Order
}

// ConfirmInput carries the client-side confirmation callback fields.
type ConfirmInput struct {
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
}

// ConfirmResult pairs the settled row with the gateway's view of the payment.
type ConfirmResult struct {
	Payment        *models.Payment
	GatewayPayment *razorpay.PaymentDetails
}

// RefundInput carries refund instructions. A nil Amount refunds in full.
type RefundInput struct {
	PaymentID int64
	Amount    *decimal.Decimal
	Notes     map[string]any
}

// RefundResult pairs the updated row with the gateway refund record.
type RefundResult struct {
	Payment *models.Payment
	Refund  *razorpay.Refund
}

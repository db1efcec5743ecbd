package payments

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pgroom/pgroom-backend/pkg/config"
	"github.com/pgroom/pgroom-backend/pkg/db"
	"github.com/pgroom/pgroom-backend/pkg/db/models"
	"github.com/pgroom/pgroom-backend/pkg/enums"
	"github.com/pgroom/pgroom-backend/pkg/errors"
	"github.com/pgroom/pgroom-backend/pkg/logger"
	"github.com/pgroom/pgroom-backend/pkg/pagination"
	"github.com/pgroom/pgroom-backend/pkg/razorpay"
)

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Logger  *logger.Logger
	Repo    Repository
	Gateway razorpay.Gateway
	Config  config.RazorpayConfig
}

// Service orchestrates the rent payment lifecycle against the gateway.
type Service struct {
	logg    *logger.Logger
	repo    Repository
	gateway razorpay.Gateway
	cfg     config.RazorpayConfig
}

// NewService builds a payment service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, stdErrors.New("logger is required")
	}
	if params.Repo == nil {
		return nil, stdErrors.New("repo is required")
	}
	if params.Gateway == nil {
		return nil, stdErrors.New("gateway is required")
	}
	if params.Config.KeySecret == "" {
		return nil, stdErrors.New("gateway key secret is required")
	}
	return &Service{
		logg:    params.Logger,
		repo:    params.Repo,
		gateway: params.Gateway,
		cfg:     params.Config,
	}, nil
}

// CreateRentOrder opens a gateway order and records the pending payment.
// The gateway call happens first; a row is only written once an order id
// exists to anchor it.
func (s *Service) CreateRentOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if input.TenantID <= 0 || input.PropertyID <= 0 || input.RoomID <= 0 {
		return nil, errors.New(errors.CodeValidation, "tenant, property and room ids are required")
	}
	if !input.Amount.IsPositive() {
		return nil, errors.New(errors.CodeValidation, "amount must be positive")
	}

	currency, err := enums.ParseCurrency(s.cfg.Currency)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "unsupported currency")
	}

	ctx = s.logg.WithTenantID(ctx, input.TenantID)

	// The order carries the lodging identifiers as opaque notes so gateway
	// records can be traced back without a local lookup.
	notes := map[string]any{
		"tenant_id":   input.TenantID,
		"property_id": input.PropertyID,
		"room_id":     input.RoomID,
	}
	for key, value := range input.Notes {
		notes[key] = value
	}

	order, err := s.gateway.CreateOrder(ctx, razorpay.CreateOrderParams{
		AmountMinor: minorUnits(input.Amount),
		Currency:    currency.String(),
		Receipt:     s.newReceipt(),
		Notes:       notes,
	})
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		TenantID:        input.TenantID,
		PropertyID:      input.PropertyID,
		RoomID:          input.RoomID,
		Amount:          input.Amount,
		Currency:        currency,
		RazorpayOrderID: order.ID,
		Status:          enums.PaymentStatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		// The gateway order exists but has no row; it expires unpaid on
		// the gateway side, so no compensation is attempted here.
		s.logg.Error(ctx, "persisting payment after order creation failed", err)
		if db.IsUniqueViolation(err, "") {
			return nil, errors.Wrap(errors.CodePersistence, err, "duplicate gateway order id")
		}
		return nil, errors.Wrap(errors.CodePersistence, err, "storing payment")
	}

	ctx = s.logg.WithOrderID(ctx, order.ID)
	s.logg.Info(ctx, "rent order created")

	return &CreateOrderResult{Payment: payment, GatewayOrder: order}, nil
}

// VerifyAndCapture handles the client confirmation callback: it authenticates
// the signature, fetches the authoritative payment state from the gateway and
// advances the row. A replayed confirmation for an already-settled row
// returns the current row unchanged. The gateway's payment details ride along
// in the result so callers can surface them.
func (s *Service) VerifyAndCapture(ctx context.Context, input ConfirmInput) (*ConfirmResult, error) {
	if input.RazorpayOrderID == "" || input.RazorpayPaymentID == "" || input.RazorpaySignature == "" {
		return nil, errors.New(errors.CodeValidation, "order id, payment id and signature are required")
	}

	ctx = s.logg.WithOrderID(ctx, input.RazorpayOrderID)

	// A forged signature is rejected before any lookup or write; the row is
	// left exactly as it was.
	if !razorpay.VerifyPaymentSignature(input.RazorpayOrderID, input.RazorpayPaymentID, input.RazorpaySignature, s.cfg.KeySecret) {
		return nil, errors.New(errors.CodeSecurity, "payment signature mismatch")
	}

	payment, err := s.repo.FindByOrderID(ctx, input.RazorpayOrderID)
	if err != nil {
		return nil, errors.Wrap(errors.CodePersistence, err, "loading payment by order id")
	}
	if payment == nil {
		return nil, errors.New(errors.CodeNotFound, "no payment for order")
	}
	ctx = s.logg.WithPaymentID(ctx, payment.ID)

	details, err := s.gateway.FetchPayment(ctx, input.RazorpayPaymentID)
	if err != nil {
		s.markFailedBestEffort(ctx, input.RazorpayOrderID, input.RazorpayPaymentID)
		return nil, err
	}
	if details.OrderID != "" && details.OrderID != input.RazorpayOrderID {
		s.markFailedBestEffort(ctx, input.RazorpayOrderID, input.RazorpayPaymentID)
		return nil, errors.New(errors.CodeSecurity, "payment belongs to a different order")
	}

	var target enums.PaymentStatus
	switch {
	case details.Captured || details.Status == "captured":
		target = enums.PaymentStatusCaptured
	case details.Status == "authorized":
		target = enums.PaymentStatusAuthorized
	case details.Status == "failed":
		s.markFailedBestEffort(ctx, input.RazorpayOrderID, input.RazorpayPaymentID)
		return nil, errors.New(errors.CodeUpstream, "gateway reports payment failed")
	default:
		// "created" or an unrecognized state: the row stays put until the
		// gateway settles one way or the other.
		return nil, errors.New(errors.CodeUpstream, "gateway payment not settled").
			WithDetails(map[string]any{"gateway_status": details.Status})
	}
	method := enums.NormalizeGatewayMethod(details.Method)

	applied, err := s.repo.UpdateStatusIf(ctx, payment.ID, target, AllowedPredecessors(target), map[string]any{
		"razorpay_payment_id": input.RazorpayPaymentID,
		"razorpay_signature":  input.RazorpaySignature,
		"payment_method":      method,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodePersistence, err, "advancing payment status")
	}
	if !applied {
		// A webhook already moved the row at least this far.
		s.logg.Info(ctx, "confirmation arrived after status already advanced")
	} else {
		s.logg.Info(ctx, "payment verified as "+target.String())
	}

	updated, err := s.repo.FindByID(ctx, payment.ID)
	if err != nil {
		return nil, errors.Wrap(errors.CodePersistence, err, "reloading payment")
	}
	if updated == nil {
		return nil, errors.New(errors.CodeNotFound, "payment disappeared during update")
	}
	return &ConfirmResult{Payment: updated, GatewayPayment: details}, nil
}

// InitiateRefund sends a refund instruction for a captured payment. A refund
// below the original amount leaves the row partially refunded.
func (s *Service) InitiateRefund(ctx context.Context, input RefundInput) (*RefundResult, error) {
	if input.PaymentID <= 0 {
		return nil, errors.New(errors.CodeValidation, "payment id is required")
	}

	payment, err := s.repo.FindByID(ctx, input.PaymentID)
	if err != nil {
		return nil, errors.Wrap(errors.CodePersistence, err, "loading payment")
	}
	if payment == nil {
		return nil, errors.New(errors.CodeNotFound, "payment not found")
	}
	ctx = s.logg.WithPaymentID(ctx, payment.ID)

	if payment.Status != enums.PaymentStatusCaptured {
		return nil, errors.New(errors.CodeEligibility, "only captured payments can be refunded").
			WithDetails(map[string]any{"status": payment.Status})
	}
	if payment.RazorpayPaymentID == nil || *payment.RazorpayPaymentID == "" {
		return nil, errors.New(errors.CodeEligibility, "payment has no gateway payment id")
	}

	amount := payment.Amount
	if input.Amount != nil {
		amount = *input.Amount
	}
	if !amount.IsPositive() {
		return nil, errors.New(errors.CodeValidation, "refund amount must be positive")
	}
	if amount.GreaterThan(payment.Amount) {
		return nil, errors.New(errors.CodeValidation, "refund amount exceeds payment amount")
	}

	refund, err := s.gateway.CreateRefund(ctx, *payment.RazorpayPaymentID, minorUnits(amount), input.Notes)
	if err != nil {
		return nil, err
	}

	target := enums.PaymentStatusRefunded
	if amount.LessThan(payment.Amount) {
		target = enums.PaymentStatusPartiallyRefunded
	}

	applied, err := s.repo.UpdateStatusIf(ctx, payment.ID, target,
		[]enums.PaymentStatus{enums.PaymentStatusCaptured}, nil)
	if err != nil {
		return nil, errors.Wrap(errors.CodePersistence, err, "recording refund status")
	}
	if !applied {
		s.logg.Warn(ctx, "refund sent but status row had already moved")
	} else {
		s.logg.Info(ctx, "refund initiated as "+target.String())
	}

	updated, err := s.repo.FindByID(ctx, payment.ID)
	if err != nil {
		return nil, errors.Wrap(errors.CodePersistence, err, "reloading payment")
	}
	return &RefundResult{Payment: updated, Refund: refund}, nil
}

// GetPayment loads a single payment with its collaborators.
func (s *Service) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	if id <= 0 {
		return nil, errors.New(errors.CodeValidation, "payment id is required")
	}
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.CodePersistence, err, "loading payment")
	}
	if payment == nil {
		return nil, errors.New(errors.CodeNotFound, "payment not found")
	}
	return payment, nil
}

// ListPayments returns a filtered page of payments plus the next cursor.
func (s *Service) ListPayments(ctx context.Context, params ListQuery) ([]models.Payment, *pagination.Cursor, error) {
	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, nil, errors.Wrap(errors.CodePersistence, err, "listing payments")
	}
	return rows, next, nil
}

// markFailedBestEffort moves a row to failed after a broken confirmation.
// Failures here are logged and swallowed so they never mask the caller's
// original error.
func (s *Service) markFailedBestEffort(ctx context.Context, razorpayOrderID, razorpayPaymentID string) {
	payment, err := s.repo.FindByOrderID(ctx, razorpayOrderID)
	if err != nil {
		s.logg.Error(ctx, "compensating failed write: load failed", err)
		return
	}
	if payment == nil {
		return
	}

	applied, err := s.repo.UpdateStatusIf(ctx, payment.ID, enums.PaymentStatusFailed,
		AllowedPredecessors(enums.PaymentStatusFailed), map[string]any{
			"razorpay_payment_id": nullableString(razorpayPaymentID),
		})
	if err != nil {
		s.logg.Error(ctx, "compensating failed write: update failed", err)
		return
	}
	if applied {
		s.logg.Warn(s.logg.WithPaymentID(ctx, payment.ID), "payment marked failed after broken confirmation")
	}
}

func (s *Service) newReceipt() string {
	return fmt.Sprintf("%s%d_%s", s.cfg.ReceiptPrefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

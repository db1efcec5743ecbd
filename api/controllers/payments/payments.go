package paymentcontrollers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/pgroom/pgroom-backend/api/middleware"
	"github.com/pgroom/pgroom-backend/api/responses"
	"github.com/pgroom/pgroom-backend/api/validators"
	"github.com/pgroom/pgroom-backend/internal/payments"
	"github.com/pgroom/pgroom-backend/pkg/auth"
	"github.com/pgroom/pgroom-backend/pkg/db/models"
	pkgerrors "github.com/pgroom/pgroom-backend/pkg/errors"
	"github.com/pgroom/pgroom-backend/pkg/enums"
	"github.com/pgroom/pgroom-backend/pkg/logger"
	"github.com/pgroom/pgroom-backend/pkg/pagination"
)

// PaymentService is the slice of the payment service these handlers need.
type PaymentService interface {
	CreateRentOrder(ctx context.Context, input payments.CreateOrderInput) (*payments.CreateOrderResult, error)
	VerifyAndCapture(ctx context.Context, input payments.ConfirmInput) (*payments.ConfirmResult, error)
	InitiateRefund(ctx context.Context, input payments.RefundInput) (*payments.RefundResult, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	ListPayments(ctx context.Context, params payments.ListQuery) ([]models.Payment, *pagination.Cursor, error)
}

type createOrderRequest struct {
	TenantID    int64           `json:"tenant_id" validate:"required,gt=0"`
	PropertyID  int64           `json:"property_id" validate:"required,gt=0"`
	RoomID      int64           `json:"room_id" validate:"required,gt=0"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description" validate:"max=255"`
}

type confirmRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

type refundRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Notes  map[string]any   `json:"notes"`
}

// CreateOrder opens a gateway order for a rent payment. The response carries
// the checkout key id so the client can launch the gateway widget.
func CreateOrder(svc PaymentService, checkoutKeyID string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		claims := middleware.ClaimsFromContext(ctx)
		if claims != nil && claims.Role == auth.RoleTenant && claims.TenantID != req.TenantID {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "tenants can only pay their own rent"))
			return
		}

		input := payments.CreateOrderInput{
			TenantID:   req.TenantID,
			PropertyID: req.PropertyID,
			RoomID:     req.RoomID,
			Amount:     req.Amount,
		}
		if req.Description != "" {
			input.Notes = map[string]any{"description": req.Description}
		}

		result, err := svc.CreateRentOrder(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"payment": toPaymentView(result.Payment),
			"order": map[string]any{
				"id":       result.GatewayOrder.ID,
				"amount":   result.GatewayOrder.AmountMinor,
				"currency": result.GatewayOrder.Currency,
				"receipt":  result.GatewayOrder.Receipt,
			},
			"key_id": checkoutKeyID,
		})
	}
}

// ConfirmPayment verifies the checkout callback signature and settles the row.
func ConfirmPayment(svc PaymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req confirmRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.VerifyAndCapture(ctx, payments.ConfirmInput{
			RazorpayOrderID:   req.RazorpayOrderID,
			RazorpayPaymentID: req.RazorpayPaymentID,
			RazorpaySignature: req.RazorpaySignature,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		payload := map[string]any{"payment": toPaymentView(result.Payment)}
		if gp := result.GatewayPayment; gp != nil {
			payload["gateway_payment"] = map[string]any{
				"id":       gp.ID,
				"order_id": gp.OrderID,
				"status":   gp.Status,
				"method":   gp.Method,
				"amount":   gp.AmountMinor,
				"currency": gp.Currency,
				"captured": gp.Captured,
			}
		}
		responses.WriteSuccess(w, payload)
	}
}

// GetPayment returns a single payment. Tenants only see their own rows.
func GetPayment(svc PaymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := paymentIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		payment, err := svc.GetPayment(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		claims := middleware.ClaimsFromContext(ctx)
		if claims != nil && claims.Role == auth.RoleTenant && claims.TenantID != payment.TenantID {
			// Same shape as a true miss so row ids stay unguessable.
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found"))
			return
		}

		responses.WriteSuccess(w, toPaymentView(payment))
	}
}

// ListPayments returns a filtered, cursor-paginated page of payments.
func ListPayments(svc PaymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := listQueryFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		claims := middleware.ClaimsFromContext(ctx)
		if claims != nil && claims.Role == auth.RoleTenant {
			tenantID := claims.TenantID
			params.TenantID = &tenantID
		}

		rows, next, err := svc.ListPayments(ctx, *params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		payload := map[string]any{"payments": toPaymentViews(rows)}
		if next != nil {
			payload["next_cursor"] = pagination.EncodeCursor(*next)
		}
		responses.WriteSuccess(w, payload)
	}
}

// RefundPayment sends a refund instruction for a captured payment.
func RefundPayment(svc PaymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := paymentIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req refundRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.InitiateRefund(ctx, payments.RefundInput{
			PaymentID: id,
			Amount:    req.Amount,
			Notes:     req.Notes,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"payment": toPaymentView(result.Payment),
			"refund": map[string]any{
				"id":     result.Refund.ID,
				"amount": result.Refund.AmountMinor,
				"status": result.Refund.Status,
			},
		})
	}
}

func paymentIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "paymentID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "payment id must be a positive integer")
	}
	return id, nil
}

func listQueryFromRequest(r *http.Request) (*payments.ListQuery, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}

	cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	tenantID, err := validators.ParseQueryInt64(r, "tenant_id")
	if err != nil {
		return nil, err
	}
	propertyID, err := validators.ParseQueryInt64(r, "property_id")
	if err != nil {
		return nil, err
	}

	var status *enums.PaymentStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status").WithDetails(map[string]any{"field": "status"})
		}
		status = &parsed
	}

	from, err := validators.ParseQueryTime(r, "from")
	if err != nil {
		return nil, err
	}
	to, err := validators.ParseQueryTime(r, "to")
	if err != nil {
		return nil, err
	}

	return &payments.ListQuery{
		TenantID:   tenantID,
		PropertyID: propertyID,
		Status:     status,
		From:       from,
		To:         to,
		Limit:      limit,
		Cursor:     cursor,
	}, nil
}

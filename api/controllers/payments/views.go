package paymentcontrollers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgroom/pgroom-backend/pkg/db/models"
)

type PaymentView struct {
	ID                int64           `json:"id"`
	TenantID          int64           `json:"tenant_id"`
	PropertyID        int64           `json:"property_id"`
	RoomID            int64           `json:"room_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	PaymentMethod     *string         `json:"payment_method,omitempty"`
	RazorpayOrderID   string          `json:"razorpay_order_id"`
	RazorpayPaymentID *string         `json:"razorpay_payment_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	Tenant   *TenantView   `json:"tenant,omitempty"`
	Property *PropertyView `json:"property,omitempty"`
	Room     *RoomView     `json:"room,omitempty"`
}

type TenantView struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type PropertyView struct {
	ID              int64  `json:"id"`
	PropertyName    string `json:"property_name"`
	PropertyAddress string `json:"property_address"`
}

type RoomView struct {
	ID     int64  `json:"id"`
	RoomNo string `json:"room_no"`
}

func toPaymentView(payment *models.Payment) PaymentView {
	view := PaymentView{
		ID:                payment.ID,
		TenantID:          payment.TenantID,
		PropertyID:        payment.PropertyID,
		RoomID:            payment.RoomID,
		Amount:            payment.Amount,
		Currency:          payment.Currency.String(),
		Status:            payment.Status.String(),
		RazorpayOrderID:   payment.RazorpayOrderID,
		RazorpayPaymentID: payment.RazorpayPaymentID,
		CreatedAt:         payment.CreatedAt,
		UpdatedAt:         payment.UpdatedAt,
	}
	if payment.PaymentMethod != nil {
		method := payment.PaymentMethod.String()
		view.PaymentMethod = &method
	}
	if payment.Tenant != nil {
		view.Tenant = &TenantView{
			ID:        payment.Tenant.ID,
			FirstName: payment.Tenant.FirstName,
			LastName:  payment.Tenant.LastName,
			Email:     payment.Tenant.Email,
		}
	}
	if payment.Property != nil {
		view.Property = &PropertyView{
			ID:              payment.Property.ID,
			PropertyName:    payment.Property.PropertyName,
			PropertyAddress: payment.Property.PropertyAddress,
		}
	}
	if payment.Room != nil {
		view.Room = &RoomView{
			ID:     payment.Room.ID,
			RoomNo: payment.Room.RoomNo,
		}
	}
	return view
}

func toPaymentViews(rows []models.Payment) []PaymentView {
	views := make([]PaymentView, 0, len(rows))
	for i := range rows {
		views = append(views, toPaymentView(&rows[i]))
	}
	return views
}

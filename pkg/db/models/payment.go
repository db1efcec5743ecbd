package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgroom/pgroom-backend/pkg/enums"
)

// Payment is one rent payment intent tied to a tenant/property/room triple.
// Rows are never hard-deleted; refunds and failures are terminal states.
type Payment struct {
	ID         int64 `gorm:"column:id;primaryKey;autoIncrement"`
	TenantID   int64 `gorm:"column:tenant_id;not null;index"`
	PropertyID int64 `gorm:"column:property_id;not null;index"`
	RoomID     int64 `gorm:"column:room_id;not null"`

	// Amount is the major-unit value from the system of record. The gateway
	// only ever sees the minor-unit conversion.
	Amount   decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency enums.Currency  `gorm:"column:currency;type:char(3);not null;default:'INR'"`

	RazorpayOrderID   string  `gorm:"column:razorpay_order_id;not null;uniqueIndex:idx_payments_razorpay_order_id"`
	RazorpayPaymentID *string `gorm:"column:razorpay_payment_id;uniqueIndex:idx_payments_razorpay_payment_id"`
	// RazorpaySignature is the last verified signature, kept for audit only.
	RazorpaySignature *string `gorm:"column:razorpay_signature"`

	Status        enums.PaymentStatus  `gorm:"column:status;not null;default:'pending';index"`
	PaymentMethod *enums.PaymentMethod `gorm:"column:payment_method"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Tenant   *Tenant   `gorm:"foreignKey:TenantID"`
	Property *Property `gorm:"foreignKey:PropertyID"`
	Room     *Room     `gorm:"foreignKey:RoomID"`
}

// TableName pins the legacy table name.
func (Payment) TableName() string {
	return "payments"
}

package payments

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pgroom/pgroom-backend/pkg/db/models"
	"github.com/pgroom/pgroom-backend/pkg/enums"
	"github.com/pgroom/pgroom-backend/pkg/pagination"
)

// Repository handles payment persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	UpdateFields(ctx context.Context, id int64, updates map[string]any) error
	// UpdateStatusIf applies updates only while the row still holds one of
	// the allowed statuses. Returns false when the guard did not match.
	UpdateStatusIf(ctx context.Context, id int64, to enums.PaymentStatus, allowedFrom []enums.PaymentStatus, updates map[string]any) (bool, error)
	FindByID(ctx context.Context, id int64) (*models.Payment, error)
	FindByOrderID(ctx context.Context, razorpayOrderID string) (*models.Payment, error)
	FindByPaymentID(ctx context.Context, razorpayPaymentID string) (*models.Payment, error)
	List(ctx context.Context, params ListQuery) ([]models.Payment, *pagination.Cursor, error)
}

// ListQuery configures payment list queries.
type ListQuery struct {
	TenantID   *int64
	PropertyID *int64
	Status     *enums.PaymentStatus
	From       *time.Time
	To         *time.Time
	Limit      int
	Cursor     *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) UpdateFields(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateStatusIf(ctx context.Context, id int64, to enums.PaymentStatus, allowedFrom []enums.PaymentStatus, updates map[string]any) (bool, error) {
	if len(allowedFrom) == 0 {
		return false, nil
	}

	merged := map[string]any{"status": to}
	for k, v := range updates {
		merged[k] = v
	}

	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status IN (?)", id, allowedFrom).
		Updates(merged)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		Preload("Tenant").
		Preload("Property").
		Preload("Room").
		Where("id = ?", id).
		First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindByOrderID(ctx context.Context, razorpayOrderID string) (*models.Payment, error) {
	if razorpayOrderID == "" {
		return nil, nil
	}
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		Where("razorpay_order_id = ?", razorpayOrderID).
		First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindByPaymentID(ctx context.Context, razorpayPaymentID string) (*models.Payment, error) {
	if razorpayPaymentID == "" {
		return nil, nil
	}
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		Where("razorpay_payment_id = ?", razorpayPaymentID).
		First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) List(ctx context.Context, params ListQuery) ([]models.Payment, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if params.TenantID != nil {
		query = query.Where("tenant_id = ?", *params.TenantID)
	}
	if params.PropertyID != nil {
		query = query.Where("property_id = ?", *params.PropertyID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.From != nil {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("created_at < ?", *params.To)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Payment
	if err := query.
		Preload("Tenant").
		Preload("Property").
		Preload("Room").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[limit-1]
		return rows, &pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		}, nil
	}

	return rows, nil, nil
}

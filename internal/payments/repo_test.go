package payments

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pgroom/pgroom-backend/pkg/db"
	"github.com/pgroom/pgroom-backend/pkg/db/models"
	"github.com/pgroom/pgroom-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Tenant{},
		&models.Property{},
		&models.Room{},
		&models.Payment{},
	))
	return conn
}

func seedRow(t *testing.T, repo Repository, orderID string, status enums.PaymentStatus) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		TenantID:        1,
		PropertyID:      1,
		RoomID:          1,
		Amount:          decimal.RequireFromString("5000.00"),
		Currency:        enums.CurrencyINR,
		RazorpayOrderID: orderID,
		Status:          status,
	}
	require.NoError(t, repo.Create(context.Background(), payment))
	return payment
}

func TestRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	row := seedRow(t, repo, "order_one", enums.PaymentStatusPending)
	require.NotZero(t, row.ID)

	found, err := repo.FindByOrderID(ctx, "order_one")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, row.ID, found.ID)
	assert.Equal(t, enums.PaymentStatusPending, found.Status)

	missing, err := repo.FindByOrderID(ctx, "order_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = repo.FindByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepositoryDuplicateOrderID(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	seedRow(t, repo, "order_dup", enums.PaymentStatusPending)

	err := repo.Create(ctx, &models.Payment{
		TenantID:        2,
		PropertyID:      2,
		RoomID:          2,
		Amount:          decimal.RequireFromString("100.00"),
		Currency:        enums.CurrencyINR,
		RazorpayOrderID: "order_dup",
		Status:          enums.PaymentStatusPending,
	})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryUpdateStatusIf(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	row := seedRow(t, repo, "order_cas", enums.PaymentStatusPending)

	applied, err := repo.UpdateStatusIf(ctx, row.ID, enums.PaymentStatusCaptured,
		[]enums.PaymentStatus{enums.PaymentStatusPending, enums.PaymentStatusAuthorized},
		map[string]any{"razorpay_payment_id": "pay_cas"})
	require.NoError(t, err)
	assert.True(t, applied)

	found, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusCaptured, found.Status)
	require.NotNil(t, found.RazorpayPaymentID)
	assert.Equal(t, "pay_cas", *found.RazorpayPaymentID)

	// guard no longer matches, write must not apply
	applied, err = repo.UpdateStatusIf(ctx, row.ID, enums.PaymentStatusAuthorized,
		[]enums.PaymentStatus{enums.PaymentStatusPending}, nil)
	require.NoError(t, err)
	assert.False(t, applied)

	found, err = repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusCaptured, found.Status)
}

func TestRepositoryFindByPaymentID(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	row := seedRow(t, repo, "order_pid", enums.PaymentStatusPending)

	applied, err := repo.UpdateStatusIf(ctx, row.ID, enums.PaymentStatusCaptured,
		[]enums.PaymentStatus{enums.PaymentStatusPending},
		map[string]any{"razorpay_payment_id": "pay_pid"})
	require.NoError(t, err)
	require.True(t, applied)

	found, err := repo.FindByPaymentID(ctx, "pay_pid")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, row.ID, found.ID)

	missing, err := repo.FindByPaymentID(ctx, "pay_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepositoryList(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	repo := NewRepository(conn)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		payment := &models.Payment{
			TenantID:        int64(1 + i%2),
			PropertyID:      1,
			RoomID:          1,
			Amount:          decimal.RequireFromString("5000.00"),
			Currency:        enums.CurrencyINR,
			RazorpayOrderID: fmt.Sprintf("order_list_%d", i),
			Status:          enums.PaymentStatusPending,
		}
		require.NoError(t, repo.Create(ctx, payment))
		// spread created_at for deterministic ordering
		require.NoError(t, conn.Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	t.Run("filters by tenant", func(t *testing.T) {
		tenantID := int64(1)
		rows, next, err := repo.List(ctx, ListQuery{TenantID: &tenantID})
		require.NoError(t, err)
		assert.Nil(t, next)
		assert.Len(t, rows, 3)
		for _, row := range rows {
			assert.Equal(t, tenantID, row.TenantID)
		}
	})

	t.Run("paginates with cursor", func(t *testing.T) {
		rows, next, err := repo.List(ctx, ListQuery{Limit: 2})
		require.NoError(t, err)
		require.NotNil(t, next)
		require.Len(t, rows, 2)
		assert.Equal(t, "order_list_4", rows[0].RazorpayOrderID)
		assert.Equal(t, "order_list_3", rows[1].RazorpayOrderID)

		rows, next, err = repo.List(ctx, ListQuery{Limit: 2, Cursor: next})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "order_list_2", rows[0].RazorpayOrderID)
		assert.Equal(t, "order_list_1", rows[1].RazorpayOrderID)

		rows, next, err = repo.List(ctx, ListQuery{Limit: 2, Cursor: next})
		require.NoError(t, err)
		assert.Nil(t, next)
		require.Len(t, rows, 1)
		assert.Equal(t, "order_list_0", rows[0].RazorpayOrderID)
	})

	t.Run("filters by status and window", func(t *testing.T) {
		status := enums.PaymentStatusPending
		from := base.Add(90 * time.Second)
		to := base.Add(210 * time.Second)
		rows, _, err := repo.List(ctx, ListQuery{Status: &status, From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "order_list_3", rows[0].RazorpayOrderID)
		assert.Equal(t, "order_list_2", rows[1].RazorpayOrderID)
	})
}

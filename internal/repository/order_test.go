package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"online-store-backend/internal/client"
	"online-store-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, client.Migrate(db))
	return db
}

func TestGetOrCreatePendingReturnsSameOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreatePending(ctx, db, "user-1")
	require.NoError(t, err)
	second, err := repo.GetOrCreatePending(ctx, db, "user-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestPendingUniqueIndexRejectsSecondCart(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(db)

	_, err := repo.GetOrCreatePending(ctx, db, "user-1")
	require.NoError(t, err)

	err = db.Create(&model.Order{
		ID:     uuid.NewString(),
		UserID: "user-1",
		Status: model.OrderPending,
	}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestOrderedOrdersDoNotBlockNewCart(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreatePending(ctx, db, "user-1")
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, db, first.ID, model.OrderOrdered))

	second, err := repo.GetOrCreatePending(ctx, db, "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestDecrementStockNeverGoesNegative(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	product := &model.Product{ID: "p1", Name: "Beans", StockQuantity: 3, IsActive: true}
	require.NoError(t, db.Create(product).Error)

	require.NoError(t, repo.DecrementStock(ctx, db, "p1", 2))
	err := repo.DecrementStock(ctx, db, "p1", 2)
	assert.True(t, errors.Is(err, ErrStockConflict))

	fresh, err := repo.FindByID(ctx, db, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.StockQuantity)
}

func TestDeleteOrderCascadesToItemsAndPayment(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	ctx := context.Background()
	repo := NewOrderRepository(db)

	order, err := repo.GetOrCreatePending(ctx, db, "user-1")
	require.NoError(t, err)
	require.NoError(t, repo.CreateItem(ctx, db, &model.OrderItem{
		ID:        uuid.NewString(),
		OrderID:   order.ID,
		ProductID: "p1",
		Quantity:  1,
	}))

	require.NoError(t, db.Delete(&model.Order{}, "id = ?", order.ID).Error)

	var items int64
	require.NoError(t, db.Model(&model.OrderItem{}).Where("order_id = ?", order.ID).Count(&items).Error)
	assert.Equal(t, int64(0), items)
}

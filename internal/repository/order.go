package repository

import (
	"context"
	"errors"
	"time"

	"online-store-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	FindByID(ctx context.Context, tx *gorm.DB, orderID string, forUpdate bool) (*model.Order, error)
	FindPendingByUser(ctx context.Context, tx *gorm.DB, userID string, forUpdate bool) (*model.Order, error)
	GetOrCreatePending(ctx context.Context, tx *gorm.DB, userID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderID string, status model.OrderStatus) error

	FindItem(ctx context.Context, tx *gorm.DB, orderID, productID string) (*model.OrderItem, error)
	CreateItem(ctx context.Context, tx *gorm.DB, item *model.OrderItem) error
	UpdateItemQuantity(ctx context.Context, tx *gorm.DB, itemID string, quantity int) error
	DeleteItem(ctx context.Context, tx *gorm.DB, itemID string) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, orderID string, forUpdate bool) (*model.Order, error) {
	q := tx.WithContext(ctx)
	if forUpdate {
		q = lockForUpdate(q)
	}

	var order model.Order
	err := q.Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindPendingByUser(ctx context.Context, tx *gorm.DB, userID string, forUpdate bool) (*model.Order, error) {
	q := tx.WithContext(ctx)
	if forUpdate {
		q = lockForUpdate(q)
	}

	var order model.Order
	err := q.Preload("Items").
		Where("user_id = ? AND status = ?", userID, model.OrderPending).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

// GetOrCreatePending returns the user's cart, creating it on first use.
// A lost creation race trips the one-pending-per-user unique index and is
// resolved by re-reading the winner's row.
func (r *orderRepoImpl) GetOrCreatePending(ctx context.Context, tx *gorm.DB, userID string) (*model.Order, error) {
	order, err := r.FindPendingByUser(ctx, tx, userID, false)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &model.Order{
		ID:     uuid.NewString(),
		UserID: userID,
		Status: model.OrderPending,
	}
	err = tx.WithContext(ctx).Create(created).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.FindPendingByUser(ctx, tx, userID, false)
	}
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID string, status model.OrderStatus) error {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) FindItem(ctx context.Context, tx *gorm.DB, orderID, productID string) (*model.OrderItem, error) {
	var item model.OrderItem
	err := tx.WithContext(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *orderRepoImpl) CreateItem(ctx context.Context, tx *gorm.DB, item *model.OrderItem) error {
	return tx.WithContext(ctx).Create(item).Error
}

func (r *orderRepoImpl) UpdateItemQuantity(ctx context.Context, tx *gorm.DB, itemID string, quantity int) error {
	return tx.WithContext(ctx).Model(&model.OrderItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		}).Error
}

func (r *orderRepoImpl) DeleteItem(ctx context.Context, tx *gorm.DB, itemID string) error {
	return tx.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&model.OrderItem{}).Error
}

package repository

import (
	"context"
	"time"

	"online-store-backend/internal/model"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	FindByIntentID(ctx context.Context, tx *gorm.DB, paymentIntentID string) (*model.Payment, error)
	FindByIDForUser(ctx context.Context, paymentID, userID string) (*model.Payment, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, paymentID string, status model.PaymentStatus) error
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindByIntentID(ctx context.Context, tx *gorm.DB, paymentIntentID string) (*model.Payment, error) {
	var payment model.Payment
	err := tx.WithContext(ctx).
		Where("stripe_payment_intent_id = ?", paymentIntentID).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// FindByIDForUser resolves a payment only when its order belongs to userID.
func (r *paymentRepoImpl) FindByIDForUser(ctx context.Context, paymentID, userID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("payments.id = ? AND orders.user_id = ?", paymentID, userID).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, paymentID string, status model.PaymentStatus) error {
	return tx.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", paymentID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

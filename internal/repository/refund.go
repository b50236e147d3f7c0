package repository

import (
	"context"
	"time"

	"online-store-backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RefundRepository interface {
	Create(ctx context.Context, refund *model.Refund) error
	MarkSucceeded(ctx context.Context, refundID, stripeRefundID string) error
	MarkFailed(ctx context.Context, refundID, failureReason string) error
	SumSucceeded(ctx context.Context, tx *gorm.DB, paymentID string) (decimal.Decimal, error)
}

type refundRepoImpl struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) RefundRepository {
	return &refundRepoImpl{
		db: db,
	}
}

func (r *refundRepoImpl) Create(ctx context.Context, refund *model.Refund) error {
	return r.db.WithContext(ctx).Create(refund).Error
}

func (r *refundRepoImpl) MarkSucceeded(ctx context.Context, refundID, stripeRefundID string) error {
	return r.db.WithContext(ctx).Model(&model.Refund{}).
		Where("id = ?", refundID).
		Updates(map[string]interface{}{
			"status":           model.RefundSucceeded,
			"stripe_refund_id": stripeRefundID,
			"updated_at":       time.Now(),
		}).Error
}

func (r *refundRepoImpl) MarkFailed(ctx context.Context, refundID, failureReason string) error {
	return r.db.WithContext(ctx).Model(&model.Refund{}).
		Where("id = ?", refundID).
		Updates(map[string]interface{}{
			"status":         model.RefundFailed,
			"failure_reason": failureReason,
			"updated_at":     time.Now(),
		}).Error
}

func (r *refundRepoImpl) SumSucceeded(ctx context.Context, tx *gorm.DB, paymentID string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := tx.WithContext(ctx).Model(&model.Refund{}).
		Select("SUM(amount)").
		Where("payment_id = ? AND status = ?", paymentID, model.RefundSucceeded).
		Scan(&sum).Error

	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

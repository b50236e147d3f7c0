package service

import (
	"context"
	"errors"
	"fmt"

	"online-store-backend/internal/apperr"
	"online-store-backend/internal/client"
	"online-store-backend/internal/dto"
	"online-store-backend/internal/model"
	"online-store-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentService interface {
	Refund(ctx context.Context, userID, paymentID string, amount decimal.Decimal, reason string) (*dto.RefundResponse, error)
}

type paymentServiceImpl struct {
	db           *gorm.DB
	stripeClient client.StripeClient
	paymentRepo  repository.PaymentRepository
	refundRepo   repository.RefundRepository
}

func NewPaymentService(
	db *gorm.DB,
	stripeClient client.StripeClient,
	paymentRepo repository.PaymentRepository,
	refundRepo repository.RefundRepository,
) PaymentService {
	return &paymentServiceImpl{
		db:           db,
		stripeClient: stripeClient,
		paymentRepo:  paymentRepo,
		refundRepo:   refundRepo,
	}
}

// Refund issues a gateway refund against a settled payment. The refund row
// is written PENDING before the gateway call so a crash mid-flight leaves
// an auditable trace. Once cumulative succeeded refunds cover the full
// payment amount the payment itself flips to REFUNDED.
func (s *paymentServiceImpl) Refund(ctx context.Context, userID, paymentID string, amount decimal.Decimal, reason string) (*dto.RefundResponse, error) {
	payment, err := s.paymentRepo.FindByIDForUser(ctx, paymentID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "payment not found")
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}

	if payment.Status != model.PaymentSucceeded {
		return nil, apperr.New(apperr.KindInvalidState, "payment cannot be refunded")
	}
	if payment.StripePaymentIntentID == nil {
		return nil, apperr.New(apperr.KindInvalidState, "payment has no gateway reference")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.New(apperr.KindInvalidAmount, "refund amount must be positive")
	}
	if amount.GreaterThan(payment.Amount) {
		return nil, apperr.New(apperr.KindInvalidAmount, "refund amount cannot exceed payment amount")
	}

	refund := &model.Refund{
		ID:        uuid.NewString(),
		PaymentID: payment.ID,
		Amount:    amount,
		Reason:    reason,
		Status:    model.RefundPending,
	}
	if err := s.refundRepo.Create(ctx, refund); err != nil {
		return nil, fmt.Errorf("create refund: %w", err)
	}

	stripeRefund, err := s.stripeClient.CreateRefund(ctx,
		*payment.StripePaymentIntentID,
		minorUnits(amount),
		"requested_by_customer",
		map[string]string{"refund_id": refund.ID},
	)
	if err != nil {
		if markErr := s.refundRepo.MarkFailed(ctx, refund.ID, err.Error()); markErr != nil {
			return nil, fmt.Errorf("mark refund failed: %w", markErr)
		}
		return nil, apperr.Wrap(apperr.KindGateway, "gateway refund failed", err)
	}

	if err := s.refundRepo.MarkSucceeded(ctx, refund.ID, stripeRefund.ID); err != nil {
		return nil, fmt.Errorf("mark refund succeeded: %w", err)
	}

	refunded, err := s.refundRepo.SumSucceeded(ctx, s.db, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("sum refunds: %w", err)
	}
	if refunded.GreaterThanOrEqual(payment.Amount) {
		if err := s.paymentRepo.UpdateStatus(ctx, s.db, payment.ID, model.PaymentRefunded); err != nil {
			return nil, fmt.Errorf("update payment status: %w", err)
		}
	}

	return &dto.RefundResponse{
		RefundID: refund.ID,
		Amount:   amount.StringFixed(2),
		Status:   "succeeded",
	}, nil
}

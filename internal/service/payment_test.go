package service

import (
	"context"
	"errors"
	"testing"

	"online-store-backend/internal/apperr"
	"online-store-backend/internal/model"
	"online-store-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type paymentFixture struct {
	db      *gorm.DB
	stripe  *fakeStripe
	payment PaymentService
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	db := newTestDB(t)
	stripe := newFakeStripe()
	return &paymentFixture{
		db:     db,
		stripe: stripe,
		payment: NewPaymentService(db, stripe,
			repository.NewPaymentRepository(db),
			repository.NewRefundRepository(db)),
	}
}

// seedPayment writes a settled order/payment pair the way a completed
// checkout would have left them.
func (f *paymentFixture) seedPayment(t *testing.T, userID, amount string, status model.PaymentStatus) *model.Payment {
	t.Helper()

	order := &model.Order{ID: uuid.NewString(), UserID: userID, Status: model.OrderOrdered}
	require.NoError(t, f.db.Create(order).Error)

	intentID := "pi_" + uuid.NewString()
	payment := &model.Payment{
		ID:                    uuid.NewString(),
		OrderID:               order.ID,
		StripePaymentIntentID: &intentID,
		Amount:                mustDecimal(t, amount),
		Currency:              "usd",
		Status:                status,
		PaymentMethod:         model.PaymentMethodCard,
	}
	require.NoError(t, f.db.Create(payment).Error)
	return payment
}

func (f *paymentFixture) reloadPayment(t *testing.T, paymentID string) *model.Payment {
	t.Helper()
	var payment model.Payment
	require.NoError(t, f.db.First(&payment, "id = ?", paymentID).Error)
	return &payment
}

func TestRefundPartial(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.seedPayment(t, "user-1", "100.00", model.PaymentSucceeded)

	resp, err := f.payment.Refund(context.Background(), "user-1", payment.ID, mustDecimal(t, "40.00"), "damaged box")
	require.NoError(t, err)
	assert.Equal(t, "succeeded", resp.Status)

	var refund model.Refund
	require.NoError(t, f.db.First(&refund, "id = ?", resp.RefundID).Error)
	assert.Equal(t, model.RefundSucceeded, refund.Status)
	require.NotNil(t, refund.StripeRefundID)
	assert.Equal(t, "40.00", refund.Amount.StringFixed(2))

	// partial refund leaves the payment settled
	assert.Equal(t, model.PaymentSucceeded, f.reloadPayment(t, payment.ID).Status)
}

func TestRefundFullAmountFlipsPaymentToRefunded(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.seedPayment(t, "user-1", "100.00", model.PaymentSucceeded)
	ctx := context.Background()

	_, err := f.payment.Refund(ctx, "user-1", payment.ID, mustDecimal(t, "60.00"), "first half")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentSucceeded, f.reloadPayment(t, payment.ID).Status)

	_, err = f.payment.Refund(ctx, "user-1", payment.ID, mustDecimal(t, "40.00"), "second half")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, f.reloadPayment(t, payment.ID).Status)
}

func TestRefundAmountExceedsPayment(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.seedPayment(t, "user-1", "50.00", model.PaymentSucceeded)

	_, err := f.payment.Refund(context.Background(), "user-1", payment.ID, mustDecimal(t, "50.01"), "too much")
	assert.True(t, apperr.Is(err, apperr.KindInvalidAmount))
}

func TestRefundRejectsNonPositiveAmount(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.seedPayment(t, "user-1", "50.00", model.PaymentSucceeded)

	_, err := f.payment.Refund(context.Background(), "user-1", payment.ID, mustDecimal(t, "0"), "zero")
	assert.True(t, apperr.Is(err, apperr.KindInvalidAmount))
}

func TestRefundUnsettledPayment(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.seedPayment(t, "user-1", "50.00", model.PaymentPending)

	_, err := f.payment.Refund(context.Background(), "user-1", payment.ID, mustDecimal(t, "10.00"), "not yet")
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestRefundForeignPayment(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.seedPayment(t, "user-1", "50.00", model.PaymentSucceeded)

	_, err := f.payment.Refund(context.Background(), "user-2", payment.ID, mustDecimal(t, "10.00"), "not mine")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRefundGatewayFailure(t *testing.T) {
	f := newPaymentFixture(t)
	payment := f.seedPayment(t, "user-1", "50.00", model.PaymentSucceeded)
	f.stripe.refundErr = errors.New("stripe error 402: charge_disputed")

	_, err := f.payment.Refund(context.Background(), "user-1", payment.ID, mustDecimal(t, "10.00"), "dispute")
	require.True(t, apperr.Is(err, apperr.KindGateway))

	var refund model.Refund
	require.NoError(t, f.db.First(&refund, "payment_id = ?", payment.ID).Error)
	assert.Equal(t, model.RefundFailed, refund.Status)
	assert.Contains(t, refund.FailureReason, "charge_disputed")
	assert.Equal(t, model.PaymentSucceeded, f.reloadPayment(t, payment.ID).Status)
}

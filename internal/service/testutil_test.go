package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"online-store-backend/internal/client"
	"online-store-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

func seedProduct(t *testing.T, db *gorm.DB, name string, price string, stock int) *model.Product {
	t.Helper()

	p := &model.Product{
		ID:            uuid.NewString(),
		Name:          name,
		Price:         mustDecimal(t, price),
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// fakeStripe is an in-memory gateway double. Sessions registered through
// CreateCheckoutSession (or put directly) are served by RetrieveSession.
type fakeStripe struct {
	sessions  map[string]*model.CheckoutSession
	lastLines []client.SessionLineItem
	nextSeq   int
	refundErr error
	refundSeq int
}

func newFakeStripe() *fakeStripe {
	return &fakeStripe{sessions: map[string]*model.CheckoutSession{}}
}

func (f *fakeStripe) CreateCheckoutSession(_ context.Context, lines []client.SessionLineItem, _, _ string, metadata map[string]string) (*model.CheckoutSession, error) {
	f.nextSeq++
	f.lastLines = lines
	sess := &model.CheckoutSession{
		ID:            fmt.Sprintf("cs_test_%d", f.nextSeq),
		URL:           fmt.Sprintf("https://checkout.example.com/%d", f.nextSeq),
		PaymentStatus: "unpaid",
		PaymentIntent: fmt.Sprintf("pi_test_%d", f.nextSeq),
		Customer:      fmt.Sprintf("cus_test_%d", f.nextSeq),
		Metadata:      metadata,
	}
	f.sessions[sess.ID] = sess
	return sess, nil
}

func (f *fakeStripe) RetrieveSession(_ context.Context, sessionID string) (*model.CheckoutSession, error) {
	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("stripe error 404: no such session")
	}
	return sess, nil
}

func (f *fakeStripe) CreateRefund(_ context.Context, _ string, _ int64, _ string, _ map[string]string) (*model.StripeRefund, error) {
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	f.refundSeq++
	return &model.StripeRefund{ID: fmt.Sprintf("re_test_%d", f.refundSeq), Status: "succeeded"}, nil
}

const validSignature = "t=1,v1=valid"

func (f *fakeStripe) VerifyWebhookSignature(payload []byte, sigHeader string) (*model.StripeEvent, error) {
	if sigHeader != validSignature {
		return nil, fmt.Errorf("webhook signature mismatch")
	}
	var event model.StripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	return &event, nil
}

// markPaid flips a fake session to the settled state the way the hosted
// checkout page would.
func (f *fakeStripe) markPaid(sessionID string) {
	f.sessions[sessionID].PaymentStatus = "paid"
}

func sessionCompletedEvent(t *testing.T, eventID string, sess *model.CheckoutSession) []byte {
	t.Helper()

	object, err := json.Marshal(sess)
	require.NoError(t, err)
	payload, err := json.Marshal(map[string]any{
		"id":   eventID,
		"type": "checkout.session.completed",
		"data": map[string]any{"object": json.RawMessage(object)},
	})
	require.NoError(t, err)
	return payload
}

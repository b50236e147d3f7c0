package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func newTestClient(baseURL string) *stripeClientImpl {
	return &stripeClientImpl{
		httpClient:    &http.Client{Timeout: time.Second},
		baseApiURL:    baseURL,
		secretKey:     "sk_test",
		webhookSecret: testSecret,
		now:           func() time.Time { return time.Unix(1_700_000_000, 0) },
	}
}

func sign(t *testing.T, secret string, timestamp int64, payload []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyWebhookSignatureValid(t *testing.T) {
	c := newTestClient("")
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)

	event, err := c.VerifyWebhookSignature(payload, sign(t, testSecret, 1_700_000_000, payload))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "checkout.session.completed", event.Type)

	sess, err := event.Session()
	require.NoError(t, err)
	assert.Equal(t, "cs_1", sess.ID)
}

func TestVerifyWebhookSignatureWrongSecret(t *testing.T) {
	c := newTestClient("")
	payload := []byte(`{"id":"evt_1"}`)

	_, err := c.VerifyWebhookSignature(payload, sign(t, "whsec_other", 1_700_000_000, payload))
	assert.Error(t, err)
}

func TestVerifyWebhookSignatureTamperedPayload(t *testing.T) {
	c := newTestClient("")
	payload := []byte(`{"id":"evt_1"}`)
	header := sign(t, testSecret, 1_700_000_000, payload)

	_, err := c.VerifyWebhookSignature([]byte(`{"id":"evt_evil"}`), header)
	assert.Error(t, err)
}

func TestVerifyWebhookSignatureStaleTimestamp(t *testing.T) {
	c := newTestClient("")
	payload := []byte(`{"id":"evt_1"}`)
	stale := int64(1_700_000_000) - int64((webhookTolerance + time.Minute).Seconds())

	_, err := c.VerifyWebhookSignature(payload, sign(t, testSecret, stale, payload))
	assert.Error(t, err)
}

func TestVerifyWebhookSignatureMalformedHeader(t *testing.T) {
	c := newTestClient("")
	payload := []byte(`{"id":"evt_1"}`)

	for _, header := range []string{"", "v1=deadbeef", "t=abc,v1=deadbeef", "t=123"} {
		_, err := c.VerifyWebhookSignature(payload, header)
		assert.Error(t, err, "header %q", header)
	}
}

func TestCreateCheckoutSessionEncodesForm(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		fmt.Fprint(w, `{"id":"cs_1","url":"https://checkout.stripe.com/cs_1","payment_status":"unpaid"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	sess, err := c.CreateCheckoutSession(context.Background(),
		[]SessionLineItem{{Name: "Beans", UnitAmount: 1850, Quantity: 2}},
		"https://shop.example.com/ok", "https://shop.example.com/cart",
		map[string]string{"order_id": "order-1"},
	)
	require.NoError(t, err)

	assert.Equal(t, "cs_1", sess.ID)
	assert.Equal(t, "payment", form.Get("mode"))
	assert.Equal(t, "Beans", form.Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "1850", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "2", form.Get("line_items[0][quantity]"))
	assert.Equal(t, "order-1", form.Get("metadata[order_id]"))
}

func TestRetrieveSessionSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"message":"No such checkout session"}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.RetrieveSession(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestCreateRefundEncodesForm(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/refunds", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		fmt.Fprint(w, `{"id":"re_1","status":"succeeded"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	refund, err := c.CreateRefund(context.Background(), "pi_1", 4000, "requested_by_customer",
		map[string]string{"refund_id": "refund-1"})
	require.NoError(t, err)

	assert.Equal(t, "re_1", refund.ID)
	assert.Equal(t, "pi_1", form.Get("payment_intent"))
	assert.Equal(t, "4000", form.Get("amount"))
	assert.Equal(t, "refund-1", form.Get("metadata[refund_id]"))
}

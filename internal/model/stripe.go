package model

import "encoding/json"

// Wire types for the subset of the Stripe API this service consumes.

type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"` // "paid" when settled
	PaymentIntent string            `json:"payment_intent"`
	Customer      string            `json:"customer"`
	Metadata      map[string]string `json:"metadata"`
}

type StripeRefund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type StripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Session decodes the event object as a checkout session. Only meaningful
// for checkout.session.* event types.
func (e *StripeEvent) Session() (*CheckoutSession, error) {
	var sess CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

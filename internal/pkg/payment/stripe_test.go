package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/bearbeat/bearbeat/internal/pkg/config"
)

func newTestStripeClient(secret string) *StripeClient {
	return NewStripeClient(config.Stripe{
		SecretKey:          "sk_test_123",
		WebhookSecret:      secret,
		SignatureTolerance: 5 * time.Minute,
	})
}

func signStripePayload(t *testing.T, payload []byte, secret string, ts int64) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyStripeWebhookSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	secret := "whsec_test"
	c := newTestStripeClient(secret)

	header := signStripePayload(t, payload, secret, time.Now().Unix())
	if !c.VerifyWebhookSignature(payload, header) {
		t.Fatalf("expected valid signature to verify")
	}
	if c.VerifyWebhookSignature([]byte(`{"tampered":true}`), header) {
		t.Fatalf("expected tampered payload to fail")
	}
	if c.VerifyWebhookSignature(payload, "t=abc,v1=deadbeef") {
		t.Fatalf("expected malformed header to fail")
	}
	if c.VerifyWebhookSignature(payload, "") {
		t.Fatalf("expected empty header to fail")
	}
}

func TestVerifyStripeWebhookSignature_Tolerance(t *testing.T) {
	payload := []byte(`{"id":"evt_2"}`)
	secret := "whsec_test"
	c := newTestStripeClient(secret)

	stale := time.Now().Add(-10 * time.Minute).Unix()
	header := signStripePayload(t, payload, secret, stale)
	if c.VerifyWebhookSignature(payload, header) {
		t.Fatalf("expected signature outside tolerance window to fail")
	}

	// Pin "now" so the same header verifies again.
	c.now = func() time.Time { return time.Unix(stale, 0).Add(time.Minute) }
	if !c.VerifyWebhookSignature(payload, header) {
		t.Fatalf("expected signature inside tolerance window to verify")
	}
}

func TestParseStripeWebhookEvent_CheckoutCompleted(t *testing.T) {
	raw := []byte(`{
		"id": "evt_3",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_1",
				"payment_intent": "pi_1",
				"amount_total": 4999,
				"currency": "usd",
				"payment_status": "paid",
				"metadata": { "pack_slug": "bear-beat-pack" },
				"customer_details": {
					"email": "dj@example.com",
					"name": "DJ Example",
					"phone": "+5215512345678"
				}
			}
		}
	}`)

	c := newTestStripeClient("whsec_test")
	ev, err := c.ParseWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.ID != "evt_3" || ev.Type != StripeEventCheckoutCompleted {
		t.Fatalf("unexpected envelope: id=%q type=%q", ev.ID, ev.Type)
	}
	if ev.Session == nil {
		t.Fatalf("expected session on checkout.session.completed")
	}
	s := ev.Session
	if s.SessionID != "cs_test_1" || s.PaymentIntentID != "pi_1" {
		t.Fatalf("unexpected ids: session=%q intent=%q", s.SessionID, s.PaymentIntentID)
	}
	if s.AmountCents != 4999 || s.Currency != "USD" {
		t.Fatalf("unexpected amount: %d %s", s.AmountCents, s.Currency)
	}
	if s.PackSlug != "bear-beat-pack" {
		t.Fatalf("unexpected pack slug %q", s.PackSlug)
	}
	if s.CustomerEmail != "dj@example.com" || s.PaymentStatus != "paid" {
		t.Fatalf("unexpected customer/status: %q %q", s.CustomerEmail, s.PaymentStatus)
	}
}

func TestParseStripeWebhookEvent_OtherEventHasNoSession(t *testing.T) {
	raw := []byte(`{"id":"evt_4","type":"payment_intent.created","data":{"object":{}}}`)

	c := newTestStripeClient("whsec_test")
	ev, err := c.ParseWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Session != nil {
		t.Fatalf("expected no session for non-checkout event")
	}
}

package payment

import (
	"testing"

	"github.com/bearbeat/bearbeat/internal/pkg/config"
)

func testPayPalConfig() config.PayPal {
	return config.PayPal{
		ClientID:  "client-id",
		Secret:    "client-secret",
		WebhookID: "wh-id",
		BaseURL:   "https://api-m.sandbox.paypal.com",
	}
}

func TestParsePayPalWebhookEvent_OrderApproved(t *testing.T) {
	raw := []byte(`{
		"id": "WH-1",
		"event_type": "CHECKOUT.ORDER.APPROVED",
		"resource": {
			"id": "5O190127TN364715T",
			"status": "APPROVED",
			"purchase_units": [
				{
					"reference_id": "default",
					"custom_id": "bear-beat-pack",
					"amount": { "currency_code": "USD", "value": "49.99" }
				}
			],
			"payer": {
				"email_address": "buyer@example.com",
				"name": { "given_name": "Ana", "surname": "Lopez" }
			}
		}
	}`)

	c := NewPayPalClient(testPayPalConfig())
	ev, err := c.ParseWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.ID != "WH-1" || ev.Type != PayPalEventCheckoutApproved {
		t.Fatalf("unexpected envelope: id=%q type=%q", ev.ID, ev.Type)
	}
	if ev.Session == nil {
		t.Fatalf("expected session on order approved event")
	}
	s := ev.Session
	if s.SessionID != "5O190127TN364715T" || s.PackSlug != "bear-beat-pack" {
		t.Fatalf("unexpected order: id=%q pack=%q", s.SessionID, s.PackSlug)
	}
	if s.AmountCents != 4999 || s.Currency != "USD" {
		t.Fatalf("unexpected amount: %d %s", s.AmountCents, s.Currency)
	}
	if s.CustomerName != "Ana Lopez" {
		t.Fatalf("unexpected payer name %q", s.CustomerName)
	}
	// Approved but not yet captured: unpaid until the capture completes.
	if s.PaymentStatus != "unpaid" {
		t.Fatalf("expected unpaid before capture, got %q", s.PaymentStatus)
	}
}

func TestNormalizePayPalOrder_CapturedIsPaid(t *testing.T) {
	obj := &paypalOrderObject{ID: "ORDER-1", Status: "COMPLETED"}
	obj.PurchaseUnits = make([]struct {
		ReferenceID string `json:"reference_id"`
		CustomID    string `json:"custom_id"`
		Amount      struct {
			CurrencyCode string `json:"currency_code"`
			Value        string `json:"value"`
		} `json:"amount"`
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	}, 1)
	obj.PurchaseUnits[0].Amount.CurrencyCode = "usd"
	obj.PurchaseUnits[0].Amount.Value = "100.00"
	obj.PurchaseUnits[0].Payments.Captures = append(obj.PurchaseUnits[0].Payments.Captures, struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}{ID: "CAP-1", Status: "COMPLETED"})

	s := normalizePayPalOrder(obj)
	if s.PaymentStatus != "paid" {
		t.Fatalf("expected captured order to be paid, got %q", s.PaymentStatus)
	}
	if s.PaymentIntentID != "CAP-1" {
		t.Fatalf("expected capture id as payment id, got %q", s.PaymentIntentID)
	}
	if s.AmountCents != 10000 {
		t.Fatalf("unexpected amount %d", s.AmountCents)
	}
}

func TestParseAmountToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "49.99", want: 4999},
		{in: "100", want: 10000},
		{in: "0.5", want: 50},
		{in: "12.5", want: 1250},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseAmountToCents(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseAmountToCents(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseAmountToCents(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("parseAmountToCents(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

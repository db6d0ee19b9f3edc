package payment

import "errors"

// CheckoutSession is the provider-agnostic view of a completed (or pending)
// hosted checkout, extracted from webhook payloads or session-retrieval calls.
type CheckoutSession struct {
	Provider        string
	SessionID       string
	PaymentIntentID string
	PackSlug        string
	AmountCents     int64
	Currency        string
	CustomerEmail   string
	CustomerName    string
	CustomerPhone   string
	PaymentStatus   string // normalized: "paid" or "unpaid"
}

// WebhookEvent is a parsed provider webhook envelope. Session is non-nil only
// for checkout-completed events.
type WebhookEvent struct {
	ID      string
	Type    string
	Session *CheckoutSession
}

var ErrNotCheckoutEvent = errors.New("event does not carry a checkout session")

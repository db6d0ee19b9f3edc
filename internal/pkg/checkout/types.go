package checkout

import "errors"

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// ActivationInput identifies the pending purchase to activate and carries the
// identity supplied by the completion page (or by the logged-in session).
type ActivationInput struct {
	SessionID string
	UserID    uint // authenticated user, 0 for guests
	Email     string
	Name      string
	Phone     string
}

// PurchaseCompletedEvent is emitted after a successful activation. Consumers
// (marketing sync, delivery email) run off the critical path.
type PurchaseCompletedEvent struct {
	PurchaseID          uint   `json:"purchase_id"`
	UserID              uint   `json:"user_id"`
	PackID              uint   `json:"pack_id"`
	Email               string `json:"email"`
	Name                string `json:"name"`
	Phone               string `json:"phone"`
	CredentialsAssigned bool   `json:"credentials_assigned"`
}

// EventPublisher hands completed-purchase events to the background queue.
type EventPublisher interface {
	PublishPurchaseCompleted(event PurchaseCompletedEvent) error
}

// RetryReport summarizes an admin retry run over pending purchases.
type RetryReport struct {
	Scanned   int      `json:"scanned"`
	Activated int      `json:"activated"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

// Typed failures the controllers translate into HTTP statuses.
var (
	ErrSessionNotFound = errors.New("pending purchase not found for session")
	ErrNotPaid         = errors.New("payment not confirmed for session")
	ErrNoEmail         = errors.New("no resolvable customer email for session")
	ErrUnknownPack     = errors.New("checkout session references an unknown pack")
	ErrPoolExhausted   = errors.New("no ftp accounts available in the pool")
)

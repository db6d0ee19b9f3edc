package models

import "time"

// Payment provider constants shared across purchase-related models.
const (
	PaymentProviderStripe = "stripe"
	PaymentProviderPayPal = "paypal"
)

const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

const (
	PendingStatusAwaitingCompletion = "awaiting_completion"
	PendingStatusCompleted          = "completed"
)

// PendingPurchase records a provider-confirmed payment that has not yet been
// linked to a user account. One row per provider checkout session; created by
// the webhook handler, promoted to a Purchase by the activation step.
type PendingPurchase struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Provider        string    `gorm:"type:varchar(20);not null;index" json:"provider"`
	SessionID       string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_pending_purchases_session" json:"session_id"`
	PaymentIntentID string    `gorm:"type:varchar(191);default:''" json:"payment_intent_id"`
	PackID          uint      `gorm:"not null;index" json:"pack_id"`
	AmountCents     int64     `gorm:"not null" json:"amount_cents"`
	Currency        string    `gorm:"type:varchar(3);not null" json:"currency"`
	CustomerEmail   string    `gorm:"type:varchar(200);default:''" json:"customer_email"`
	CustomerName    string    `gorm:"type:varchar(150);default:''" json:"customer_name"`
	CustomerPhone   string    `gorm:"type:varchar(32);default:''" json:"customer_phone"`
	PaymentStatus   string    `gorm:"type:varchar(32);not null;default:'unpaid';index" json:"payment_status"`
	Status          string    `gorm:"type:varchar(32);not null;default:'awaiting_completion';index" json:"status"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsPaid reports whether the provider confirmed the payment.
func (p *PendingPurchase) IsPaid() bool {
	return p.PaymentStatus == PaymentStatusPaid
}

// IsCompleted reports whether the pending purchase was already activated.
func (p *PendingPurchase) IsCompleted() bool {
	return p.Status == PendingStatusCompleted
}

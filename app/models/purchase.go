package models

import "time"

// Purchase is a finalized sale linked to a user. Created exactly once during
// activation; immutable afterwards except for the FTP credential assignment.
type Purchase struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Reference   string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"reference"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	PackID      uint      `gorm:"not null;index" json:"pack_id"`
	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	Currency    string    `gorm:"type:varchar(3);not null" json:"currency"`
	Provider    string    `gorm:"type:varchar(20);not null;index:ux_purchases_provider_payment,unique,priority:1" json:"provider"`
	PaymentID   string    `gorm:"type:varchar(191);not null;index:ux_purchases_provider_payment,unique,priority:2" json:"payment_id"`
	FTPUsername string    `gorm:"type:varchar(100);default:''" json:"ftp_username"`
	FTPPassword string    `gorm:"type:varchar(100);default:''" json:"-"`
	PurchasedAt time.Time `gorm:"type:timestamp;not null" json:"purchased_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasFTPCredentials reports whether a pool account was assigned.
func (p *Purchase) HasFTPCredentials() bool {
	return p.FTPUsername != ""
}

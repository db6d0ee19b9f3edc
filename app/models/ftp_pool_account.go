package models

import "time"

// FtpPoolAccount is one pre-provisioned FTP credential pair from a finite
// shared pool. Claimed by exactly one purchase via an atomic conditional
// update during activation; released only when an admin frees it after a
// refund.
type FtpPoolAccount struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Username   string     `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	Password   string     `gorm:"type:varchar(100);not null" json:"-"`
	InUse      bool       `gorm:"not null;default:false;index" json:"in_use"`
	PurchaseID *uint      `gorm:"default:null;index" json:"purchase_id,omitempty"`
	AssignedAt *time.Time `gorm:"type:timestamp;default:null" json:"assigned_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

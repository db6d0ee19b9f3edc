package models

import (
	"time"

	"gorm.io/gorm"
)

// VideoPack is a sellable download product: a library of DJ remix videos
// delivered via FTP and CDN-backed download links.
type VideoPack struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Slug             string         `gorm:"uniqueIndex;type:varchar(100);not null" json:"slug"`
	Name             string         `gorm:"type:varchar(200);not null" json:"name"`
	Description      string         `gorm:"type:text" json:"description"`
	PriceCents       int64          `gorm:"not null" json:"price_cents"`
	Currency         string         `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	BunnyPath        string         `gorm:"type:varchar(255)" json:"-"` // CDN directory for signed URLs
	ArchiveObjectKey string         `gorm:"type:varchar(255)" json:"-"` // object storage key of the pack archive
	IsActive         bool           `gorm:"default:true;index" json:"is_active"`
	DownloadCount    int64          `gorm:"default:0" json:"download_count"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

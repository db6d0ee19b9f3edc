package repository

import (
	"github.com/bearbeat/bearbeat/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// PackRepository defines the interface for video pack operations
type PackRepository interface {
	Create(pack *models.VideoPack) error
	GetByID(id uint) (*models.VideoPack, error)
	GetBySlug(slug string) (*models.VideoPack, error)
	GetActive() ([]models.VideoPack, error)
	Update(pack *models.VideoPack) error
}

// PurchaseRepository defines the interface for finalized purchases
type PurchaseRepository interface {
	GetByID(id uint) (*models.Purchase, error)
	GetByReference(reference string) (*models.Purchase, error)
	GetByUserID(userID uint) ([]models.Purchase, error)
	GetByUserAndPack(userID, packID uint) (*models.Purchase, error)
	List(offset, limit int) ([]models.Purchase, error)
	Count() (int64, error)
}

// PendingPurchaseRepository defines read access to pending purchases for
// admin views; the activation write path lives in the checkout package.
type PendingPurchaseRepository interface {
	GetBySessionID(sessionID string) (*models.PendingPurchase, error)
	ListAwaitingCompletion(offset, limit int) ([]models.PendingPurchase, error)
	CountAwaitingCompletion() (int64, error)
}

// FTPPoolRepository defines the interface for the shared FTP credential pool
type FTPPoolRepository interface {
	List(offset, limit int) ([]models.FtpPoolAccount, error)
	Restock(accounts []models.FtpPoolAccount) (int64, error)
	Release(accountID uint) error
	Stats() (*FTPPoolStats, error)
}

// FTPPoolStats summarizes pool occupancy for the admin dashboard.
type FTPPoolStats struct {
	Total     int64 `json:"total"`
	InUse     int64 `json:"in_use"`
	Available int64 `json:"available"`
}

// Repositories struct holds all repository instances
type Repositories struct {
	User            UserRepository
	Pack            PackRepository
	Purchase        PurchaseRepository
	PendingPurchase PendingPurchaseRepository
	FTPPool         FTPPoolRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:            NewUserRepository(db),
		Pack:            NewPackRepository(db),
		Purchase:        NewPurchaseRepository(db),
		PendingPurchase: NewPendingPurchaseRepository(db),
		FTPPool:         NewFTPPoolRepository(db),
	}
}

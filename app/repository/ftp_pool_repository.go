package repository

import (
	"github.com/bearbeat/bearbeat/app/models"
	"gorm.io/gorm"
)

// ftpPoolRepository implements the FTPPoolRepository interface
type ftpPoolRepository struct {
	db *gorm.DB
}

// NewFTPPoolRepository creates a new FTP pool repository instance
func NewFTPPoolRepository(db *gorm.DB) FTPPoolRepository {
	return &ftpPoolRepository{db: db}
}

func (r *ftpPoolRepository) List(offset, limit int) ([]models.FtpPoolAccount, error) {
	var accounts []models.FtpPoolAccount
	err := r.db.Order("id ASC").Offset(offset).Limit(limit).Find(&accounts).Error
	return accounts, err
}

// Restock bulk-inserts pre-provisioned accounts, skipping usernames that
// already exist so an admin can safely re-upload a credentials file.
func (r *ftpPoolRepository) Restock(accounts []models.FtpPoolAccount) (int64, error) {
	if len(accounts) == 0 {
		return 0, nil
	}
	tx := r.db.Clauses(onConflictUsernameDoNothing()).Create(&accounts)
	return tx.RowsAffected, tx.Error
}

// Release frees a pool account after a refund so it can be claimed again.
func (r *ftpPoolRepository) Release(accountID uint) error {
	return r.db.Model(&models.FtpPoolAccount{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"in_use":      false,
			"purchase_id": nil,
			"assigned_at": nil,
		}).Error
}

func (r *ftpPoolRepository) Stats() (*FTPPoolStats, error) {
	var stats FTPPoolStats
	if err := r.db.Model(&models.FtpPoolAccount{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.FtpPoolAccount{}).Where("in_use = ?", true).Count(&stats.InUse).Error; err != nil {
		return nil, err
	}
	stats.Available = stats.Total - stats.InUse
	return &stats, nil
}

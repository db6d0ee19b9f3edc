package repository

import (
	"github.com/bearbeat/bearbeat/app/models"
	"gorm.io/gorm"
)

// pendingPurchaseRepository implements the PendingPurchaseRepository interface
type pendingPurchaseRepository struct {
	db *gorm.DB
}

// NewPendingPurchaseRepository creates a new pending purchase repository instance
func NewPendingPurchaseRepository(db *gorm.DB) PendingPurchaseRepository {
	return &pendingPurchaseRepository{db: db}
}

func (r *pendingPurchaseRepository) GetBySessionID(sessionID string) (*models.PendingPurchase, error) {
	var pending models.PendingPurchase
	err := r.db.Where("session_id = ?", sessionID).First(&pending).Error
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *pendingPurchaseRepository) ListAwaitingCompletion(offset, limit int) ([]models.PendingPurchase, error) {
	var rows []models.PendingPurchase
	err := r.db.Where("status = ?", models.PendingStatusAwaitingCompletion).
		Order("created_at ASC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *pendingPurchaseRepository) CountAwaitingCompletion() (int64, error) {
	var count int64
	err := r.db.Model(&models.PendingPurchase{}).
		Where("status = ?", models.PendingStatusAwaitingCompletion).Count(&count).Error
	return count, err
}

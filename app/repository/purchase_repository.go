package repository

import (
	"github.com/bearbeat/bearbeat/app/models"
	"gorm.io/gorm"
)

// purchaseRepository implements the PurchaseRepository interface
type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository instance
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) GetByID(id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.First(&purchase, id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) GetByReference(reference string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.Where("reference = ?", reference).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) GetByUserID(userID uint) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.Where("user_id = ?", userID).Order("purchased_at DESC").Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepository) GetByUserAndPack(userID, packID uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.Where("user_id = ? AND pack_id = ?", userID, packID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) List(offset, limit int) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.Order("purchased_at DESC").Offset(offset).Limit(limit).Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Purchase{}).Count(&count).Error
	return count, err
}

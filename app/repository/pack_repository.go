package repository

import (
	"github.com/bearbeat/bearbeat/app/models"
	"gorm.io/gorm"
)

// packRepository implements the PackRepository interface
type packRepository struct {
	db *gorm.DB
}

// NewPackRepository creates a new pack repository instance
func NewPackRepository(db *gorm.DB) PackRepository {
	return &packRepository{db: db}
}

func (r *packRepository) Create(pack *models.VideoPack) error {
	return r.db.Create(pack).Error
}

func (r *packRepository) GetByID(id uint) (*models.VideoPack, error) {
	var pack models.VideoPack
	err := r.db.First(&pack, id).Error
	if err != nil {
		return nil, err
	}
	return &pack, nil
}

func (r *packRepository) GetBySlug(slug string) (*models.VideoPack, error) {
	var pack models.VideoPack
	err := r.db.Where("slug = ?", slug).First(&pack).Error
	if err != nil {
		return nil, err
	}
	return &pack, nil
}

func (r *packRepository) GetActive() ([]models.VideoPack, error) {
	var packs []models.VideoPack
	err := r.db.Where("is_active = ?", true).Order("created_at ASC").Find(&packs).Error
	return packs, err
}

func (r *packRepository) Update(pack *models.VideoPack) error {
	return r.db.Save(pack).Error
}

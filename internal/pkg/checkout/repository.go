package checkout

import (
	"errors"
	"time"

	"github.com/bearbeat/bearbeat/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the checkout service.
type Repository interface {
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error

	GetPackBySlug(slug string) (*models.VideoPack, error)
	CreatePendingPurchaseIfNotExists(pending *models.PendingPurchase) (bool, *models.PendingPurchase, error)
	GetPendingBySessionID(sessionID string) (*models.PendingPurchase, error)
	ListAwaitingPaid() ([]models.PendingPurchase, error)

	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(user *models.User) error

	GetPurchaseByProviderPayment(provider, paymentID string) (*models.Purchase, error)
	PromoteToPurchase(sessionID string, purchase *models.Purchase) (bool, error)

	ClaimFTPAccount(purchaseID uint) (*models.FtpPoolAccount, error)
	AttachFTPCredentials(purchaseID uint, username, password string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a checkout repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) GetPackBySlug(slug string) (*models.VideoPack, error) {
	var pack models.VideoPack
	if err := r.db.Where("slug = ?", slug).First(&pack).Error; err != nil {
		return nil, err
	}
	return &pack, nil
}

func (r *gormRepository) CreatePendingPurchaseIfNotExists(pending *models.PendingPurchase) (bool, *models.PendingPurchase, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoNothing: true,
	}).Create(pending)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PendingPurchase
	if err := r.db.Where("session_id = ?", pending.SessionID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) GetPendingBySessionID(sessionID string) (*models.PendingPurchase, error) {
	var pending models.PendingPurchase
	if err := r.db.Where("session_id = ?", sessionID).First(&pending).Error; err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *gormRepository) ListAwaitingPaid() ([]models.PendingPurchase, error) {
	var rows []models.PendingPurchase
	err := r.db.
		Where("status = ? AND payment_status = ?", models.PendingStatusAwaitingCompletion, models.PaymentStatusPaid).
		Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *gormRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *gormRepository) GetPurchaseByProviderPayment(provider, paymentID string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.Where("provider = ? AND payment_id = ?", provider, paymentID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// PromoteToPurchase flips the pending row to completed and inserts the
// purchase in one transaction. The conditional update doubles as the
// double-activation guard: a second caller for the same session affects zero
// rows and gets (false, nil) without writing anything.
func (r *gormRepository) PromoteToPurchase(sessionID string, purchase *models.Purchase) (bool, error) {
	won := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PendingPurchase{}).
			Where("session_id = ? AND status = ?", sessionID, models.PendingStatusAwaitingCompletion).
			Update("status", models.PendingStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Create(purchase).Error; err != nil {
			return err
		}
		won = true
		return nil
	})
	return won, err
}

// ClaimFTPAccount assigns one unused pool account to the purchase. The claim
// is a single conditional update with a rows-affected check; losing a race
// for a candidate row just moves on to the next one.
func (r *gormRepository) ClaimFTPAccount(purchaseID uint) (*models.FtpPoolAccount, error) {
	for {
		var acct models.FtpPoolAccount
		err := r.db.Where("in_use = ?", false).Order("id ASC").First(&acct).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoolExhausted
		}
		if err != nil {
			return nil, err
		}

		now := time.Now()
		tx := r.db.Model(&models.FtpPoolAccount{}).
			Where("id = ? AND in_use = ?", acct.ID, false).
			Updates(map[string]interface{}{
				"in_use":      true,
				"purchase_id": purchaseID,
				"assigned_at": &now,
			})
		if tx.Error != nil {
			return nil, tx.Error
		}
		if tx.RowsAffected == 1 {
			acct.InUse = true
			acct.PurchaseID = &purchaseID
			acct.AssignedAt = &now
			return &acct, nil
		}
	}
}

func (r *gormRepository) AttachFTPCredentials(purchaseID uint, username, password string) error {
	return r.db.Model(&models.Purchase{}).
		Where("id = ?", purchaseID).
		Updates(map[string]interface{}{
			"ftp_username": username,
			"ftp_password": password,
		}).Error
}

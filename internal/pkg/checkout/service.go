package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bearbeat/bearbeat/app/models"
	"github.com/bearbeat/bearbeat/internal/pkg/payment"
)

// maxRetryErrors caps the error list returned by RetryPending so an admin
// response stays readable when many rows fail at once.
const maxRetryErrors = 10

// Service implements the purchase lifecycle: webhook capture, activation and
// FTP pool assignment. All DB access goes through the Repository so tests can
// run against an in-memory fake.
type Service struct {
	repo   Repository
	events EventPublisher
}

func NewService(repo Repository, events EventPublisher) *Service {
	return &Service{repo: repo, events: events}
}

// RecordWebhookEvent persists a webhook delivery exactly once per provider
// event id. Returns created=false for redeliveries.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		return false, nil, errors.New("provider event id is required")
	}

	event := &models.PaymentWebhookEvent{
		Provider:        in.Provider,
		ProviderEventID: eventID,
		EventType:       in.EventType,
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed stamps the event row after handling. An empty
// processingError marks success.
func (s *Service) MarkWebhookProcessed(ctx context.Context, eventID uint, processingError string) error {
	return s.repo.MarkWebhookProcessed(eventID, processingError)
}

// RecordCheckoutSession stores a provider-confirmed session as a pending
// purchase. The session id is the idempotency key: a redelivered webhook for
// the same session returns the existing row with created=false.
func (s *Service) RecordCheckoutSession(ctx context.Context, session *payment.CheckoutSession) (bool, *models.PendingPurchase, error) {
	if session == nil || strings.TrimSpace(session.SessionID) == "" {
		return false, nil, errors.New("checkout session id is required")
	}

	pack, err := s.repo.GetPackBySlug(session.PackSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, fmt.Errorf("%w: %q", ErrUnknownPack, session.PackSlug)
		}
		return false, nil, err
	}

	pending := &models.PendingPurchase{
		Provider:        session.Provider,
		SessionID:       session.SessionID,
		PaymentIntentID: session.PaymentIntentID,
		PackID:          pack.ID,
		AmountCents:     session.AmountCents,
		Currency:        session.Currency,
		CustomerEmail:   strings.ToLower(strings.TrimSpace(session.CustomerEmail)),
		CustomerName:    strings.TrimSpace(session.CustomerName),
		CustomerPhone:   strings.TrimSpace(session.CustomerPhone),
		PaymentStatus:   session.PaymentStatus,
		Status:          models.PendingStatusAwaitingCompletion,
	}
	return s.repo.CreatePendingPurchaseIfNotExists(pending)
}

// ActivationResult carries the outcome of a completed activation.
type ActivationResult struct {
	Purchase            *models.Purchase
	User                *models.User
	UserCreated         bool
	AlreadyCompleted    bool
	CredentialsAssigned bool
}

// Activate promotes a pending purchase into a real purchase: resolve the
// buyer, flip the pending row exactly once, create the purchase and claim an
// FTP pool account. Re-activating a completed session returns the existing
// purchase instead of failing, so buyers can reload the completion page.
func (s *Service) Activate(ctx context.Context, in ActivationInput) (*ActivationResult, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	pending, err := s.repo.GetPendingBySessionID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if pending.IsCompleted() {
		return s.completedResult(pending)
	}
	if !pending.IsPaid() {
		return nil, ErrNotPaid
	}

	user, created, err := s.resolveUser(in, pending)
	if err != nil {
		return nil, err
	}

	purchase := &models.Purchase{
		Reference:   uuid.New().String(),
		UserID:      user.ID,
		PackID:      pending.PackID,
		AmountCents: pending.AmountCents,
		Currency:    pending.Currency,
		Provider:    pending.Provider,
		PaymentID:   pending.SessionID,
		PurchasedAt: time.Now(),
	}

	won, err := s.repo.PromoteToPurchase(sessionID, purchase)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost a concurrent activation for the same session. The winner's
		// purchase row is authoritative.
		stored, err := s.repo.GetPendingBySessionID(sessionID)
		if err != nil {
			return nil, err
		}
		return s.completedResult(stored)
	}

	result := &ActivationResult{
		Purchase:    purchase,
		User:        user,
		UserCreated: created,
	}

	if err := s.assignFTPAccount(purchase); err != nil {
		if !errors.Is(err, ErrPoolExhausted) {
			return nil, err
		}
		log.Warnf("ftp pool exhausted, purchase %s activated without credentials", purchase.Reference)
	} else {
		result.CredentialsAssigned = true
	}

	s.publishCompleted(result, pending)
	return result, nil
}

// completedResult builds the idempotent response for an already activated
// session.
func (s *Service) completedResult(pending *models.PendingPurchase) (*ActivationResult, error) {
	purchase, err := s.repo.GetPurchaseByProviderPayment(pending.Provider, pending.SessionID)
	if err != nil {
		return nil, fmt.Errorf("pending purchase %s is completed but no purchase exists: %w", pending.SessionID, err)
	}
	user, err := s.repo.GetUserByID(purchase.UserID)
	if err != nil {
		return nil, err
	}
	return &ActivationResult{
		Purchase:            purchase,
		User:                user,
		AlreadyCompleted:    true,
		CredentialsAssigned: purchase.HasFTPCredentials(),
	}, nil
}

// resolveUser finds or creates the account the purchase belongs to. A logged
// in user wins over any email in the request or webhook payload.
func (s *Service) resolveUser(in ActivationInput, pending *models.PendingPurchase) (*models.User, bool, error) {
	if in.UserID != 0 {
		user, err := s.repo.GetUserByID(in.UserID)
		if err != nil {
			return nil, false, err
		}
		return user, false, nil
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		email = pending.CustomerEmail
	}
	if email == "" {
		return nil, false, ErrNoEmail
	}

	user, err := s.repo.GetUserByEmail(email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = pending.CustomerName
	}
	if name == "" {
		name = email
	}

	password, err := randomPassword()
	if err != nil {
		return nil, false, err
	}
	user, err = models.CreateUser(name, email, password)
	if err != nil {
		return nil, false, err
	}
	user.Status = models.STATUS_ACTIVE
	user.Phone = strings.TrimSpace(in.Phone)
	if user.Phone == "" {
		user.Phone = pending.CustomerPhone
	}
	if err := s.repo.CreateUser(user); err != nil {
		// Another request created the account between lookup and insert.
		if existing, lookupErr := s.repo.GetUserByEmail(email); lookupErr == nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	return user, true, nil
}

func (s *Service) assignFTPAccount(purchase *models.Purchase) error {
	acct, err := s.repo.ClaimFTPAccount(purchase.ID)
	if err != nil {
		return err
	}
	if err := s.repo.AttachFTPCredentials(purchase.ID, acct.Username, acct.Password); err != nil {
		return err
	}
	purchase.FTPUsername = acct.Username
	purchase.FTPPassword = acct.Password
	return nil
}

func (s *Service) publishCompleted(result *ActivationResult, pending *models.PendingPurchase) {
	if s.events == nil {
		return
	}
	err := s.events.PublishPurchaseCompleted(PurchaseCompletedEvent{
		PurchaseID:          result.Purchase.ID,
		UserID:              result.User.ID,
		PackID:              result.Purchase.PackID,
		Email:               result.User.Email,
		Name:                result.User.Name,
		Phone:               pending.CustomerPhone,
		CredentialsAssigned: result.CredentialsAssigned,
	})
	if err != nil {
		// The purchase is already committed; delivery jobs can be replayed
		// via the admin retry endpoint.
		log.Errorf("failed to enqueue purchase completed event for %s: %v", result.Purchase.Reference, err)
	}
}

// RetryPending re-runs activation for every paid pending purchase that never
// completed, e.g. after an FTP pool exhaustion or a crash between webhook and
// completion page.
func (s *Service) RetryPending(ctx context.Context) (*RetryReport, error) {
	rows, err := s.repo.ListAwaitingPaid()
	if err != nil {
		return nil, err
	}

	report := &RetryReport{Scanned: len(rows), Errors: []string{}}
	for i := range rows {
		pending := &rows[i]
		result, err := s.Activate(ctx, ActivationInput{SessionID: pending.SessionID})
		if err != nil {
			report.Failed++
			report.appendError(fmt.Sprintf("session %s: %v", pending.SessionID, err))
			continue
		}
		if result.AlreadyCompleted {
			// Completed between the list query and this activation attempt.
			report.Failed++
			report.appendError(fmt.Sprintf("session %s: already completed", pending.SessionID))
			continue
		}
		report.Activated++
	}
	return report, nil
}

func (r *RetryReport) appendError(msg string) {
	if len(r.Errors) < maxRetryErrors {
		r.Errors = append(r.Errors, msg)
	}
}

func randomPassword() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bearbeat/bearbeat/app/models"
	"github.com/bearbeat/bearbeat/internal/pkg/checkout"
	"github.com/bearbeat/bearbeat/internal/pkg/config"
	"github.com/bearbeat/bearbeat/internal/pkg/constants"
	"github.com/bearbeat/bearbeat/internal/pkg/payment"
)

const testWebhookSecret = "whsec_test"

// stubRepository covers the webhook ingestion paths in memory. The methods
// the webhook handlers never reach return not-found.
type stubRepository struct {
	mu       sync.Mutex
	events   map[string]*models.PaymentWebhookEvent
	pendings map[string]*models.PendingPurchase
	packs    map[string]*models.VideoPack
	nextID   uint
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		events:   make(map[string]*models.PaymentWebhookEvent),
		pendings: make(map[string]*models.PendingPurchase),
		packs: map[string]*models.VideoPack{
			"bear-beat-pack": {ID: 1, Slug: "bear-beat-pack", Name: "Bear Beat Pack", PriceCents: 2999, Currency: "USD", IsActive: true},
		},
		nextID: 1,
	}
}

func (s *stubRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := event.Provider + "/" + event.ProviderEventID
	if stored, ok := s.events[key]; ok {
		return false, stored, nil
	}
	event.ID = s.nextID
	s.nextID++
	s.events[key] = event
	return true, event, nil
}

func (s *stubRepository) MarkWebhookProcessed(id uint, processingError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, event := range s.events {
		if event.ID == id {
			now := time.Now()
			event.ProcessedAt = &now
			event.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubRepository) GetPackBySlug(slug string) (*models.VideoPack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pack, ok := s.packs[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return pack, nil
}

func (s *stubRepository) CreatePendingPurchaseIfNotExists(pending *models.PendingPurchase) (bool, *models.PendingPurchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.pendings[pending.SessionID]; ok {
		return false, stored, nil
	}
	pending.ID = s.nextID
	s.nextID++
	s.pendings[pending.SessionID] = pending
	return true, pending, nil
}

func (s *stubRepository) GetPendingBySessionID(sessionID string) (*models.PendingPurchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, ok := s.pendings[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return pending, nil
}

func (s *stubRepository) ListAwaitingPaid() ([]models.PendingPurchase, error) { return nil, nil }
func (s *stubRepository) GetUserByID(uint) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubRepository) GetUserByEmail(string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubRepository) CreateUser(*models.User) error { return nil }
func (s *stubRepository) GetPurchaseByProviderPayment(string, string) (*models.Purchase, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubRepository) PromoteToPurchase(string, *models.Purchase) (bool, error) {
	return false, nil
}
func (s *stubRepository) ClaimFTPAccount(uint) (*models.FtpPoolAccount, error) {
	return nil, checkout.ErrPoolExhausted
}
func (s *stubRepository) AttachFTPCredentials(uint, string, string) error { return nil }

func newWebhookTestApp(t *testing.T) (*fiber.App, *stubRepository) {
	t.Helper()

	repo := newStubRepository()
	Initialize(Dependencies{
		Config:   &config.Config{},
		Checkout: checkout.NewService(repo, nil),
		Stripe: payment.NewStripeClient(config.Stripe{
			WebhookSecret:      testWebhookSecret,
			SignatureTolerance: 5 * time.Minute,
		}),
	})

	app := fiber.New()
	app.Post(constants.StripeWebhookRoute, HandleStripeWebhook)
	return app, repo
}

func signStripePayload(payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func stripeCheckoutEvent(eventID, sessionID, packSlug string) []byte {
	payload := fmt.Sprintf(`{
		"id": %q,
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": %q,
			"payment_intent": "pi_1",
			"amount_total": 2999,
			"currency": "usd",
			"payment_status": "paid",
			"metadata": {"pack_slug": %q},
			"customer_details": {"email": "buyer@example.com", "name": "Buyer"}
		}}
	}`, eventID, sessionID, packSlug)
	return []byte(payload)
}

func postStripeWebhook(t *testing.T, app *fiber.App, payload []byte, signature string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, constants.StripeWebhookRoute, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	return resp.StatusCode, decoded
}

func TestStripeWebhookCreatesPendingPurchase(t *testing.T) {
	app, repo := newWebhookTestApp(t)

	payload := stripeCheckoutEvent("evt_1", "cs_1", "bear-beat-pack")
	status, body := postStripeWebhook(t, app, payload, signStripePayload(payload))

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, true, body["created"])
	assert.Equal(t, "cs_1", body["session_id"])

	pending, err := repo.GetPendingBySessionID("cs_1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, pending.PaymentStatus)
	assert.Equal(t, uint(1), pending.PackID)
	assert.Equal(t, "buyer@example.com", pending.CustomerEmail)
}

func TestStripeWebhookRedeliveryIsDuplicate(t *testing.T) {
	app, repo := newWebhookTestApp(t)

	payload := stripeCheckoutEvent("evt_1", "cs_1", "bear-beat-pack")
	status, _ := postStripeWebhook(t, app, payload, signStripePayload(payload))
	require.Equal(t, fiber.StatusOK, status)

	status, body := postStripeWebhook(t, app, payload, signStripePayload(payload))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["duplicate"])

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Len(t, repo.events, 1)
	assert.Len(t, repo.pendings, 1)
}

func TestStripeWebhookInvalidSignatureIsPersisted(t *testing.T) {
	app, repo := newWebhookTestApp(t)

	payload := stripeCheckoutEvent("evt_bad", "cs_bad", "bear-beat-pack")
	status, body := postStripeWebhook(t, app, payload, "t=1,v1=deadbeef")

	require.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "invalid_signature", body["error"])

	// The event must be stored for audit even though it was rejected.
	repo.mu.Lock()
	event := repo.events[models.PaymentProviderStripe+"/evt_bad"]
	repo.mu.Unlock()
	require.NotNil(t, event)
	assert.False(t, event.SignatureValid)
	assert.NotNil(t, event.ProcessedAt)

	_, err := repo.GetPendingBySessionID("cs_bad")
	assert.Error(t, err)
}

func TestStripeWebhookUnknownPackIsIgnored(t *testing.T) {
	app, repo := newWebhookTestApp(t)

	payload := stripeCheckoutEvent("evt_2", "cs_2", "no-such-pack")
	status, body := postStripeWebhook(t, app, payload, signStripePayload(payload))

	// Permanent failure: respond 200 so the provider stops redelivering.
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["ignored"])

	repo.mu.Lock()
	event := repo.events[models.PaymentProviderStripe+"/evt_2"]
	repo.mu.Unlock()
	require.NotNil(t, event)
	assert.NotNil(t, event.ProcessedAt)
	assert.NotEmpty(t, event.ProcessingError)
}

func TestStripeWebhookNonCheckoutEventIsIgnored(t *testing.T) {
	app, _ := newWebhookTestApp(t)

	payload := []byte(`{"id": "evt_3", "type": "charge.refunded", "data": {"object": {}}}`)
	status, body := postStripeWebhook(t, app, payload, signStripePayload(payload))

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["ignored"])
}

package checkout

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bearbeat/bearbeat/app/models"
	"github.com/bearbeat/bearbeat/internal/pkg/payment"
)

// fakeRepository is an in-memory Repository with the same atomicity
// guarantees as the GORM implementation, guarded by a single mutex.
type fakeRepository struct {
	mu sync.Mutex

	webhookEvents map[string]*models.PaymentWebhookEvent
	pendings      map[string]*models.PendingPurchase
	packs         map[string]*models.VideoPack
	users         map[string]*models.User
	purchases     map[string]*models.Purchase
	pool          []*models.FtpPoolAccount

	// afterList runs after ListAwaitingPaid snapshots its rows, outside
	// the lock, so tests can mutate state between the list and the loop
	// that consumes it.
	afterList func()

	nextID uint
}

func newFakeRepository() *fakeRepository {
	r := &fakeRepository{
		webhookEvents: make(map[string]*models.PaymentWebhookEvent),
		pendings:      make(map[string]*models.PendingPurchase),
		packs:         make(map[string]*models.VideoPack),
		users:         make(map[string]*models.User),
		purchases:     make(map[string]*models.Purchase),
	}
	r.packs["bear-beat-pack"] = &models.VideoPack{ID: 1, Slug: "bear-beat-pack", PriceCents: 4999, Currency: "USD", IsActive: true}
	return r
}

func (r *fakeRepository) id() uint {
	r.nextID++
	return r.nextID
}

func (r *fakeRepository) addPoolAccounts(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < n; i++ {
		r.pool = append(r.pool, &models.FtpPoolAccount{
			ID:       r.id(),
			Username: fmt.Sprintf("ftp_user_%d", len(r.pool)+1),
			Password: fmt.Sprintf("ftp_pass_%d", len(r.pool)+1),
		})
	}
}

func (r *fakeRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := event.Provider + "/" + event.ProviderEventID
	if existing, ok := r.webhookEvents[key]; ok {
		return false, existing, nil
	}
	event.ID = r.id()
	r.webhookEvents[key] = event
	return true, event, nil
}

func (r *fakeRepository) MarkWebhookProcessed(id uint, processingError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.webhookEvents {
		if ev.ID == id {
			now := time.Now()
			ev.ProcessedAt = &now
			ev.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRepository) GetPackBySlug(slug string) (*models.VideoPack, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pack, ok := r.packs[slug]; ok {
		return pack, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) CreatePendingPurchaseIfNotExists(pending *models.PendingPurchase) (bool, *models.PendingPurchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.pendings[pending.SessionID]; ok {
		return false, existing, nil
	}
	pending.ID = r.id()
	r.pendings[pending.SessionID] = pending
	return true, pending, nil
}

func (r *fakeRepository) GetPendingBySessionID(sessionID string) (*models.PendingPurchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pending, ok := r.pendings[sessionID]; ok {
		copied := *pending
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) ListAwaitingPaid() ([]models.PendingPurchase, error) {
	r.mu.Lock()
	var rows []models.PendingPurchase
	for _, pending := range r.pendings {
		if pending.Status == models.PendingStatusAwaitingCompletion && pending.PaymentStatus == models.PaymentStatusPaid {
			rows = append(rows, *pending)
		}
	}
	hook := r.afterList
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return rows, nil
}

func (r *fakeRepository) GetUserByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) GetUserByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) CreateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return gorm.ErrDuplicatedKey
	}
	user.ID = r.id()
	r.users[user.Email] = user
	return nil
}

func (r *fakeRepository) GetPurchaseByProviderPayment(provider, paymentID string) (*models.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if purchase, ok := r.purchases[provider+"/"+paymentID]; ok {
		return purchase, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) PromoteToPurchase(sessionID string, purchase *models.Purchase) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pending, ok := r.pendings[sessionID]
	if !ok || pending.Status != models.PendingStatusAwaitingCompletion {
		return false, nil
	}
	pending.Status = models.PendingStatusCompleted
	purchase.ID = r.id()
	r.purchases[purchase.Provider+"/"+purchase.PaymentID] = purchase
	return true, nil
}

func (r *fakeRepository) ClaimFTPAccount(purchaseID uint) (*models.FtpPoolAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acct := range r.pool {
		if !acct.InUse {
			now := time.Now()
			acct.InUse = true
			acct.PurchaseID = &purchaseID
			acct.AssignedAt = &now
			return acct, nil
		}
	}
	return nil, ErrPoolExhausted
}

func (r *fakeRepository) AttachFTPCredentials(purchaseID uint, username, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, purchase := range r.purchases {
		if purchase.ID == purchaseID {
			purchase.FTPUsername = username
			purchase.FTPPassword = password
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakePublisher struct {
	mu     sync.Mutex
	events []PurchaseCompletedEvent
}

func (p *fakePublisher) PublishPurchaseCompleted(event PurchaseCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func paidSession(id string) *payment.CheckoutSession {
	return &payment.CheckoutSession{
		Provider:        models.PaymentProviderStripe,
		SessionID:       id,
		PaymentIntentID: "pi_" + id,
		PackSlug:        "bear-beat-pack",
		AmountCents:     4999,
		Currency:        "USD",
		CustomerEmail:   "buyer@example.com",
		CustomerName:    "Buyer Example",
		PaymentStatus:   models.PaymentStatusPaid,
	}
}

func TestRecordCheckoutSessionIdempotent(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, pending, err := svc.RecordCheckoutSession(ctx, paidSession("cs_1"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.PendingStatusAwaitingCompletion, pending.Status)
	assert.Equal(t, "buyer@example.com", pending.CustomerEmail)

	created, again, err := svc.RecordCheckoutSession(ctx, paidSession("cs_1"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, pending.ID, again.ID)
}

func TestRecordCheckoutSessionUnknownPack(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	session := paidSession("cs_2")
	session.PackSlug = "no-such-pack"
	_, _, err := svc.RecordCheckoutSession(context.Background(), session)
	assert.ErrorIs(t, err, ErrUnknownPack)
}

func TestActivateUnknownSession(t *testing.T) {
	svc := NewService(newFakeRepository(), nil)
	_, err := svc.Activate(context.Background(), ActivationInput{SessionID: "cs_missing"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestActivateUnpaidSession(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	session := paidSession("cs_3")
	session.PaymentStatus = models.PaymentStatusUnpaid
	_, _, err := svc.RecordCheckoutSession(ctx, session)
	require.NoError(t, err)

	_, err = svc.Activate(ctx, ActivationInput{SessionID: "cs_3"})
	assert.ErrorIs(t, err, ErrNotPaid)
}

func TestActivateWithoutEmail(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	session := paidSession("cs_4")
	session.CustomerEmail = ""
	_, _, err := svc.RecordCheckoutSession(ctx, session)
	require.NoError(t, err)

	_, err = svc.Activate(ctx, ActivationInput{SessionID: "cs_4"})
	assert.ErrorIs(t, err, ErrNoEmail)
}

func TestActivateGuestCreatesUserAndAssignsFTP(t *testing.T) {
	repo := newFakeRepository()
	repo.addPoolAccounts(2)
	publisher := &fakePublisher{}
	svc := NewService(repo, publisher)
	ctx := context.Background()

	_, _, err := svc.RecordCheckoutSession(ctx, paidSession("cs_5"))
	require.NoError(t, err)

	result, err := svc.Activate(ctx, ActivationInput{SessionID: "cs_5"})
	require.NoError(t, err)

	assert.True(t, result.UserCreated)
	assert.False(t, result.AlreadyCompleted)
	assert.True(t, result.CredentialsAssigned)
	assert.Equal(t, "buyer@example.com", result.User.Email)
	assert.Equal(t, models.STATUS_ACTIVE, result.User.Status)
	assert.NotEmpty(t, result.Purchase.Reference)
	assert.Equal(t, "ftp_user_1", result.Purchase.FTPUsername)
	assert.Equal(t, 1, publisher.count())
}

func TestActivateIsIdempotent(t *testing.T) {
	repo := newFakeRepository()
	repo.addPoolAccounts(1)
	publisher := &fakePublisher{}
	svc := NewService(repo, publisher)
	ctx := context.Background()

	_, _, err := svc.RecordCheckoutSession(ctx, paidSession("cs_6"))
	require.NoError(t, err)

	first, err := svc.Activate(ctx, ActivationInput{SessionID: "cs_6"})
	require.NoError(t, err)

	second, err := svc.Activate(ctx, ActivationInput{SessionID: "cs_6"})
	require.NoError(t, err)

	assert.True(t, second.AlreadyCompleted)
	assert.Equal(t, first.Purchase.Reference, second.Purchase.Reference)
	assert.Equal(t, first.Purchase.FTPUsername, second.Purchase.FTPUsername)
	// The completion event fires once, not per page reload.
	assert.Equal(t, 1, publisher.count())
}

func TestActivateExistingUserByEmail(t *testing.T) {
	repo := newFakeRepository()
	repo.addPoolAccounts(1)
	svc := NewService(repo, nil)
	ctx := context.Background()

	existing, err := models.CreateUser("Buyer Example", "buyer@example.com", "hunter22")
	require.NoError(t, err)
	require.NoError(t, repo.CreateUser(existing))

	_, _, err = svc.RecordCheckoutSession(ctx, paidSession("cs_7"))
	require.NoError(t, err)

	result, err := svc.Activate(ctx, ActivationInput{SessionID: "cs_7"})
	require.NoError(t, err)
	assert.False(t, result.UserCreated)
	assert.Equal(t, existing.ID, result.User.ID)
}

func TestActivateSurvivesPoolExhaustion(t *testing.T) {
	repo := newFakeRepository()
	publisher := &fakePublisher{}
	svc := NewService(repo, publisher)
	ctx := context.Background()

	_, _, err := svc.RecordCheckoutSession(ctx, paidSession("cs_8"))
	require.NoError(t, err)

	result, err := svc.Activate(ctx, ActivationInput{SessionID: "cs_8"})
	require.NoError(t, err)

	assert.False(t, result.CredentialsAssigned)
	assert.Empty(t, result.Purchase.FTPUsername)
	// The purchase still exists and can be retried once the pool is restocked.
	assert.Equal(t, 1, publisher.count())
}

func TestConcurrentActivationSingleWinner(t *testing.T) {
	repo := newFakeRepository()
	repo.addPoolAccounts(5)
	publisher := &fakePublisher{}
	svc := NewService(repo, publisher)
	ctx := context.Background()

	_, _, err := svc.RecordCheckoutSession(ctx, paidSession("cs_9"))
	require.NoError(t, err)

	const workers = 8
	results := make([]*ActivationResult, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Activate(ctx, ActivationInput{SessionID: "cs_9"})
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if !results[i].AlreadyCompleted {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, publisher.count())

	claimed := 0
	for _, acct := range repo.pool {
		if acct.InUse {
			claimed++
		}
	}
	assert.Equal(t, 1, claimed)
}

func TestConcurrentActivationsCompeteForLastAccount(t *testing.T) {
	repo := newFakeRepository()
	repo.addPoolAccounts(1)
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, _, err := svc.RecordCheckoutSession(ctx, paidSession("cs_20"))
	require.NoError(t, err)
	other := paidSession("cs_21")
	other.CustomerEmail = "other@example.com"
	_, _, err = svc.RecordCheckoutSession(ctx, other)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*ActivationResult, 2)
	errs := make([]error, 2)
	for i, sessionID := range []string{"cs_20", "cs_21"} {
		wg.Add(1)
		go func(i int, sessionID string) {
			defer wg.Done()
			results[i], errs[i] = svc.Activate(ctx, ActivationInput{SessionID: sessionID})
		}(i, sessionID)
	}
	wg.Wait()

	// Both purchases go through; exactly one gets the last credential and
	// the other is explicitly without credentials, never a shared account.
	withCredentials := 0
	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		assert.False(t, results[i].AlreadyCompleted)
		if results[i].CredentialsAssigned {
			withCredentials++
			assert.Equal(t, "ftp_user_1", results[i].Purchase.FTPUsername)
		} else {
			assert.Empty(t, results[i].Purchase.FTPUsername)
		}
	}
	assert.Equal(t, 1, withCredentials)

	claimed := 0
	for _, acct := range repo.pool {
		if acct.InUse {
			claimed++
		}
	}
	assert.Equal(t, 1, claimed)
}

func TestRetryPending(t *testing.T) {
	repo := newFakeRepository()
	repo.addPoolAccounts(5)
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, _, err := svc.RecordCheckoutSession(ctx, paidSession("cs_10"))
	require.NoError(t, err)
	_, _, err = svc.RecordCheckoutSession(ctx, paidSession("cs_11"))
	require.NoError(t, err)

	// cs_11 was already activated elsewhere and must not be scanned again.
	repo.mu.Lock()
	repo.pendings["cs_11"].Status = models.PendingStatusCompleted
	repo.mu.Unlock()

	report, err := svc.RetryPending(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Activated)
	assert.Equal(t, 0, report.Failed)
}

func TestRetryPendingReportsCompletionAfterListing(t *testing.T) {
	repo := newFakeRepository()
	repo.addPoolAccounts(5)
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, _, err := svc.RecordCheckoutSession(ctx, paidSession("cs_22"))
	require.NoError(t, err)
	other := paidSession("cs_23")
	other.CustomerEmail = "other@example.com"
	_, _, err = svc.RecordCheckoutSession(ctx, other)
	require.NoError(t, err)

	// The buyer finishes cs_23 on the completion page right after the
	// retry run has listed both rows.
	repo.afterList = func() {
		_, err := svc.Activate(ctx, ActivationInput{SessionID: "cs_23"})
		require.NoError(t, err)
	}

	report, err := svc.RetryPending(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Activated)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "cs_23")
	assert.Contains(t, report.Errors[0], "already completed")
}

func TestRetryPendingCapsErrorList(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	// No customer email anywhere, every activation fails.
	for i := 0; i < 15; i++ {
		session := paidSession(fmt.Sprintf("cs_fail_%d", i))
		session.CustomerEmail = ""
		_, _, err := svc.RecordCheckoutSession(ctx, session)
		require.NoError(t, err)
	}

	report, err := svc.RetryPending(ctx)
	require.NoError(t, err)

	assert.Equal(t, 15, report.Scanned)
	assert.Equal(t, 15, report.Failed)
	assert.Len(t, report.Errors, maxRetryErrors)
}

package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bearbeat/bearbeat/internal/pkg/config"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com/v1"

const StripeEventCheckoutCompleted = "checkout.session.completed"

type StripeClient struct {
	SecretKey     string
	WebhookSecret string
	Tolerance     time.Duration

	APIBaseURL string
	HTTPClient *http.Client

	// now is swappable for signature tolerance tests.
	now func() time.Time
}

func NewStripeClient(cfg config.Stripe) *StripeClient {
	tolerance := cfg.SignatureTolerance
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}
	return &StripeClient{
		SecretKey:     strings.TrimSpace(cfg.SecretKey),
		WebhookSecret: strings.TrimSpace(cfg.WebhookSecret),
		Tolerance:     tolerance,
		APIBaseURL:    defaultStripeAPIBaseURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

// VerifyWebhookSignature checks a Stripe-Signature header (t=...,v1=...)
// against the endpoint secret: HMAC-SHA256 over "<t>.<payload>", with a
// timestamp tolerance window against replayed deliveries.
func (c *StripeClient) VerifyWebhookSignature(payload []byte, signatureHeader string) bool {
	header := strings.TrimSpace(signatureHeader)
	secret := c.WebhookSecret
	if header == "" || secret == "" {
		return false
	}

	var timestamp int64
	var candidates [][]byte
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return false
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(kv[1])
			if err != nil {
				continue
			}
			candidates = append(candidates, sig)
		}
	}
	if timestamp == 0 || len(candidates) == 0 {
		return false
	}

	age := c.now().Sub(time.Unix(timestamp, 0))
	if age > c.Tolerance || age < -c.Tolerance {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, candidate := range candidates {
		if hmac.Equal(expected, candidate) {
			return true
		}
	}
	return false
}

type stripeSessionObject struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
	PaymentStatus string `json:"payment_status"`
	CustomerEmail string `json:"customer_email"`
	Metadata      struct {
		PackSlug string `json:"pack_slug"`
	} `json:"metadata"`
	CustomerDetails struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"customer_details"`
}

// ParseWebhookEvent decodes a Stripe webhook envelope. For
// checkout.session.completed events the normalized session is attached.
func (c *StripeClient) ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var raw struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid stripe event payload: %w", err)
	}

	event := &WebhookEvent{ID: raw.ID, Type: raw.Type}
	if raw.Type != StripeEventCheckoutCompleted {
		return event, nil
	}

	var obj stripeSessionObject
	if err := json.Unmarshal(raw.Data.Object, &obj); err != nil {
		return nil, fmt.Errorf("invalid checkout session object: %w", err)
	}
	event.Session = normalizeStripeSession(&obj)
	return event, nil
}

// GetCheckoutSession retrieves a checkout session from the Stripe API, used
// to confirm payment status outside the webhook path.
func (c *StripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, errors.New("session id is required")
	}
	if c.SecretKey == "" {
		return nil, errors.New("stripe secret key is not configured")
	}

	url := strings.TrimRight(c.APIBaseURL, "/") + "/checkout/sessions/" + id
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe session request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var obj stripeSessionObject
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	return normalizeStripeSession(&obj), nil
}

func normalizeStripeSession(obj *stripeSessionObject) *CheckoutSession {
	email := strings.TrimSpace(obj.CustomerDetails.Email)
	if email == "" {
		email = strings.TrimSpace(obj.CustomerEmail)
	}

	status := "unpaid"
	if strings.EqualFold(obj.PaymentStatus, "paid") {
		status = "paid"
	}

	return &CheckoutSession{
		Provider:        "stripe",
		SessionID:       obj.ID,
		PaymentIntentID: obj.PaymentIntent,
		PackSlug:        strings.TrimSpace(obj.Metadata.PackSlug),
		AmountCents:     obj.AmountTotal,
		Currency:        strings.ToUpper(obj.Currency),
		CustomerEmail:   email,
		CustomerName:    strings.TrimSpace(obj.CustomerDetails.Name),
		CustomerPhone:   strings.TrimSpace(obj.CustomerDetails.Phone),
		PaymentStatus:   status,
	}
}

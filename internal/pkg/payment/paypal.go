package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bearbeat/bearbeat/internal/pkg/config"
)

const PayPalEventCheckoutApproved = "CHECKOUT.ORDER.APPROVED"

type PayPalClient struct {
	ClientID  string
	Secret    string
	WebhookID string
	BaseURL   string

	HTTPClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalClient(cfg config.PayPal) *PayPalClient {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = "https://api-m.paypal.com"
	}
	return &PayPalClient{
		ClientID:  strings.TrimSpace(cfg.ClientID),
		Secret:    strings.TrimSpace(cfg.Secret),
		WebhookID: strings.TrimSpace(cfg.WebhookID),
		BaseURL:   base,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// token returns a cached OAuth access token, refreshing it via the
// client-credentials grant when expired.
func (c *PayPalClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}
	if c.ClientID == "" || c.Secret == "" {
		return "", errors.New("paypal client credentials are not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/v1/oauth2/token", strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.ClientID, c.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("paypal token request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("paypal token response contained no access_token")
	}

	c.accessToken = out.AccessToken
	// Refresh one minute early to avoid using a token at the expiry edge.
	c.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

type paypalOrderObject struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		ReferenceID string `json:"reference_id"`
		CustomID    string `json:"custom_id"`
		Amount      struct {
			CurrencyCode string `json:"currency_code"`
			Value        string `json:"value"`
		} `json:"amount"`
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
	Payer struct {
		EmailAddress string `json:"email_address"`
		Name         struct {
			GivenName string `json:"given_name"`
			Surname   string `json:"surname"`
		} `json:"name"`
		Phone struct {
			PhoneNumber struct {
				NationalNumber string `json:"national_number"`
			} `json:"phone_number"`
		} `json:"phone"`
	} `json:"payer"`
}

// GetOrder retrieves an order from the PayPal API and normalizes it.
func (c *PayPalClient) GetOrder(ctx context.Context, orderID string) (*CheckoutSession, error) {
	id := strings.TrimSpace(orderID)
	if id == "" {
		return nil, errors.New("order id is required")
	}

	accessToken, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v2/checkout/orders/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paypal order request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var obj paypalOrderObject
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	return normalizePayPalOrder(&obj), nil
}

// CaptureOrder captures an approved order. Capturing an already captured
// order returns the existing capture, so the call is safe to retry.
func (c *PayPalClient) CaptureOrder(ctx context.Context, orderID string) (*CheckoutSession, error) {
	id := strings.TrimSpace(orderID)
	if id == "" {
		return nil, errors.New("order id is required")
	}

	accessToken, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/v2/checkout/orders/"+id+"/capture", bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paypal capture failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var obj paypalOrderObject
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	return normalizePayPalOrder(&obj), nil
}

// VerifyWebhookSignature calls PayPal's verify-webhook-signature API with the
// delivery headers and raw body. PayPal has no shared-secret HMAC scheme; the
// verification round trip is the documented mechanism.
func (c *PayPalClient) VerifyWebhookSignature(ctx context.Context, headers map[string]string, body []byte) (bool, error) {
	if c.WebhookID == "" {
		return false, errors.New("paypal webhook id is not configured")
	}

	accessToken, err := c.token(ctx)
	if err != nil {
		return false, err
	}

	payload := map[string]interface{}{
		"auth_algo":         headers["Paypal-Auth-Algo"],
		"cert_url":          headers["Paypal-Cert-Url"],
		"transmission_id":   headers["Paypal-Transmission-Id"],
		"transmission_sig":  headers["Paypal-Transmission-Sig"],
		"transmission_time": headers["Paypal-Transmission-Time"],
		"webhook_id":        c.WebhookID,
		"webhook_event":     json.RawMessage(body),
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/v1/notifications/verify-webhook-signature", bytes.NewReader(buf))
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("paypal signature verification failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var out struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return false, err
	}
	return out.VerificationStatus == "SUCCESS", nil
}

// ParseWebhookEvent decodes a PayPal webhook envelope. For order-approved
// events the normalized order is attached.
func (c *PayPalClient) ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var raw struct {
		ID        string          `json:"id"`
		EventType string          `json:"event_type"`
		Resource  json.RawMessage `json:"resource"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid paypal event payload: %w", err)
	}

	event := &WebhookEvent{ID: raw.ID, Type: raw.EventType}
	if raw.EventType != PayPalEventCheckoutApproved {
		return event, nil
	}

	var obj paypalOrderObject
	if err := json.Unmarshal(raw.Resource, &obj); err != nil {
		return nil, fmt.Errorf("invalid order resource: %w", err)
	}
	event.Session = normalizePayPalOrder(&obj)
	return event, nil
}

func normalizePayPalOrder(obj *paypalOrderObject) *CheckoutSession {
	session := &CheckoutSession{
		Provider:      "paypal",
		SessionID:     obj.ID,
		CustomerEmail: strings.TrimSpace(obj.Payer.EmailAddress),
		CustomerPhone: strings.TrimSpace(obj.Payer.Phone.PhoneNumber.NationalNumber),
		PaymentStatus: "unpaid",
	}

	name := strings.TrimSpace(obj.Payer.Name.GivenName + " " + obj.Payer.Name.Surname)
	session.CustomerName = name

	if len(obj.PurchaseUnits) > 0 {
		unit := obj.PurchaseUnits[0]
		session.PackSlug = strings.TrimSpace(unit.CustomID)
		session.Currency = strings.ToUpper(unit.Amount.CurrencyCode)
		if cents, err := parseAmountToCents(unit.Amount.Value); err == nil {
			session.AmountCents = cents
		}
		if len(unit.Payments.Captures) > 0 {
			capture := unit.Payments.Captures[0]
			session.PaymentIntentID = capture.ID
			if capture.Status == "COMPLETED" {
				session.PaymentStatus = "paid"
			}
		}
	}
	if obj.Status == "COMPLETED" {
		session.PaymentStatus = "paid"
	}
	return session
}

// parseAmountToCents converts a decimal amount string ("49.99") to cents
// without floating point rounding.
func parseAmountToCents(value string) (int64, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, errors.New("empty amount")
	}
	whole, frac, _ := strings.Cut(v, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	cents := units * 100
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, err
		}
		cents += f
	}
	return cents, nil
}

package marketing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bearbeat/bearbeat/internal/pkg/config"
)

// BrevoClient upserts contacts and triggers transactional emails via the
// Brevo REST API.
type BrevoClient struct {
	apiKey     string
	listID     int64
	templateID int64
	sender     string
	baseURL    string
	httpClient *http.Client
}

func NewBrevoClient(cfg config.Brevo) *BrevoClient {
	return &BrevoClient{
		apiKey:     cfg.APIKey,
		listID:     cfg.ListID,
		templateID: cfg.TemplateID,
		sender:     cfg.Sender,
		baseURL:    "https://api.brevo.com/v3",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *BrevoClient) Enabled() bool {
	return c.apiKey != ""
}

// UpsertContact creates or updates the buyer as a Brevo contact and adds it
// to the customers list.
func (c *BrevoClient) UpsertContact(ctx context.Context, email, name, phone string) error {
	if !c.Enabled() {
		return errors.New("brevo is not configured")
	}

	payload := map[string]interface{}{
		"email":         email,
		"updateEnabled": true,
		"attributes": map[string]interface{}{
			"FIRSTNAME": name,
			"SMS":       phone,
		},
	}
	if c.listID > 0 {
		payload["listIds"] = []int64{c.listID}
	}

	return c.post(ctx, "/contacts", payload)
}

// SendPurchaseTemplate triggers the transactional purchase email template.
func (c *BrevoClient) SendPurchaseTemplate(ctx context.Context, email, name string, params map[string]interface{}) error {
	if !c.Enabled() {
		return errors.New("brevo is not configured")
	}
	if c.templateID <= 0 {
		return errors.New("brevo purchase template is not configured")
	}

	payload := map[string]interface{}{
		"templateId": c.templateID,
		"to": []map[string]string{
			{"email": email, "name": name},
		},
		"params": params,
	}
	return c.post(ctx, "/smtp/email", payload)
}

func (c *BrevoClient) post(ctx context.Context, path string, payload interface{}) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return fmt.Errorf("brevo request %s failed: status=%d body=%s", path, resp.StatusCode, string(body))
	}
	return nil
}

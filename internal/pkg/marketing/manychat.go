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

// ManyChatClient registers buyers as subscribers and fires the post-purchase
// flow.
type ManyChatClient struct {
	apiKey     string
	flowNS     string
	baseURL    string
	httpClient *http.Client
}

func NewManyChatClient(cfg config.ManyChat) *ManyChatClient {
	return &ManyChatClient{
		apiKey:     cfg.APIKey,
		flowNS:     cfg.FlowNS,
		baseURL:    "https://api.manychat.com",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *ManyChatClient) Enabled() bool {
	return c.apiKey != ""
}

// CreateSubscriber registers the buyer. ManyChat requires a phone number or
// a messenger id; buyers without a phone are skipped by the caller.
func (c *ManyChatClient) CreateSubscriber(ctx context.Context, name, phone, email string) (int64, error) {
	if !c.Enabled() {
		return 0, errors.New("manychat is not configured")
	}

	payload := map[string]interface{}{
		"first_name":     name,
		"phone":          phone,
		"email":          email,
		"has_opt_in_sms": true,
	}
	var out struct {
		Status string `json:"status"`
		Data   struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/fb/subscriber/createSubscriber", payload, &out); err != nil {
		return 0, err
	}
	if out.Status != "success" {
		return 0, fmt.Errorf("manychat createSubscriber returned status %q", out.Status)
	}
	return out.Data.ID, nil
}

// SendFlow triggers the configured post-purchase flow for a subscriber.
func (c *ManyChatClient) SendFlow(ctx context.Context, subscriberID int64) error {
	if !c.Enabled() {
		return errors.New("manychat is not configured")
	}
	if c.flowNS == "" {
		return errors.New("manychat purchase flow is not configured")
	}

	payload := map[string]interface{}{
		"subscriber_id": subscriberID,
		"flow_ns":       c.flowNS,
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := c.post(ctx, "/fb/sending/sendFlow", payload, &out); err != nil {
		return err
	}
	if out.Status != "success" {
		return fmt.Errorf("manychat sendFlow returned status %q", out.Status)
	}
	return nil
}

func (c *ManyChatClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("manychat request %s failed: status=%d body=%s", path, resp.StatusCode, string(body))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("invalid manychat response: %w", err)
		}
	}
	return nil
}

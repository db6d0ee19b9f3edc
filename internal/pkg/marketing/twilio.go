package marketing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bearbeat/bearbeat/internal/pkg/config"
)

// TwilioClient sends the purchase confirmation over SMS or WhatsApp.
type TwilioClient struct {
	accountSID   string
	authToken    string
	fromSMS      string
	fromWhatsApp string
	baseURL      string
	httpClient   *http.Client
}

func NewTwilioClient(cfg config.Twilio) *TwilioClient {
	return &TwilioClient{
		accountSID:   cfg.AccountSID,
		authToken:    cfg.AuthToken,
		fromSMS:      cfg.FromSMS,
		fromWhatsApp: cfg.FromWhatsApp,
		baseURL:      "https://api.twilio.com",
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *TwilioClient) Enabled() bool {
	return c.accountSID != "" && c.authToken != ""
}

// SendSMS sends a plain SMS to the given E.164 number.
func (c *TwilioClient) SendSMS(ctx context.Context, to, body string) error {
	return c.send(ctx, c.fromSMS, to, body)
}

// SendWhatsApp sends a WhatsApp message. Twilio expects the whatsapp: prefix
// on both numbers.
func (c *TwilioClient) SendWhatsApp(ctx context.Context, to, body string) error {
	from := c.fromWhatsApp
	if !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + from
	}
	if !strings.HasPrefix(to, "whatsapp:") {
		to = "whatsapp:" + to
	}
	return c.send(ctx, from, to, body)
}

func (c *TwilioClient) send(ctx context.Context, from, to, body string) error {
	if !c.Enabled() {
		return errors.New("twilio is not configured")
	}
	if from == "" {
		return errors.New("twilio sender number is not configured")
	}
	if to == "" {
		return errors.New("recipient number is required")
	}

	form := url.Values{
		"From": {from},
		"To":   {to},
		"Body": {body},
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return fmt.Errorf("twilio message failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}

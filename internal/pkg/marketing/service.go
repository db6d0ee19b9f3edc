package marketing

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
)

// Contact is the buyer identity pushed to the marketing channels.
type Contact struct {
	Email string
	Name  string
	Phone string
}

// Service fans one purchase out to every configured marketing channel. Each
// channel failure is collected instead of aborting the rest; the job queue
// retries the whole sync on error.
type Service struct {
	brevo    *BrevoClient
	manychat *ManyChatClient
	twilio   *TwilioClient
}

func NewService(brevo *BrevoClient, manychat *ManyChatClient, twilio *TwilioClient) *Service {
	return &Service{brevo: brevo, manychat: manychat, twilio: twilio}
}

// SyncPurchase registers the buyer on all channels after a completed
// purchase. Channels without configuration are skipped silently, so a
// minimal deployment only needs the ones it uses.
func (s *Service) SyncPurchase(ctx context.Context, contact Contact, confirmationSMS string) error {
	var failures []string

	if s.brevo != nil && s.brevo.Enabled() {
		if err := s.brevo.UpsertContact(ctx, contact.Email, contact.Name, contact.Phone); err != nil {
			failures = append(failures, fmt.Sprintf("brevo: %v", err))
		}
	}

	if s.manychat != nil && s.manychat.Enabled() && contact.Phone != "" {
		subscriberID, err := s.manychat.CreateSubscriber(ctx, contact.Name, contact.Phone, contact.Email)
		if err != nil {
			failures = append(failures, fmt.Sprintf("manychat: %v", err))
		} else if err := s.manychat.SendFlow(ctx, subscriberID); err != nil {
			failures = append(failures, fmt.Sprintf("manychat flow: %v", err))
		}
	}

	if s.twilio != nil && s.twilio.Enabled() && contact.Phone != "" && confirmationSMS != "" {
		if err := s.twilio.SendSMS(ctx, contact.Phone, confirmationSMS); err != nil {
			failures = append(failures, fmt.Sprintf("twilio: %v", err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("marketing sync incomplete: %s", strings.Join(failures, "; "))
	}

	log.Infof("[Marketing] Synced purchase contact %s", contact.Email)
	return nil
}

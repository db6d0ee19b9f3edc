package jobqueue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bearbeat/bearbeat/app/repository"
	"github.com/bearbeat/bearbeat/internal/pkg/mail"
	"github.com/bearbeat/bearbeat/internal/pkg/security"
)

// processDeliveryEmailJob sends the purchase delivery email with the download
// link and the assigned FTP credentials. The purchase row is reloaded so a
// retried job picks up credentials attached after the first attempt.
func (q *Queue) processDeliveryEmailJob(ctx context.Context, job *Job) error {
	payload, err := DeliveryEmailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid delivery email payload: %w", err)
	}

	d := getDependencies()
	if d.Mailer == nil {
		return fmt.Errorf("mailer is not configured")
	}

	repos := repository.GetGlobalRepositories()
	purchase, err := repos.Purchase.GetByID(payload.PurchaseID)
	if err != nil {
		return fmt.Errorf("failed to load purchase %d: %w", payload.PurchaseID, err)
	}
	user, err := repos.User.GetByID(payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user %d: %w", payload.UserID, err)
	}
	pack, err := repos.Pack.GetByID(payload.PackID)
	if err != nil {
		return fmt.Errorf("failed to load pack %d: %w", payload.PackID, err)
	}

	// The email link carries its own token so it works without a login for
	// three days, long enough for buyers checking mail on another device.
	downloadURL := ""
	if d.App.DownloadSecret != "" && d.App.PublicDomain != "" {
		token, err := security.GenerateDownloadToken(user.ID, purchase.ID, pack.ID, 72*time.Hour, d.App.DownloadSecret)
		if err != nil {
			return fmt.Errorf("failed to sign download token for purchase %d: %w", purchase.ID, err)
		}
		downloadURL = fmt.Sprintf("%s/download/%s?token=%s",
			strings.TrimRight(d.App.PublicDomain, "/"), purchase.Reference, token)
	}

	subject, body := mail.BuildDeliveryEmail(mail.DeliveryEmailInput{
		Name:         user.Name,
		PackTitle:    pack.Name,
		Reference:    purchase.Reference,
		DownloadURL:  downloadURL,
		FTPHost:      d.App.FTPHost,
		FTPUsername:  purchase.FTPUsername,
		FTPPassword:  purchase.FTPPassword,
		SupportEmail: d.App.SupportEmail,
	})
	return d.Mailer.Send(user.Email, subject, body)
}

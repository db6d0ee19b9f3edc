package jobqueue

import (
	"context"
	"fmt"

	"github.com/bearbeat/bearbeat/internal/pkg/marketing"
)

// processMarketingSyncJob pushes the buyer to the configured marketing
// channels after a completed purchase.
func (q *Queue) processMarketingSyncJob(ctx context.Context, job *Job) error {
	payload, err := MarketingSyncJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid marketing sync payload: %w", err)
	}

	d := getDependencies()
	if d.Marketing == nil {
		// Nothing configured; treat as done rather than retrying forever.
		return nil
	}

	sms := ""
	if payload.Phone != "" {
		sms = fmt.Sprintf("Thanks for your purchase! Your download and FTP access were sent to %s.", payload.Email)
	}

	return d.Marketing.SyncPurchase(ctx, marketing.Contact{
		Email: payload.Email,
		Name:  payload.Name,
		Phone: payload.Phone,
	}, sms)
}

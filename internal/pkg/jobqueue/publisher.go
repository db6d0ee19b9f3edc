package jobqueue

import (
	"github.com/bearbeat/bearbeat/internal/pkg/checkout"
)

// Publisher bridges activated purchases into background jobs. It implements
// the checkout event interface so the checkout service never touches Redis.
type Publisher struct {
	queue *Queue
}

func NewPublisher(queue *Queue) *Publisher {
	return &Publisher{queue: queue}
}

// PublishPurchaseCompleted enqueues the delivery email and the marketing
// sync for a freshly activated purchase.
func (p *Publisher) PublishPurchaseCompleted(event checkout.PurchaseCompletedEvent) error {
	emailPayload := DeliveryEmailJobPayload{
		PurchaseID:          event.PurchaseID,
		UserID:              event.UserID,
		PackID:              event.PackID,
		CredentialsAssigned: event.CredentialsAssigned,
	}
	if _, err := p.queue.EnqueueJob(JobTypeDeliveryEmail, emailPayload.ToMap()); err != nil {
		return err
	}

	marketingPayload := MarketingSyncJobPayload{
		PurchaseID: event.PurchaseID,
		UserID:     event.UserID,
		PackID:     event.PackID,
		Email:      event.Email,
		Name:       event.Name,
		Phone:      event.Phone,
	}
	if _, err := p.queue.EnqueueJob(JobTypeMarketingSync, marketingPayload.ToMap()); err != nil {
		return err
	}
	return nil
}

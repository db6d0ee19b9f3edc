package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketingSyncPayloadRoundTrip(t *testing.T) {
	payload := MarketingSyncJobPayload{
		PurchaseID: 10,
		UserID:     20,
		PackID:     1,
		Email:      "buyer@example.com",
		Name:       "Buyer",
		Phone:      "+5215512345678",
	}

	restored, err := MarketingSyncJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *restored)
}

func TestDeliveryEmailPayloadRoundTrip(t *testing.T) {
	payload := DeliveryEmailJobPayload{
		PurchaseID:          10,
		UserID:              20,
		PackID:              1,
		CredentialsAssigned: true,
	}

	restored, err := DeliveryEmailJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *restored)
}

func TestJobLifecycleTransitions(t *testing.T) {
	job := &Job{
		ID:         "test-job",
		Type:       JobTypeMarketingSync,
		Status:     JobStatusPending,
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  time.Now(),
	}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
	require.NotNil(t, job.CompletedAt)
}

func TestJobIsNotRetryableAfterMaxRetries(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: 2}
	job.MarkAsFailed("first")
	job.MarkAsFailed("second")
	assert.False(t, job.IsRetryable())
}

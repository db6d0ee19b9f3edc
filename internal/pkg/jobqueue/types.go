package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeMarketingSync JobType = "marketing_sync"
	JobTypeDeliveryEmail JobType = "delivery_email"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// MarketingSyncJobPayload contains the payload for marketing sync jobs
type MarketingSyncJobPayload struct {
	PurchaseID uint   `json:"purchase_id"`
	UserID     uint   `json:"user_id"`
	PackID     uint   `json:"pack_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
}

// ToMap converts the payload to a map for storage
func (p MarketingSyncJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"purchase_id": p.PurchaseID,
		"user_id":     p.UserID,
		"pack_id":     p.PackID,
		"email":       p.Email,
		"name":        p.Name,
		"phone":       p.Phone,
	}
}

// MarketingSyncJobPayloadFromMap creates a payload from a map
func MarketingSyncJobPayloadFromMap(data map[string]interface{}) (*MarketingSyncJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload MarketingSyncJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// DeliveryEmailJobPayload contains the payload for delivery email jobs
type DeliveryEmailJobPayload struct {
	PurchaseID          uint `json:"purchase_id"`
	UserID              uint `json:"user_id"`
	PackID              uint `json:"pack_id"`
	CredentialsAssigned bool `json:"credentials_assigned"`
}

// ToMap converts the payload to a map for storage
func (p DeliveryEmailJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"purchase_id":          p.PurchaseID,
		"user_id":              p.UserID,
		"pack_id":              p.PackID,
		"credentials_assigned": p.CredentialsAssigned,
	}
}

// DeliveryEmailJobPayloadFromMap creates a payload from a map
func DeliveryEmailJobPayloadFromMap(data map[string]interface{}) (*DeliveryEmailJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload DeliveryEmailJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}

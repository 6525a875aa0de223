// Package jobs defines the background job contracts. The one job type today
// is the receipt scan: fetch an uploaded receipt image from object storage,
// run it through the extraction model and store the result for pickup.
package jobs

import (
	"context"
	"time"

	"github.com/financepro/financepro/internal/domain"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeReceiptScan extracts transaction fields from a receipt image.
	JobTypeReceiptScan JobType = "receipt_scan"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ReceiptScanJob asks the worker to analyze one uploaded receipt image.
type ReceiptScanJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// UserID is the owner of the uploaded receipt.
	UserID string `json:"user_id"`

	// GCSURI points at the uploaded image in object storage.
	GCSURI string `json:"gcs_uri"`

	// MIMEType is the image content type, e.g. image/jpeg.
	MIMEType string `json:"mime_type"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// Extraction holds the model output once the job completes.
	Extraction *domain.ReceiptExtraction `json:"extraction,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ReceiptScanJob) GetID() string        { return j.JobID }
func (j *ReceiptScanJob) GetType() JobType     { return JobTypeReceiptScan }
func (j *ReceiptScanJob) GetStatus() JobStatus { return j.Status }

// Publisher defines the interface for publishing jobs to a queue.
// The abstraction leaves room for queue implementations beyond in-memory
// (Cloud Tasks, Pub/Sub) without touching the handlers.
type Publisher interface {
	// PublishReceiptScan enqueues a receipt scan job.
	PublishReceiptScan(ctx context.Context, job *ReceiptScanJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs. The handler is called for each job.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A returned error marks the job for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state so handlers can answer status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *ReceiptScanJob) error
	GetJob(ctx context.Context, jobID string) (*ReceiptScanJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ReceiptScanJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// UserID filters jobs by owner.
	UserID string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}

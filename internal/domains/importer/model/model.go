package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImportKind selects which row processor a job runs.
type ImportKind string

const (
	KindProducts ImportKind = "products"
	KindStock    ImportKind = "stock"
	KindUsers    ImportKind = "users"
)

// ParseKind validates a client-supplied import kind.
func ParseKind(s string) (ImportKind, error) {
	switch ImportKind(s) {
	case KindProducts, KindStock, KindUsers:
		return ImportKind(s), nil
	}
	return "", fmt.Errorf("unsupported import kind %q", s)
}

// JobStatus is the import job lifecycle state.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusCancelled  JobStatus = "cancelled"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// ImportJob is the ledger header for one uploaded file. Counters satisfy
// processed = successful + failed and processed <= total until terminal.
type ImportJob struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ImportKind    ImportKind `json:"import_kind" db:"import_kind"`
	SourceFileRef string     `json:"source_file_ref" db:"source_file_ref"`
	Status        JobStatus  `json:"status" db:"status"`

	TotalRecords      int `json:"total_records" db:"total_records"`
	ProcessedRecords  int `json:"processed_records" db:"processed_records"`
	SuccessfulRecords int `json:"successful_records" db:"successful_records"`
	FailedRecords     int `json:"failed_records" db:"failed_records"`

	ErrorSummary json.RawMessage `json:"error_summary,omitempty" db:"error_summary"`
	OwnerID      uuid.UUID       `json:"owner_id" db:"owner_id"`

	HeartbeatAt *time.Time `json:"heartbeat_at,omitempty" db:"heartbeat_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// CanCancel reports whether a cancel request is allowed in the current state.
func (j *ImportJob) CanCancel() bool {
	return j.Status == StatusPending || j.Status == StatusProcessing
}

// CanRetry reports whether a retry request is allowed in the current state.
func (j *ImportJob) CanRetry() bool {
	return j.Status == StatusFailed || j.Status == StatusCancelled
}

// Record statuses.
const (
	RecordSuccess = "success"
	RecordError   = "error"
)

// ImportRecord is the per-row outcome. Exactly one exists per input row per
// run; rows from earlier runs of a retried job are kept.
type ImportRecord struct {
	ID              uuid.UUID         `json:"id" db:"id"`
	ImportJobID     uuid.UUID         `json:"import_job_id" db:"import_job_id"`
	RowNumber       int               `json:"row_number" db:"row_number"`
	RawData         map[string]string `json:"raw_data" db:"raw_data"`
	Status          string            `json:"status" db:"status"`
	ErrorMessage    *string           `json:"error_message,omitempty" db:"error_message"`
	CreatedEntityID *string           `json:"created_entity_id,omitempty" db:"created_entity_id"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
}

// CompletionSummary is the error_summary payload of a completed job.
type CompletionSummary struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Ok        int `json:"ok"`
	Fail      int `json:"fail"`
}

// FailureSummary is the error_summary payload of a failed job.
type FailureSummary struct {
	Message string `json:"message"`
}

// ProgressEvent is pushed to subscribers on every ledger mutation.
type ProgressEvent struct {
	JobID             uuid.UUID `json:"job_id"`
	Status            JobStatus `json:"status"`
	TotalRecords      int       `json:"total_records"`
	ProcessedRecords  int       `json:"processed_records"`
	SuccessfulRecords int       `json:"successful_records"`
	FailedRecords     int       `json:"failed_records"`
}

// NewProgressEvent snapshots a job's progress for publication.
func NewProgressEvent(job *ImportJob) ProgressEvent {
	return ProgressEvent{
		JobID:             job.ID,
		Status:            job.Status,
		TotalRecords:      job.TotalRecords,
		ProcessedRecords:  job.ProcessedRecords,
		SuccessfulRecords: job.SuccessfulRecords,
		FailedRecords:     job.FailedRecords,
	}
}

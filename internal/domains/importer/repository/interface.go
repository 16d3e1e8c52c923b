package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pos-backend/internal/domains/importer/model"
)

// RepositoryInterface is the job ledger: the durable source of truth for job
// status, counters and per-row outcomes. A single runner writes to one job at
// a time; callers must not start two runs of the same job concurrently.
type RepositoryInterface interface {
	CreateJob(ctx context.Context, job *model.ImportJob) error
	GetJob(ctx context.Context, id uuid.UUID) (*model.ImportJob, error)
	ListJobsByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*model.ImportJob, error)

	// SetStatus stamps completed_at when the status is terminal.
	SetStatus(ctx context.Context, id uuid.UUID, status model.JobStatus) error
	SetTotal(ctx context.Context, id uuid.UUID, total int) error

	// UpdateProgress writes cumulative counters (absolute set, so repeated
	// flushes with the same values are idempotent) and refreshes the
	// heartbeat.
	UpdateProgress(ctx context.Context, id uuid.UUID, processed, successful, failed int) error
	SetErrorSummary(ctx context.Context, id uuid.UUID, summary interface{}) error

	// ResetForRetry atomically clears counters, summary and completion stamp
	// and puts the job back to pending.
	ResetForRetry(ctx context.Context, id uuid.UUID) error

	AppendRecord(ctx context.Context, record *model.ImportRecord) error
	ListRecords(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*model.ImportRecord, error)

	// FailStuckJobs marks processing jobs whose heartbeat is older than
	// olderThan as failed. Returns the number of jobs reaped.
	FailStuckJobs(ctx context.Context, olderThan time.Duration) (int64, error)
}

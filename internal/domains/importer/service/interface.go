package service

import (
	"context"

	"github.com/google/uuid"

	"pos-backend/internal/domains/importer/model"
)

// ServiceInterface is the job control surface exposed to the HTTP layer.
type ServiceInterface interface {
	// StartImport stores the uploaded workbook, creates a pending job and
	// enqueues a run task for it.
	StartImport(ctx context.Context, ownerID uuid.UUID, kind model.ImportKind, filename string, data []byte) (*model.ImportJob, error)
	GetJob(ctx context.Context, id uuid.UUID) (*model.ImportJob, error)
	ListJobs(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*model.ImportJob, error)
	ListRecords(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*model.ImportRecord, error)
	// Cancel requests cooperative cancellation of a pending or processing job.
	Cancel(ctx context.Context, id uuid.UUID) (*model.ImportJob, error)
	// Retry re-enqueues a failed or cancelled job against its original file.
	Retry(ctx context.Context, id uuid.UUID) (*model.ImportJob, error)
}

// RowProcessor validates and applies a single spreadsheet row for one import
// kind. A returned model.RowError marks the row failed without aborting the
// job; any other error is treated the same way but logged as unexpected.
type RowProcessor interface {
	Kind() model.ImportKind
	Process(ctx context.Context, row map[string]string, rowNumber int) (createdEntityID string, err error)
}

// FileStore persists uploaded workbooks between the upload request and the
// background run. Upload returns the ref that Download later resolves, so
// whatever the ledger records as source_file_ref must round-trip here.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
}

// TaskEnqueuer hands a job off to the background worker.
type TaskEnqueuer interface {
	EnqueueRunImport(ctx context.Context, jobID uuid.UUID) error
}

// Notifier broadcasts progress snapshots to interested clients.
type Notifier interface {
	Publish(ctx context.Context, event model.ProgressEvent)
	Subscribe(ctx context.Context, jobID uuid.UUID) (<-chan model.ProgressEvent, func())
}

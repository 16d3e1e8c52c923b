package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"pos-backend/internal/domains/importer/service"
	"pos-backend/internal/shared"
)

// RunImportPayload is the asynq payload of an import run task.
type RunImportPayload struct {
	JobID uuid.UUID `json:"job_id"`
}

type enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer wraps an asynq client as the import service's task sink.
func NewEnqueuer(client *asynq.Client) service.TaskEnqueuer {
	return &enqueuer{client: client}
}

// EnqueueRunImport queues a single run of the job. MaxRetry is zero: the
// runner owns its own failure handling and a blind asynq retry would rerun
// rows that already committed.
func (e *enqueuer) EnqueueRunImport(ctx context.Context, jobID uuid.UUID) error {
	payload, err := json.Marshal(RunImportPayload{JobID: jobID})
	if err != nil {
		return fmt.Errorf("failed to marshal run payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeRunImport, payload)
	if _, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(0),
	); err != nil {
		return fmt.Errorf("failed to enqueue run task: %w", err)
	}
	return nil
}

package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"pos-backend/internal/domains/importer/service"
	"pos-backend/pkg/logger"
)

type RunImportHandler struct {
	runner *service.Runner
}

func NewRunImportHandler(runner *service.Runner) *RunImportHandler {
	return &RunImportHandler{runner: runner}
}

func (h *RunImportHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload RunImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal run payload: %w", err)
	}
	if payload.JobID == uuid.Nil {
		return fmt.Errorf("run payload missing job_id")
	}

	logger.Info("Starting import run", map[string]interface{}{
		"job_id": payload.JobID.String(),
	})

	if err := h.runner.Run(ctx, payload.JobID); err != nil {
		return fmt.Errorf("run import %s: %w", payload.JobID, err)
	}
	return nil
}

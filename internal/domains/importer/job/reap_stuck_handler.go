package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"pos-backend/internal/config"
	"pos-backend/internal/domains/importer/repository"
	"pos-backend/pkg/logger"
)

// ReapStuckImportsHandler fails processing jobs whose worker stopped
// heartbeating, typically after a worker crash. Scheduled periodically.
type ReapStuckImportsHandler struct {
	repo repository.RepositoryInterface
	cfg  config.ImportConfig
}

func NewReapStuckImportsHandler(repo repository.RepositoryInterface, cfg config.ImportConfig) *ReapStuckImportsHandler {
	return &ReapStuckImportsHandler{repo: repo, cfg: cfg}
}

func (h *ReapStuckImportsHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	reaped, err := h.repo.FailStuckJobs(ctx, h.cfg.StuckAfter)
	if err != nil {
		return fmt.Errorf("fail stuck import jobs: %w", err)
	}

	if reaped > 0 {
		logger.Info("Reaped stuck import jobs", map[string]interface{}{
			"count":       reaped,
			"stuck_after": h.cfg.StuckAfter.String(),
		})
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/config"
	"pos-backend/internal/domains/importer/model"
	"pos-backend/internal/domains/importer/repository"
)

const workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type importService struct {
	repo     repository.RepositoryInterface
	files    FileStore
	enqueuer TaskEnqueuer
	notifier Notifier
	cfg      config.ImportConfig
}

func NewImportService(
	repo repository.RepositoryInterface,
	files FileStore,
	enqueuer TaskEnqueuer,
	notifier Notifier,
	cfg config.ImportConfig,
) ServiceInterface {
	return &importService{
		repo:     repo,
		files:    files,
		enqueuer: enqueuer,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *importService) StartImport(ctx context.Context, ownerID uuid.UUID, kind model.ImportKind, filename string, data []byte) (*model.ImportJob, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("uploaded file is empty")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("uploaded file exceeds %d bytes", s.cfg.MaxUploadBytes)
	}

	jobID := uuid.New()
	key := fmt.Sprintf("imports/%s/%s", jobID, path.Base(filename))

	fileRef, err := s.files.Upload(ctx, key, data, workbookContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	job := &model.ImportJob{
		ID:            jobID,
		ImportKind:    kind,
		SourceFileRef: fileRef,
		Status:        model.StatusPending,
		OwnerID:       ownerID,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}

	if err := s.enqueuer.EnqueueRunImport(ctx, jobID); err != nil {
		return nil, fmt.Errorf("failed to enqueue import job: %w", err)
	}

	log.Info().
		Str("job_id", jobID.String()).
		Str("kind", string(kind)).
		Str("owner_id", ownerID.String()).
		Int("size", len(data)).
		Msg("Import job accepted")
	return job, nil
}

func (s *importService) GetJob(ctx context.Context, id uuid.UUID) (*model.ImportJob, error) {
	return s.repo.GetJob(ctx, id)
}

func (s *importService) ListJobs(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*model.ImportJob, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListJobsByOwner(ctx, ownerID, limit, offset)
}

func (s *importService) ListRecords(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*model.ImportRecord, error) {
	if _, err := s.repo.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)
	return s.repo.ListRecords(ctx, jobID, limit, offset)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Cancel flips the job to cancelled immediately. A run already in flight
// notices at its next progress flush and stops there.
func (s *importService) Cancel(ctx context.Context, id uuid.UUID) (*model.ImportJob, error) {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.CanCancel() {
		return nil, model.ErrNotCancellable
	}

	if err := s.repo.SetStatus(ctx, id, model.StatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel import job: %w", err)
	}
	job.Status = model.StatusCancelled
	s.notifier.Publish(ctx, model.NewProgressEvent(job))

	log.Info().Str("job_id", id.String()).Msg("Import job cancelled")
	return job, nil
}

// Retry resets a failed or cancelled job and enqueues a fresh run against
// the original workbook. Records from earlier runs are kept.
func (s *importService) Retry(ctx context.Context, id uuid.UUID) (*model.ImportJob, error) {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.CanRetry() {
		return nil, model.ErrNotRetryable
	}

	if err := s.repo.ResetForRetry(ctx, id); err != nil {
		return nil, err
	}

	job.Status = model.StatusPending
	job.ProcessedRecords = 0
	job.SuccessfulRecords = 0
	job.FailedRecords = 0
	job.ErrorSummary = nil
	job.HeartbeatAt = nil
	job.CompletedAt = nil

	if err := s.enqueuer.EnqueueRunImport(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to enqueue import job: %w", err)
	}

	s.notifier.Publish(ctx, model.NewProgressEvent(job))
	log.Info().Str("job_id", id.String()).Msg("Import job retry enqueued")
	return job, nil
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/config"
	"pos-backend/internal/domains/importer/model"
	"pos-backend/internal/domains/importer/repository"
	"pos-backend/internal/domains/importer/spreadsheet"
)

// Runner executes one import job end to end: download the workbook, decode
// it, run every row through the kind's processor and keep the ledger and
// subscribers up to date along the way.
//
// Row failures never abort the job; only infrastructure failures around the
// file or the ledger do. Progress counters are written as absolute values so
// a crashed and re-delivered run cannot double count.
type Runner struct {
	repo       repository.RepositoryInterface
	files      FileStore
	notifier   Notifier
	processors map[model.ImportKind]RowProcessor
	cfg        config.ImportConfig
}

func NewRunner(
	repo repository.RepositoryInterface,
	files FileStore,
	notifier Notifier,
	processors []RowProcessor,
	cfg config.ImportConfig,
) *Runner {
	byKind := make(map[model.ImportKind]RowProcessor, len(processors))
	for _, p := range processors {
		byKind[p.Kind()] = p
	}
	return &Runner{
		repo:       repo,
		files:      files,
		notifier:   notifier,
		processors: byKind,
		cfg:        cfg,
	}
}

// Run processes the job with the given id. Jobs that are no longer pending
// are skipped, which makes a re-delivered task harmless.
func (r *Runner) Run(ctx context.Context, jobID uuid.UUID) error {
	job, err := r.repo.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}

	if job.Status != model.StatusPending {
		log.Info().
			Str("job_id", jobID.String()).
			Str("status", string(job.Status)).
			Msg("Skipping import job that is no longer pending")
		return nil
	}

	if err := r.repo.SetStatus(ctx, jobID, model.StatusProcessing); err != nil {
		return fmt.Errorf("failed to mark job processing: %w", err)
	}
	job.Status = model.StatusProcessing
	r.notifier.Publish(ctx, model.NewProgressEvent(job))

	data, err := r.files.Download(ctx, job.SourceFileRef)
	if err != nil {
		return r.fail(ctx, job, fmt.Sprintf("no se pudo descargar el archivo: %v", err))
	}

	rows, err := spreadsheet.Decode(data)
	if err != nil {
		return r.fail(ctx, job, fmt.Sprintf("no se pudo leer el archivo: %v", err))
	}

	if err := r.repo.SetTotal(ctx, jobID, len(rows)); err != nil {
		err = fmt.Errorf("failed to set job total: %w", err)
		r.failForLedgerError(ctx, job, err)
		return err
	}
	job.TotalRecords = len(rows)
	r.notifier.Publish(ctx, model.NewProgressEvent(job))

	processor, ok := r.processors[job.ImportKind]
	if !ok {
		return r.fail(ctx, job, fmt.Sprintf("tipo de importación no soportado: %s", job.ImportKind))
	}

	var processed, succeeded, failed int
	for i, row := range rows {
		// Header occupies row 1, so data row i lives at spreadsheet row i+2.
		rowNumber := i + 2

		entityID, rowErr := r.processRow(ctx, processor, row, rowNumber)
		processed++

		record := model.ImportRecord{
			ID:          uuid.New(),
			ImportJobID: jobID,
			RowNumber:   rowNumber,
			RawData:     row,
		}
		if rowErr != nil {
			failed++
			record.Status = model.RecordError
			msg := rowErr.Error()
			record.ErrorMessage = &msg
			if !model.IsRowError(rowErr) {
				log.Error().
					Err(rowErr).
					Str("job_id", jobID.String()).
					Int("row", rowNumber).
					Msg("Import row failed unexpectedly")
			}
		} else {
			succeeded++
			record.Status = model.RecordSuccess
			if entityID != "" {
				record.CreatedEntityID = &entityID
			}
		}

		if err := r.repo.AppendRecord(ctx, &record); err != nil {
			err = fmt.Errorf("failed to append import record: %w", err)
			r.failForLedgerError(ctx, job, err)
			return err
		}

		if processed%r.cfg.FlushEvery == 0 || processed == len(rows) {
			cancelled, err := r.flush(ctx, job, processed, succeeded, failed)
			if err != nil {
				r.failForLedgerError(ctx, job, err)
				return err
			}
			if cancelled {
				log.Info().
					Str("job_id", jobID.String()).
					Int("processed", processed).
					Msg("Import job cancelled mid run")
				return nil
			}
		}
	}

	summary := model.CompletionSummary{
		Total:     len(rows),
		Processed: processed,
		Ok:        succeeded,
		Fail:      failed,
	}
	if err := r.repo.SetErrorSummary(ctx, jobID, summary); err != nil {
		err = fmt.Errorf("failed to store job summary: %w", err)
		r.failForLedgerError(ctx, job, err)
		return err
	}
	if err := r.repo.SetStatus(ctx, jobID, model.StatusCompleted); err != nil {
		err = fmt.Errorf("failed to mark job completed: %w", err)
		r.failForLedgerError(ctx, job, err)
		return err
	}
	job.Status = model.StatusCompleted
	r.notifier.Publish(ctx, model.NewProgressEvent(job))

	log.Info().
		Str("job_id", jobID.String()).
		Int("total", len(rows)).
		Int("ok", succeeded).
		Int("fail", failed).
		Msg("Import job completed")
	return nil
}

// processRow applies the per-row timeout around the processor. A stuck
// collaborator store then costs one failed row instead of a stuck job.
func (r *Runner) processRow(ctx context.Context, processor RowProcessor, row spreadsheet.Row, rowNumber int) (string, error) {
	rowCtx, cancel := context.WithTimeout(ctx, r.cfg.RowTimeout)
	defer cancel()
	return processor.Process(rowCtx, row, rowNumber)
}

// flush writes the absolute counters, publishes a snapshot and honors a
// cancel request made since the previous flush.
func (r *Runner) flush(ctx context.Context, job *model.ImportJob, processed, ok, fail int) (cancelled bool, err error) {
	if err := r.repo.UpdateProgress(ctx, job.ID, processed, ok, fail); err != nil {
		return false, fmt.Errorf("failed to update job progress: %w", err)
	}
	job.ProcessedRecords = processed
	job.SuccessfulRecords = ok
	job.FailedRecords = fail

	current, err := r.repo.GetJob(ctx, job.ID)
	if err != nil {
		return false, fmt.Errorf("failed to reload job: %w", err)
	}
	if current.Status == model.StatusCancelled {
		job.Status = model.StatusCancelled
		r.notifier.Publish(ctx, model.NewProgressEvent(job))
		return true, nil
	}

	r.notifier.Publish(ctx, model.NewProgressEvent(job))
	return false, nil
}

// failForLedgerError turns a refused ledger write into a failed status where
// possible. The same ledger just rejected a write, so this attempt may also
// fail; the stuck job reaper then finishes the job off via its stale
// heartbeat.
func (r *Runner) failForLedgerError(ctx context.Context, job *model.ImportJob, cause error) {
	if err := r.fail(ctx, job, fmt.Sprintf("no se pudo actualizar el registro del trabajo: %v", cause)); err != nil {
		log.Error().
			Err(err).
			Str("job_id", job.ID.String()).
			Msg("Could not mark job failed after ledger error")
	}
}

// fail marks the job failed with a user-facing message. Used for job-level
// faults only; row faults are recorded per record instead.
func (r *Runner) fail(ctx context.Context, job *model.ImportJob, message string) error {
	summary := model.FailureSummary{Message: message}
	if err := r.repo.SetErrorSummary(ctx, job.ID, summary); err != nil {
		return fmt.Errorf("failed to store failure summary: %w", err)
	}
	if err := r.repo.SetStatus(ctx, job.ID, model.StatusFailed); err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	job.Status = model.StatusFailed
	r.notifier.Publish(ctx, model.NewProgressEvent(job))

	log.Error().
		Str("job_id", job.ID.String()).
		Str("reason", message).
		Msg("Import job failed")
	return nil
}

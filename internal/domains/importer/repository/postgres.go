package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-backend/internal/domains/importer/model"
	"pos-backend/pkg/database"
)

type importRepository struct {
	pool *pgxpool.Pool
}

func NewImportRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &importRepository{pool: pool}
}

func (r *importRepository) CreateJob(ctx context.Context, job *model.ImportJob) error {
	query := `
        INSERT INTO import_jobs (
            id, import_kind, source_file_ref, status,
            total_records, processed_records, successful_records, failed_records,
            owner_id, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `

	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.ImportKind,
		job.SourceFileRef,
		job.Status,
		job.TotalRecords,
		job.ProcessedRecords,
		job.SuccessfulRecords,
		job.FailedRecords,
		job.OwnerID,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create import job: %w", err)
	}

	return nil
}

const jobColumns = `
    id, import_kind, source_file_ref, status,
    total_records, processed_records, successful_records, failed_records,
    error_summary, owner_id, heartbeat_at, created_at, updated_at, completed_at
`

func scanJob(row pgx.Row) (*model.ImportJob, error) {
	var job model.ImportJob
	err := row.Scan(
		&job.ID,
		&job.ImportKind,
		&job.SourceFileRef,
		&job.Status,
		&job.TotalRecords,
		&job.ProcessedRecords,
		&job.SuccessfulRecords,
		&job.FailedRecords,
		&job.ErrorSummary,
		&job.OwnerID,
		&job.HeartbeatAt,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *importRepository) GetJob(ctx context.Context, id uuid.UUID) (*model.ImportJob, error) {
	query := `SELECT ` + jobColumns + ` FROM import_jobs WHERE id = $1`

	job, err := scanJob(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}

	return job, nil
}

func (r *importRepository) ListJobsByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*model.ImportJob, error) {
	query := `
        SELECT ` + jobColumns + `
        FROM import_jobs
        WHERE owner_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `

	rows, err := r.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list import jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*model.ImportJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import job: %w", err)
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

func (r *importRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.JobStatus) error {
	query := `
        UPDATE import_jobs
        SET status = $1,
            updated_at = NOW(),
            heartbeat_at = CASE WHEN $1 = 'processing' THEN NOW() ELSE heartbeat_at END,
            completed_at = CASE
                WHEN $1 IN ('completed', 'failed', 'cancelled') THEN NOW()
                ELSE NULL
            END
        WHERE id = $2
    `

	tag, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrJobNotFound
	}

	return nil
}

func (r *importRepository) SetTotal(ctx context.Context, id uuid.UUID, total int) error {
	query := `
        UPDATE import_jobs
        SET total_records = $1,
            updated_at = NOW()
        WHERE id = $2
    `

	_, err := r.pool.Exec(ctx, query, total, id)
	if err != nil {
		return fmt.Errorf("failed to set total records: %w", err)
	}

	return nil
}

func (r *importRepository) UpdateProgress(ctx context.Context, id uuid.UUID, processed, successful, failed int) error {
	query := `
        UPDATE import_jobs
        SET processed_records = $1,
            successful_records = $2,
            failed_records = $3,
            heartbeat_at = NOW(),
            updated_at = NOW()
        WHERE id = $4
    `

	_, err := r.pool.Exec(ctx, query, processed, successful, failed, id)
	if err != nil {
		return fmt.Errorf("failed to update job progress: %w", err)
	}

	return nil
}

func (r *importRepository) SetErrorSummary(ctx context.Context, id uuid.UUID, summary interface{}) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal error summary: %w", err)
	}

	query := `
        UPDATE import_jobs
        SET error_summary = $1,
            updated_at = NOW()
        WHERE id = $2
    `

	_, err = r.pool.Exec(ctx, query, summaryJSON, id)
	if err != nil {
		return fmt.Errorf("failed to set error summary: %w", err)
	}

	return nil
}

// ResetForRetry re-checks the state guard under a row lock so two concurrent
// retry requests cannot both enqueue a run.
func (r *importRepository) ResetForRetry(ctx context.Context, id uuid.UUID) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		var status model.JobStatus
		err := tx.QueryRow(ctx,
			`SELECT status FROM import_jobs WHERE id = $1 FOR UPDATE`, id,
		).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrJobNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock import job: %w", err)
		}

		job := model.ImportJob{Status: status}
		if !job.CanRetry() {
			return model.ErrNotRetryable
		}

		if _, err := tx.Exec(ctx, `
            UPDATE import_jobs
            SET status = 'pending',
                processed_records = 0,
                successful_records = 0,
                failed_records = 0,
                error_summary = NULL,
                heartbeat_at = NULL,
                completed_at = NULL,
                updated_at = NOW()
            WHERE id = $1
        `, id); err != nil {
			return fmt.Errorf("failed to reset import job: %w", err)
		}
		return nil
	})
}

func (r *importRepository) AppendRecord(ctx context.Context, record *model.ImportRecord) error {
	rawJSON, err := json.Marshal(record.RawData)
	if err != nil {
		return fmt.Errorf("failed to marshal row data: %w", err)
	}

	query := `
        INSERT INTO import_records (
            id, import_job_id, row_number, raw_data, status,
            error_message, created_entity_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	record.CreatedAt = time.Now()

	_, err = r.pool.Exec(ctx, query,
		record.ID,
		record.ImportJobID,
		record.RowNumber,
		rawJSON,
		record.Status,
		record.ErrorMessage,
		record.CreatedEntityID,
		record.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to append import record: %w", err)
	}

	return nil
}

func (r *importRepository) ListRecords(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*model.ImportRecord, error) {
	query := `
        SELECT id, import_job_id, row_number, raw_data, status,
               error_message, created_entity_id, created_at
        FROM import_records
        WHERE import_job_id = $1
        ORDER BY created_at, row_number
        LIMIT $2 OFFSET $3
    `

	rows, err := r.pool.Query(ctx, query, jobID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list import records: %w", err)
	}
	defer rows.Close()

	var records []*model.ImportRecord
	for rows.Next() {
		var rec model.ImportRecord
		var rawJSON []byte

		err := rows.Scan(
			&rec.ID,
			&rec.ImportJobID,
			&rec.RowNumber,
			&rawJSON,
			&rec.Status,
			&rec.ErrorMessage,
			&rec.CreatedEntityID,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import record: %w", err)
		}

		if len(rawJSON) > 0 {
			if err := json.Unmarshal(rawJSON, &rec.RawData); err != nil {
				return nil, fmt.Errorf("failed to unmarshal row data: %w", err)
			}
		}

		records = append(records, &rec)
	}

	return records, rows.Err()
}

func (r *importRepository) FailStuckJobs(ctx context.Context, olderThan time.Duration) (int64, error) {
	summary, err := json.Marshal(model.FailureSummary{
		Message: fmt.Sprintf("no heartbeat for %s, reaped as stuck", olderThan),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal reaper summary: %w", err)
	}

	query := `
        UPDATE import_jobs
        SET status = 'failed',
            error_summary = $1,
            completed_at = NOW(),
            updated_at = NOW()
        WHERE status = 'processing'
          AND heartbeat_at < NOW() - $2::interval
    `

	interval := fmt.Sprintf("%f seconds", olderThan.Seconds())
	tag, err := r.pool.Exec(ctx, query, summary, interval)
	if err != nil {
		return 0, fmt.Errorf("failed to reap stuck jobs: %w", err)
	}

	return tag.RowsAffected(), nil
}

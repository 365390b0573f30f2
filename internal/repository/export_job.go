package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const exportJobColumns = `id, workspace_id, snapshot_id, filter, format, status, retries, error, object_key, result_count, created_at, processed_at`

type ExportJobRepository struct {
	db dbtx
}

func NewExportJobRepository(pool *pgxpool.Pool) *ExportJobRepository {
	return &ExportJobRepository{db: pool}
}

func NewExportJobRepositoryWithTx(tx pgx.Tx) *ExportJobRepository {
	return &ExportJobRepository{db: tx}
}

func scanExportJob(row pgx.Row) (*domain.ExportJob, error) {
	var job domain.ExportJob
	var filterJSON []byte
	var errMsg, objectKey pgtype.Text
	err := row.Scan(&job.ID, &job.WorkspaceID, &job.SnapshotID, &filterJSON, &job.Format, &job.Status,
		&job.Retries, &errMsg, &objectKey, &job.ResultCount, &job.CreatedAt, &job.ProcessedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(filterJSON, &job.Filter); err != nil {
		return nil, fmt.Errorf("decode filter of export job %s: %w", job.ID, err)
	}
	if errMsg.Valid {
		job.Error = errMsg.String
	}
	if objectKey.Valid {
		job.ObjectKey = objectKey.String
	}
	return &job, nil
}

func (r *ExportJobRepository) Create(ctx context.Context, job *domain.ExportJob) error {
	filterJSON, err := json.Marshal(job.Filter)
	if err != nil {
		return fmt.Errorf("encode filter: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO export_jobs (`+exportJobColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		job.ID, job.WorkspaceID, job.SnapshotID, filterJSON, job.Format, job.Status, job.Retries,
		nullableString(job.Error), nullableString(job.ObjectKey), job.ResultCount, job.CreatedAt, job.ProcessedAt,
	)
	return err
}

func (r *ExportJobRepository) GetByID(ctx context.Context, id string) (*domain.ExportJob, error) {
	job, err := scanExportJob(r.db.QueryRow(ctx,
		`SELECT `+exportJobColumns+` FROM export_jobs WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrExportJobNotFound
	}
	return job, err
}

// ClaimPending moves up to limit pending jobs to processing and returns
// them. Concurrent workers never claim the same job.
func (r *ExportJobRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.ExportJob, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`WITH cte AS (
			 SELECT id
			 FROM export_jobs
			 WHERE status = $1
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT $2
		 )
		 UPDATE export_jobs j
		 SET status = $3,
		     error = NULL,
		     processed_at = NULL
		 FROM cte
		 WHERE j.id = cte.id
		 RETURNING j.id, j.workspace_id, j.snapshot_id, j.filter, j.format, j.status, j.retries,
		           j.error, j.object_key, j.result_count, j.created_at, j.processed_at`,
		domain.ExportJobStatusPending, limit, domain.ExportJobStatusProcessing,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.ExportJob
	for rows.Next() {
		job, err := scanExportJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *ExportJobRepository) UpdateStatus(ctx context.Context, id string, status domain.ExportJobStatus, errMsg string) error {
	var processedAt *time.Time
	if status == domain.ExportJobStatusCompleted || status == domain.ExportJobStatusFailed {
		now := time.Now().UTC()
		processedAt = &now
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE export_jobs SET status = $1, error = $2, processed_at = $3 WHERE id = $4`,
		status, nullableString(errMsg), processedAt, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrExportJobNotFound
	}
	return nil
}

func (r *ExportJobRepository) IncrementRetries(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE export_jobs SET retries = retries + 1 WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrExportJobNotFound
	}
	return nil
}

func (r *ExportJobRepository) MarkCompleted(ctx context.Context, id, objectKey string, resultCount int) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE export_jobs
		 SET status = $1, error = NULL, object_key = $2, result_count = $3, processed_at = $4
		 WHERE id = $5`,
		domain.ExportJobStatusCompleted, objectKey, resultCount, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrExportJobNotFound
	}
	return nil
}

func (r *ExportJobRepository) DeleteBySnapshot(ctx context.Context, snapshotID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM export_jobs WHERE snapshot_id = $1`, snapshotID)
	return err
}

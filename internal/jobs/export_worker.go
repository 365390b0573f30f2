package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/telemetry"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3

	// claimBatchSize bounds how many jobs one poll claims
	claimBatchSize = 20
)

// ExportJobRepository defines the interface for export job persistence
type ExportJobRepository interface {
	// ClaimPending moves pending jobs to processing and returns them
	ClaimPending(ctx context.Context, limit int) ([]*domain.ExportJob, error)

	// UpdateStatus updates the status of an export job
	UpdateStatus(ctx context.Context, jobID string, status domain.ExportJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, jobID string) error
}

// ExportProcessor renders and uploads a single export; it marks the job
// completed on success.
type ExportProcessor interface {
	Process(ctx context.Context, job *domain.ExportJob) error
}

// ExportWorker processes export jobs
type ExportWorker struct {
	repo      ExportJobRepository
	processor ExportProcessor
}

// NewExportWorker creates a new ExportWorker instance
func NewExportWorker(repo ExportJobRepository, processor ExportProcessor) *ExportWorker {
	return &ExportWorker{
		repo:      repo,
		processor: processor,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *ExportWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, claimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending export jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}

	return nil
}

func (w *ExportWorker) processJob(ctx context.Context, job *domain.ExportJob) error {
	log.Printf("Processing export job %s for snapshot %s (%s)", job.ID, job.SnapshotID, job.Format)

	if err := w.processor.Process(ctx, job); err != nil {
		telemetry.CaptureError(ctx, err)
		return w.handleJobFailure(ctx, job, err)
	}

	log.Printf("Job %s completed successfully", job.ID)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *ExportWorker) handleJobFailure(ctx context.Context, job *domain.ExportJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.ExportJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.ExportJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}

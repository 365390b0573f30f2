package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/export"
	"github.com/cloo-solutions/storelens/internal/search"
	"github.com/cloo-solutions/storelens/internal/telemetry"
)

// ExportJobRepository defines the repository interface for export jobs
type ExportJobRepository interface {
	Create(ctx context.Context, job *domain.ExportJob) error
	GetByID(ctx context.Context, id string) (*domain.ExportJob, error)
	MarkCompleted(ctx context.Context, id, objectKey string, resultCount int) error
	DeleteBySnapshot(ctx context.Context, snapshotID string) error
}

// ObjectStorage stores rendered exports
type ObjectStorage interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	GenerateDownloadURL(ctx context.Context, key, filename string) (string, error)
}

// ExportService turns search results into downloadable objects. Rendering
// happens asynchronously in the export worker.
type ExportService struct {
	jobs      ExportJobRepository
	snapshots SnapshotReader
	storage   ObjectStorage
	uuidGen   UUIDGenerator
	requested func()
}

// NewExportService creates a new ExportService. storage may be nil when no
// object store is configured; requests then fail with ErrStorageNotConfigured.
func NewExportService(jobs ExportJobRepository, snapshots SnapshotReader, storage ObjectStorage) *ExportService {
	return &ExportService{
		jobs:      jobs,
		snapshots: snapshots,
		storage:   storage,
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// NewExportServiceWithUUIDGen creates an ExportService with a custom UUID generator (for testing)
func NewExportServiceWithUUIDGen(jobs ExportJobRepository, snapshots SnapshotReader, storage ObjectStorage, uuidGen UUIDGenerator) *ExportService {
	return &ExportService{
		jobs:      jobs,
		snapshots: snapshots,
		storage:   storage,
		uuidGen:   uuidGen,
	}
}

// OnRequested registers fn to run after each queued job, typically a worker
// wake-up
func (s *ExportService) OnRequested(fn func()) {
	s.requested = fn
}

type RequestExportInput struct {
	WorkspaceID string
	SnapshotID  string
	Filter      domain.SearchFilter
	Format      string
}

// Request validates the export and queues a pending job
func (s *ExportService) Request(ctx context.Context, input RequestExportInput) (*domain.ExportJob, error) {
	ctx, span := telemetry.StartSpan(ctx, "ExportService.Request", telemetry.SpanAttributes{
		WorkspaceID: input.WorkspaceID,
		SnapshotID:  input.SnapshotID,
		Operation:   "request_export",
	})
	defer span.End()

	if s.storage == nil {
		return nil, domain.ErrStorageNotConfigured
	}

	format, err := domain.ParseExportFormat(input.Format)
	if err != nil {
		return nil, err
	}

	filter, err := validateStoredFilter(input.Filter)
	if err != nil {
		return nil, err
	}

	if _, err := s.loadSnapshot(ctx, input.WorkspaceID, input.SnapshotID); err != nil {
		return nil, err
	}

	job := domain.NewExportJob(s.uuidGen.NewString(), input.WorkspaceID, input.SnapshotID, filter, format, time.Now().UTC())
	if err := domain.ValidateExportJob(job); err != nil {
		return nil, asValidationError(err)
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		span.SetError(err)
		return nil, err
	}
	if s.requested != nil {
		s.requested()
	}
	return job, nil
}

// Get returns an export job owned by workspaceID
func (s *ExportService) Get(ctx context.Context, workspaceID, id string) (*domain.ExportJob, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.WorkspaceID != workspaceID {
		return nil, domain.ErrExportJobNotFound
	}
	return job, nil
}

// Process renders a claimed job and uploads the result
func (s *ExportService) Process(ctx context.Context, job *domain.ExportJob) error {
	ctx, span := telemetry.StartSpan(ctx, "ExportService.Process", telemetry.SpanAttributes{
		WorkspaceID: job.WorkspaceID,
		SnapshotID:  job.SnapshotID,
		JobID:       job.ID,
		MatchMode:   string(job.Filter.MatchMode),
		Operation:   "process_export",
	})
	defer span.End()

	if s.storage == nil {
		return domain.ErrStorageNotConfigured
	}

	snap, err := s.loadSnapshot(ctx, job.WorkspaceID, job.SnapshotID)
	if err != nil {
		span.SetError(err)
		return err
	}

	results := search.Search(snap.Records, job.Filter.WithDefaults())
	span.SetCounts(len(snap.Records), len(results))
	body, contentType, err := export.Render(job.Format, results)
	if err != nil {
		span.SetError(err)
		return err
	}

	key := domain.ObjectKeyFor(job)
	if err := s.storage.PutObject(ctx, key, contentType, body); err != nil {
		span.SetError(err)
		return fmt.Errorf("%w: %w", domain.ErrStorageOperationFail, err)
	}

	if err := s.jobs.MarkCompleted(ctx, job.ID, key, len(results)); err != nil {
		return fmt.Errorf("failed to mark export job completed: %w", err)
	}

	telemetry.AddBreadcrumb(ctx, "export", fmt.Sprintf("export %s completed with %d results", job.ID, len(results)))
	return nil
}

// Download is a presigned link to a finished export.
type Download struct {
	URL      string
	Filename string
}

// DownloadURL presigns a link to a completed export.
func (s *ExportService) DownloadURL(ctx context.Context, workspaceID, id string) (*Download, error) {
	job, err := s.Get(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.ExportJobStatusCompleted || job.ObjectKey == "" {
		return nil, domain.ErrExportNotReady
	}
	if s.storage == nil {
		return nil, domain.ErrStorageNotConfigured
	}

	filename := domain.DownloadFilename(job)
	url, err := s.storage.GenerateDownloadURL(ctx, job.ObjectKey, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageOperationFail, err)
	}
	return &Download{URL: url, Filename: filename}, nil
}

func (s *ExportService) loadSnapshot(ctx context.Context, workspaceID, id string) (*domain.Snapshot, error) {
	if id == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "snapshot_id is required")
	}
	snap, err := s.snapshots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap.WorkspaceID != workspaceID {
		return nil, domain.ErrSnapshotNotFound
	}
	return snap, nil
}

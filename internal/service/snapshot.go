package service

import (
	"context"
	"strings"
	"time"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/pagination"
	"github.com/cloo-solutions/storelens/internal/telemetry"
	"github.com/google/uuid"
)

// SnapshotRepository defines the repository interface for snapshot persistence
type SnapshotRepository interface {
	Create(ctx context.Context, s *domain.Snapshot) error
	GetByID(ctx context.Context, id string) (*domain.Snapshot, error)
	ListByWorkspaceWithCursor(ctx context.Context, workspaceID string, cursor *pagination.Cursor, limit int) (*SnapshotPageResult, error)
	Delete(ctx context.Context, id string) error
}

type SnapshotPageResult = pagination.Page[*domain.Snapshot]

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// SnapshotService stores and retrieves record snapshots
type SnapshotService struct {
	repo     SnapshotRepository
	txRunner TxRunner
	uuidGen  UUIDGenerator
}

// NewSnapshotService creates a new SnapshotService instance
func NewSnapshotService(repo SnapshotRepository, txRunner TxRunner) *SnapshotService {
	return &SnapshotService{
		repo:     repo,
		txRunner: txRunner,
		uuidGen:  &DefaultUUIDGenerator{},
	}
}

// NewSnapshotServiceWithUUIDGen creates a SnapshotService with a custom UUID generator (for testing)
func NewSnapshotServiceWithUUIDGen(repo SnapshotRepository, txRunner TxRunner, uuidGen UUIDGenerator) *SnapshotService {
	return &SnapshotService{
		repo:     repo,
		txRunner: txRunner,
		uuidGen:  uuidGen,
	}
}

type CreateSnapshotInput struct {
	WorkspaceID string
	Name        string
	SourceURL   string
	Records     []domain.StorageRecord
}

type ListSnapshotsInput struct {
	WorkspaceID string
	Cursor      string
	Limit       int
}

type ListSnapshotsOutput struct {
	Items   []*domain.Snapshot
	Cursor  string
	HasMore bool
}

// Create validates and stores a new snapshot
func (s *SnapshotService) Create(ctx context.Context, input CreateSnapshotInput) (*domain.Snapshot, error) {
	ctx, span := telemetry.StartSpan(ctx, "SnapshotService.Create", telemetry.SpanAttributes{
		WorkspaceID: input.WorkspaceID,
		Operation:   "create",
	})
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "snapshot name is required")
	}

	records := input.Records
	if records == nil {
		records = []domain.StorageRecord{}
	}

	snap := domain.NewSnapshot(s.uuidGen.NewString(), input.WorkspaceID, name, input.SourceURL, records, time.Now().UTC())
	if err := domain.ValidateSnapshot(snap); err != nil {
		return nil, asValidationError(err)
	}

	if err := s.repo.Create(ctx, snap); err != nil {
		span.SetError(err)
		return nil, err
	}

	return snap, nil
}

// Get returns a snapshot owned by workspaceID. Snapshots of other
// workspaces are reported as not found.
func (s *SnapshotService) Get(ctx context.Context, workspaceID, id string) (*domain.Snapshot, error) {
	ctx, span := telemetry.StartSpan(ctx, "SnapshotService.Get", telemetry.SpanAttributes{
		WorkspaceID: workspaceID,
		SnapshotID:  id,
		Operation:   "get",
	})
	defer span.End()

	snap, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap.WorkspaceID != workspaceID {
		return nil, domain.ErrSnapshotNotFound
	}
	return snap, nil
}

// List returns snapshot summaries, newest first. Records are not loaded.
func (s *SnapshotService) List(ctx context.Context, input ListSnapshotsInput) (*ListSnapshotsOutput, error) {
	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}
	limit := pagination.ClampLimit(input.Limit)

	result, err := s.repo.ListByWorkspaceWithCursor(ctx, input.WorkspaceID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListSnapshotsOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// Delete removes a snapshot together with its export jobs
func (s *SnapshotService) Delete(ctx context.Context, workspaceID, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "SnapshotService.Delete", telemetry.SpanAttributes{
		WorkspaceID: workspaceID,
		SnapshotID:  id,
		Operation:   "delete",
	})
	defer span.End()

	if _, err := s.Get(ctx, workspaceID, id); err != nil {
		return err
	}

	if s.txRunner == nil {
		return s.repo.Delete(ctx, id)
	}

	return s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.ExportJobs().DeleteBySnapshot(ctx, id); err != nil {
			return err
		}
		return repos.Snapshots().Delete(ctx, id)
	})
}

// asValidationError keeps domain errors and turns plain validation failures
// into VALIDATION_ERROR domain errors.
func asValidationError(err error) error {
	if domain.CodeOf(err) != "" {
		return err
	}
	return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, err.Error(), err)
}

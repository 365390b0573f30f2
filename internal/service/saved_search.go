package service

import (
	"context"
	"strings"
	"time"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/pagination"
	"github.com/cloo-solutions/storelens/internal/search"
	"github.com/cloo-solutions/storelens/internal/telemetry"
)

// SavedSearchRepository defines the repository interface for saved searches
type SavedSearchRepository interface {
	// Upsert inserts s or replaces the filter of the entry with the same name
	Upsert(ctx context.Context, s *domain.SavedSearch) (*domain.SavedSearch, error)
	GetByName(ctx context.Context, workspaceID, name string) (*domain.SavedSearch, error)
	ListByWorkspaceWithCursor(ctx context.Context, workspaceID string, cursor *pagination.Cursor, limit int) (*SavedSearchPageResult, error)
	DeleteByName(ctx context.Context, workspaceID, name string) error
}

type SavedSearchPageResult = pagination.Page[*domain.SavedSearch]

// Searcher runs searches; implemented by SearchService
type Searcher interface {
	Search(ctx context.Context, input SearchInput) (*SearchOutput, error)
}

// SavedSearchService manages named filters
type SavedSearchService struct {
	repo     SavedSearchRepository
	searcher Searcher
	uuidGen  UUIDGenerator
}

// NewSavedSearchService creates a new SavedSearchService instance
func NewSavedSearchService(repo SavedSearchRepository, searcher Searcher) *SavedSearchService {
	return &SavedSearchService{
		repo:     repo,
		searcher: searcher,
		uuidGen:  &DefaultUUIDGenerator{},
	}
}

// NewSavedSearchServiceWithUUIDGen creates a SavedSearchService with a custom UUID generator (for testing)
func NewSavedSearchServiceWithUUIDGen(repo SavedSearchRepository, searcher Searcher, uuidGen UUIDGenerator) *SavedSearchService {
	return &SavedSearchService{
		repo:     repo,
		searcher: searcher,
		uuidGen:  uuidGen,
	}
}

type SaveSearchInput struct {
	WorkspaceID string
	Name        string
	Filter      domain.SearchFilter
}

type ListSavedSearchesInput struct {
	WorkspaceID string
	Cursor      string
	Limit       int
}

type ListSavedSearchesOutput struct {
	Items   []*domain.SavedSearch
	Cursor  string
	HasMore bool
}

type RunSavedSearchInput struct {
	WorkspaceID string
	Name        string
	SnapshotID  string
	Records     []domain.StorageRecord
	SortBy      string
	SortOrder   string
	Limit       int
}

// Save stores filter under name, replacing an existing entry of that name
func (s *SavedSearchService) Save(ctx context.Context, input SaveSearchInput) (*domain.SavedSearch, error) {
	ctx, span := telemetry.StartSpan(ctx, "SavedSearchService.Save", telemetry.SpanAttributes{
		WorkspaceID: input.WorkspaceID,
		Operation:   "save",
	})
	defer span.End()

	filter, err := validateStoredFilter(input.Filter)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	saved := &domain.SavedSearch{
		ID:          s.uuidGen.NewString(),
		WorkspaceID: input.WorkspaceID,
		Name:        strings.TrimSpace(input.Name),
		Filter:      filter,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := domain.ValidateSavedSearch(saved); err != nil {
		return nil, asValidationError(err)
	}

	stored, err := s.repo.Upsert(ctx, saved)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return stored, nil
}

// Get returns the saved search called name
func (s *SavedSearchService) Get(ctx context.Context, workspaceID, name string) (*domain.SavedSearch, error) {
	return s.repo.GetByName(ctx, workspaceID, name)
}

// List returns saved searches, most recently updated first
func (s *SavedSearchService) List(ctx context.Context, input ListSavedSearchesInput) (*ListSavedSearchesOutput, error) {
	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}
	limit := pagination.ClampLimit(input.Limit)

	result, err := s.repo.ListByWorkspaceWithCursor(ctx, input.WorkspaceID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListSavedSearchesOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// Delete removes the saved search called name
func (s *SavedSearchService) Delete(ctx context.Context, workspaceID, name string) error {
	return s.repo.DeleteByName(ctx, workspaceID, name)
}

// Run executes a saved filter against a snapshot or inline records
func (s *SavedSearchService) Run(ctx context.Context, input RunSavedSearchInput) (*SearchOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "SavedSearchService.Run", telemetry.SpanAttributes{
		WorkspaceID: input.WorkspaceID,
		SnapshotID:  input.SnapshotID,
		SavedSearch: input.Name,
		Operation:   "run_saved_search",
	})
	defer span.End()

	saved, err := s.repo.GetByName(ctx, input.WorkspaceID, input.Name)
	if err != nil {
		return nil, err
	}

	return s.searcher.Search(ctx, SearchInput{
		WorkspaceID: input.WorkspaceID,
		SnapshotID:  input.SnapshotID,
		Records:     input.Records,
		Filter:      saved.Filter,
		SortBy:      input.SortBy,
		SortOrder:   input.SortOrder,
		Limit:       input.Limit,
	})
}

// validateStoredFilter normalises a filter that is persisted for later runs.
// Unlike an interactive search, a stored regex filter must compile.
func validateStoredFilter(f domain.SearchFilter) (domain.SearchFilter, error) {
	filter := f.WithDefaults()
	if err := domain.ValidateSearchFilter(&filter); err != nil {
		return filter, err
	}
	if filter.IsBlank() {
		return filter, domain.NewDomainError(domain.ErrCodeValidation, "filter text is required")
	}
	if filter.MatchMode == domain.MatchModeRegex {
		if v := search.ValidatePattern(filter.Text); !v.Valid {
			return filter, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, domain.ErrInvalidPattern.Message+": "+v.Message, domain.ErrInvalidPattern)
		}
	}
	return filter, nil
}

package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/search"
	"github.com/cloo-solutions/storelens/internal/telemetry"
)

// HistoryRepository persists the per-workspace search history
type HistoryRepository interface {
	// Record upserts entry and trims the workspace history to keep entries
	Record(ctx context.Context, entry *domain.HistoryEntry, keep int) error
	List(ctx context.Context, workspaceID string, limit int) ([]*domain.HistoryEntry, error)
	Clear(ctx context.Context, workspaceID string) error
}

// SnapshotReader loads stored snapshots
type SnapshotReader interface {
	GetByID(ctx context.Context, id string) (*domain.Snapshot, error)
}

// SearchService runs the search engine over inline records or stored
// snapshots and keeps the workspace history and search logs.
type SearchService struct {
	snapshots SnapshotReader
	history   HistoryRepository
	logRepo   SearchLogRepository
}

// NewSearchService creates a new SearchService. history and logRepo may be
// nil, in which case nothing is recorded.
func NewSearchService(snapshots SnapshotReader, history HistoryRepository, logRepo SearchLogRepository) *SearchService {
	return &SearchService{
		snapshots: snapshots,
		history:   history,
		logRepo:   logRepo,
	}
}

type SearchInput struct {
	WorkspaceID string
	SnapshotID  string
	Records     []domain.StorageRecord
	Filter      domain.SearchFilter
	SortBy      string
	SortOrder   string
	Limit       int
}

type SearchOutput struct {
	SearchID string
	Results  []domain.SearchResult
	// Total is the number of matches before Limit was applied
	Total int
}

type SuggestInput struct {
	WorkspaceID string
	SnapshotID  string
	Records     []domain.StorageRecord
	Partial     string
}

// Search evaluates the filter, sorts the matches and records the query
func (s *SearchService) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		WorkspaceID: input.WorkspaceID,
		SnapshotID:  input.SnapshotID,
		MatchMode:   string(input.Filter.MatchMode),
		Operation:   "search",
	})
	defer span.End()

	start := time.Now()

	results, scanned, err := s.run(ctx, input)
	if err != nil {
		return nil, err
	}

	total := len(results)
	span.SetCounts(scanned, total)
	if input.Limit > 0 && len(results) > input.Limit {
		results = results[:input.Limit]
	}

	out := &SearchOutput{Results: results, Total: total}
	if input.Filter.IsBlank() {
		return out, nil
	}

	s.recordHistory(ctx, input.WorkspaceID, input.Filter.Text)

	if s.logRepo != nil {
		entry := SearchLogEntry{
			WorkspaceID: input.WorkspaceID,
			SnapshotID:  input.SnapshotID,
			Query:       input.Filter.Text,
			Filter:      input.Filter.WithDefaults(),
			SortBy:      input.SortBy,
			Limit:       input.Limit,
			Total:       total,
			DurationMs:  int(time.Since(start).Milliseconds()),
			Results:     buildSearchLogResults(results),
		}
		searchID, err := s.logRepo.CreateSearchLog(ctx, entry)
		if err != nil {
			log.Printf("search: failed to write search log: %v", err)
		} else {
			out.SearchID = searchID
		}
	}

	return out, nil
}

// Stats runs the search without limit and aggregates every match
func (s *SearchService) Stats(ctx context.Context, input SearchInput) (domain.SearchStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Stats", telemetry.SpanAttributes{
		WorkspaceID: input.WorkspaceID,
		SnapshotID:  input.SnapshotID,
		Operation:   "stats",
	})
	defer span.End()

	results, _, err := s.run(ctx, input)
	if err != nil {
		return domain.SearchStats{}, err
	}
	return search.Stats(results), nil
}

// Suggest returns completions for a partial query
func (s *SearchService) Suggest(ctx context.Context, input SuggestInput) ([]string, error) {
	records, err := s.resolveRecords(ctx, input.WorkspaceID, input.SnapshotID, input.Records)
	if err != nil {
		return nil, err
	}
	return search.Suggest(records, input.Partial), nil
}

// Validate reports whether pattern is usable in regex mode
func (s *SearchService) Validate(pattern string) search.PatternValidation {
	return search.ValidatePattern(pattern)
}

// History returns the workspace's recent search texts, most recent first
func (s *SearchService) History(ctx context.Context, workspaceID string) ([]*domain.HistoryEntry, error) {
	if s.history == nil {
		return []*domain.HistoryEntry{}, nil
	}
	return s.history.List(ctx, workspaceID, domain.MaxHistoryEntries)
}

// ClearHistory removes every history entry of the workspace
func (s *SearchService) ClearHistory(ctx context.Context, workspaceID string) error {
	if s.history == nil {
		return nil
	}
	return s.history.Clear(ctx, workspaceID)
}

// run returns the sorted matches and the number of records searched
func (s *SearchService) run(ctx context.Context, input SearchInput) ([]domain.SearchResult, int, error) {
	filter := input.Filter.WithDefaults()
	if err := domain.ValidateSearchFilter(&filter); err != nil {
		return nil, 0, err
	}

	field, order, err := search.ParseSort(input.SortBy, input.SortOrder)
	if err != nil {
		return nil, 0, err
	}

	records, err := s.resolveRecords(ctx, input.WorkspaceID, input.SnapshotID, input.Records)
	if err != nil {
		return nil, 0, err
	}

	results := search.Search(records, filter)
	return search.SortResults(results, field, order), len(records), nil
}

func (s *SearchService) resolveRecords(ctx context.Context, workspaceID, snapshotID string, records []domain.StorageRecord) ([]domain.StorageRecord, error) {
	if snapshotID == "" {
		if err := domain.ValidateStorageRecords(records); err != nil {
			return nil, err
		}
		return records, nil
	}

	if s.snapshots == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	snap, err := s.snapshots.GetByID(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	if snap.WorkspaceID != workspaceID {
		return nil, domain.ErrSnapshotNotFound
	}
	return snap.Records, nil
}

func (s *SearchService) recordHistory(ctx context.Context, workspaceID, text string) {
	if s.history == nil || workspaceID == "" || strings.TrimSpace(text) == "" {
		return
	}

	entry := &domain.HistoryEntry{
		WorkspaceID: workspaceID,
		Text:        text,
		UsedAt:      time.Now().UTC(),
	}
	if err := s.history.Record(ctx, entry, domain.MaxHistoryEntries); err != nil {
		log.Printf("search: failed to record history: %v", err)
	}
}

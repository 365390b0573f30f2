package service

import (
	"context"

	"github.com/cloo-solutions/storelens/internal/domain"
)

// SearchLogResult captures a single result entry for logging.
type SearchLogResult struct {
	ID        string               `json:"id"`
	StoreKind domain.StoreKind     `json:"store_kind"`
	MatchType domain.MatchLocation `json:"match_type"`
	Score     float64              `json:"score"`
}

// SearchLogEntry captures a search request and its results.
type SearchLogEntry struct {
	WorkspaceID string
	SnapshotID  string
	Query       string
	Filter      domain.SearchFilter
	SortBy      string
	Limit       int
	Total       int
	DurationMs  int
	Results     []SearchLogResult
}

// SearchLogRepository persists search logs.
type SearchLogRepository interface {
	CreateSearchLog(ctx context.Context, entry SearchLogEntry) (string, error)
}

func buildSearchLogResults(results []domain.SearchResult) []SearchLogResult {
	out := make([]SearchLogResult, 0, len(results))
	for _, r := range results {
		out = append(out, SearchLogResult{
			ID:        r.Record.Key + ":" + string(r.Record.StoreKind),
			StoreKind: r.Record.StoreKind,
			MatchType: r.MatchLocation,
			Score:     r.MatchScore,
		})
	}
	return out
}

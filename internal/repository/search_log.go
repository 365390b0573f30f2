package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloo-solutions/storelens/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchLogRepository stores one row per executed search.
type SearchLogRepository struct {
	pool *pgxpool.Pool
}

func NewSearchLogRepository(pool *pgxpool.Pool) *SearchLogRepository {
	return &SearchLogRepository{pool: pool}
}

func (r *SearchLogRepository) CreateSearchLog(ctx context.Context, entry service.SearchLogEntry) (string, error) {
	filterJSON, err := json.Marshal(entry.Filter)
	if err != nil {
		return "", fmt.Errorf("encode filter: %w", err)
	}
	results := entry.Results
	if results == nil {
		results = []service.SearchLogResult{}
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("encode results: %w", err)
	}

	var id string
	err = r.pool.QueryRow(ctx,
		`INSERT INTO search_logs (workspace_id, snapshot_id, query, filter, sort_by, result_limit, results, result_count, total, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		entry.WorkspaceID,
		nullableString(entry.SnapshotID),
		entry.Query,
		filterJSON,
		nullableString(entry.SortBy),
		entry.Limit,
		resultsJSON,
		len(results),
		entry.Total,
		entry.DurationMs,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

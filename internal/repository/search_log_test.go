//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchLogRepository_CreateSearchLog(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(ctx, t)
	repo := NewSearchLogRepository(pool)
	ws := setupWorkspace(ctx, t, pool, "logs")
	s := setupSnapshot(ctx, t, pool, ws.ID)

	id, err := repo.CreateSearchLog(ctx, service.SearchLogEntry{
		WorkspaceID: ws.ID,
		SnapshotID:  s.ID,
		Query:       "tok",
		Filter:      domain.SearchFilter{Text: "tok"}.WithDefaults(),
		SortBy:      "relevance",
		Limit:       10,
		Total:       1,
		DurationMs:  2,
		Results: []service.SearchLogResult{
			{ID: "user_token:local", StoreKind: domain.StoreKindLocal, MatchType: domain.MatchLocationKey, Score: 1},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	var count int
	var query string
	err = pool.QueryRow(ctx, `SELECT result_count, query FROM search_logs WHERE id = $1`, id).Scan(&count, &query)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "tok", query)
}

func TestSearchLogRepository_InlineRecordsHaveNoSnapshot(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(ctx, t)
	repo := NewSearchLogRepository(pool)
	ws := setupWorkspace(ctx, t, pool, "logs-inline")

	id, err := repo.CreateSearchLog(ctx, service.SearchLogEntry{
		WorkspaceID: ws.ID,
		Query:       "theme",
		Filter:      domain.SearchFilter{Text: "theme"}.WithDefaults(),
	})
	require.NoError(t, err)

	var snapshotID *string
	require.NoError(t, pool.QueryRow(ctx, `SELECT snapshot_id FROM search_logs WHERE id = $1`, id).Scan(&snapshotID))
	assert.Nil(t, snapshotID)
}

//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/testutil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func newTestPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	return testutil.NewTestPool(ctx, t, testutil.NewPostgresContainer(ctx, t))
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func setupWorkspace(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name string) *domain.Workspace {
	t.Helper()
	ws := domain.NewWorkspace(uuid.NewString(), name, now())
	require.NoError(t, NewWorkspaceRepository(pool).Create(ctx, ws))
	return ws
}

func setupSnapshot(ctx context.Context, t *testing.T, pool *pgxpool.Pool, workspaceID string, records ...domain.StorageRecord) *domain.Snapshot {
	t.Helper()
	s := domain.NewSnapshot(uuid.NewString(), workspaceID, "example.com", "https://example.com", records, now())
	require.NoError(t, NewSnapshotRepository(pool).Create(ctx, s))
	return s
}

//go:build integration

package database_test

import (
	"context"
	"testing"

	"github.com/cloo-solutions/storelens/internal/database"
	"github.com/cloo-solutions/storelens/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_AppliesLimits(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)

	pool, err := database.NewPool(ctx, database.Config{
		URL:             pc.ConnectionString(),
		MaxConns:        4,
		MinConns:        1,
		ApplicationName: "storelens-test",
	})
	require.NoError(t, err)
	defer pool.Close()

	assert.Equal(t, int32(4), pool.Config().MaxConns)
	assert.Equal(t, int32(1), pool.Config().MinConns)

	var appName string
	require.NoError(t, pool.QueryRow(ctx, "SHOW application_name").Scan(&appName))
	assert.Equal(t, "storelens-test", appName)
}

func TestMigrator_UpDownVersion(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)

	mg, err := database.NewMigrator(pc.ConnectionString(), testutil.MigrationsDir(t))
	require.NoError(t, err)
	defer mg.Close()

	version, err := mg.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	latest, err := mg.Up()
	require.NoError(t, err)
	assert.Greater(t, latest, uint(0))

	again, err := mg.Up()
	require.NoError(t, err)
	assert.Equal(t, latest, again)

	rolledBack, err := mg.Down(1)
	require.NoError(t, err)
	assert.Equal(t, latest-1, rolledBack)

	_, err = mg.Down(0)
	assert.Error(t, err)
}

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmchat/internal/config"
	"dmchat/internal/domain"
)

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		StoreDriver: config.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "messages.db"),
	}

	repos, err := Open(ctx, cfg)
	require.NoError(t, err)

	u := &domain.User{Username: "alice", Email: "alice@example.com", HashedPassword: "x"}
	require.NoError(t, repos.Users.Create(ctx, u))
	require.NoError(t, repos.Close(ctx))

	// Reopening runs the migrations again and keeps existing rows.
	repos, err = Open(ctx, cfg)
	require.NoError(t, err)
	defer repos.Close(ctx)

	got, err := repos.Users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreDriver: "redis"})
	assert.ErrorContains(t, err, "redis")
}

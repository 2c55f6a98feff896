package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dmchat/internal/domain"
	"dmchat/internal/store/storetest"
)

func TestRepositories(t *testing.T) {
	storetest.Run(t, func(t *testing.T) (domain.UserRepository, domain.MessageRepository) {
		db, err := Open(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		require.NoError(t, Migrate(db))
		return NewUserRepo(db), NewMessageRepo(db)
	}, func(t *testing.T, msgs domain.MessageRepository, m *domain.Message, at time.Time) {
		require.NoError(t, msgs.(*MessageRepo).insert(context.Background(), m, at))
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

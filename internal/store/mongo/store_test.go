package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dmchat/internal/domain"
	"dmchat/internal/store/storetest"
)

func TestRepositories(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	n := 0
	storetest.Run(t, func(t *testing.T) (domain.UserRepository, domain.MessageRepository) {
		ctx := context.Background()
		n++
		db, err := Open(ctx, uri, fmt.Sprintf("dmchat_test_%d_%d", time.Now().UnixNano(), n))
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = db.Drop(ctx)
			_ = db.Client().Disconnect(ctx)
		})
		require.NoError(t, Migrate(ctx, db))
		return NewUserRepo(db), NewMessageRepo(db)
	}, func(t *testing.T, msgs domain.MessageRepository, m *domain.Message, at time.Time) {
		require.NoError(t, msgs.(*MessageRepo).insert(context.Background(), m, at))
	})
}

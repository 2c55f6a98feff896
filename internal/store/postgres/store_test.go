package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dmchat/internal/domain"
	"dmchat/internal/store/storetest"
)

func TestRepositories(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	db, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db))

	storetest.Run(t, func(t *testing.T) (domain.UserRepository, domain.MessageRepository) {
		_, err := db.Exec(`TRUNCATE messages, users RESTART IDENTITY CASCADE`)
		require.NoError(t, err)
		return NewUserRepo(db), NewMessageRepo(db)
	}, func(t *testing.T, msgs domain.MessageRepository, m *domain.Message, at time.Time) {
		err := msgs.(*MessageRepo).db.QueryRowxContext(context.Background(), `
			INSERT INTO messages (sender_id, recipient_id, content, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, is_read
		`, m.SenderID, m.RecipientID, m.Content, at).Scan(&m.ID, &m.CreatedAt, &m.IsRead)
		require.NoError(t, err)
	})
}

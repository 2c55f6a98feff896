// Package storetest holds the behavioural contract every repository backing
// must satisfy. Each backing's tests call Run with a factory that returns
// repositories over an empty store, and a hook that inserts a message at a
// fixed time so that timestamp ties can be produced.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmchat/internal/domain"
	"dmchat/internal/service"
)

// Factory returns fresh, empty repositories sharing one store.
type Factory func(t *testing.T) (domain.UserRepository, domain.MessageRepository)

// InsertAt stores m through msgs with its creation time forced to at, filling
// in m.ID. msgs is a repository returned by the same backing's Factory.
type InsertAt func(t *testing.T, msgs domain.MessageRepository, m *domain.Message, at time.Time)

// Run executes the contract suite.
func Run(t *testing.T, newRepos Factory, insertAt InsertAt) {
	t.Run("UserCreateAndLookup", func(t *testing.T) { testUserCreateAndLookup(t, newRepos) })
	t.Run("UserDuplicates", func(t *testing.T) { testUserDuplicates(t, newRepos) })
	t.Run("UserListAllExcept", func(t *testing.T) { testUserListAllExcept(t, newRepos) })
	t.Run("UserProfileImage", func(t *testing.T) { testUserProfileImage(t, newRepos) })
	t.Run("MessageCreateAndGet", func(t *testing.T) { testMessageCreateAndGet(t, newRepos) })
	t.Run("MessageListBetween", func(t *testing.T) { testMessageListBetween(t, newRepos) })
	t.Run("MessageListForUser", func(t *testing.T) { testMessageListForUser(t, newRepos) })
	t.Run("MessageMarkRead", func(t *testing.T) { testMessageMarkRead(t, newRepos) })
	t.Run("MessageRejectsSelf", func(t *testing.T) { testMessageRejectsSelf(t, newRepos) })
	t.Run("MessageTimestampTies", func(t *testing.T) { testMessageTimestampTies(t, newRepos, insertAt) })
}

func createUser(t *testing.T, users domain.UserRepository, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: "hash",
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func send(t *testing.T, msgs domain.MessageRepository, from, to *domain.User, content string) *domain.Message {
	t.Helper()
	m := &domain.Message{SenderID: from.ID, RecipientID: to.ID, Content: content}
	require.NoError(t, msgs.Create(context.Background(), m))
	return m
}

func contents(msgs []*domain.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}

func testUserCreateAndLookup(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	users, _ := newRepos(t)

	alice := createUser(t, users, "alice")
	assert.NotZero(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	byID, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.Equal(t, "hash", byID.HashedPassword)
	assert.Nil(t, byID.ProfileImage)

	byEmail, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	byName, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	_, err = users.GetByID(ctx, alice.ID+1000)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = users.GetByUsername(ctx, "ALICE")
	assert.ErrorIs(t, err, domain.ErrNotFound, "lookups are exact-match")
}

func testUserDuplicates(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	users, _ := newRepos(t)
	createUser(t, users, "alice")

	err := users.Create(ctx, &domain.User{Username: "alice", Email: "other@example.com", HashedPassword: "h"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = users.Create(ctx, &domain.User{Username: "other", Email: "alice@example.com", HashedPassword: "h"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Uniqueness is case-sensitive.
	err = users.Create(ctx, &domain.User{Username: "Alice", Email: "Alice@example.com", HashedPassword: "h"})
	assert.NoError(t, err)
}

func testUserListAllExcept(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	users, _ := newRepos(t)
	carol := createUser(t, users, "carol")
	createUser(t, users, "alice")
	createUser(t, users, "bob")

	list, err := users.ListAllExcept(ctx, carol.ID)
	require.NoError(t, err)
	names := make([]string, len(list))
	for i, u := range list {
		names[i] = u.Username
	}
	assert.Equal(t, []string{"alice", "bob"}, names)
}

func testUserProfileImage(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	users, _ := newRepos(t)
	alice := createUser(t, users, "alice")

	require.NoError(t, users.UpdateProfileImage(ctx, alice.ID, "/uploads/a.png"))
	got, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ProfileImage)
	assert.Equal(t, "/uploads/a.png", *got.ProfileImage)

	assert.ErrorIs(t, users.UpdateProfileImage(ctx, alice.ID+1000, "/x"), domain.ErrNotFound)
}

func testMessageCreateAndGet(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	users, msgs := newRepos(t)
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	m := send(t, msgs, alice, bob, "hi")
	assert.NotZero(t, m.ID)
	assert.False(t, m.CreatedAt.IsZero())
	assert.False(t, m.IsRead)

	got, err := msgs.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.SenderID)
	assert.Equal(t, bob.ID, got.RecipientID)
	assert.Equal(t, "hi", got.Content)
	assert.False(t, got.IsRead)
	assert.True(t, m.CreatedAt.Equal(got.CreatedAt))

	_, err = msgs.GetByID(ctx, m.ID+1000)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testMessageListBetween(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	users, msgs := newRepos(t)
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	carol := createUser(t, users, "carol")

	send(t, msgs, alice, bob, "1")
	send(t, msgs, bob, alice, "2")
	send(t, msgs, alice, carol, "other")
	send(t, msgs, alice, bob, "3")

	ab, err := msgs.ListBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, contents(ab))

	ba, err := msgs.ListBetween(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, contents(ab), contents(ba))
	for i := 1; i < len(ab); i++ {
		assert.False(t, ab[i].CreatedAt.Before(ab[i-1].CreatedAt))
		assert.Greater(t, ab[i].ID, ab[i-1].ID)
	}

	none, err := msgs.ListBetween(ctx, bob.ID, carol.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testMessageListForUser(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	users, msgs := newRepos(t)
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	carol := createUser(t, users, "carol")

	send(t, msgs, alice, bob, "a->b")
	send(t, msgs, carol, alice, "c->a")
	send(t, msgs, bob, carol, "b->c")
	send(t, msgs, bob, alice, "b->a")

	list, err := msgs.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b->a", "c->a", "a->b"}, contents(list))
}

func testMessageMarkRead(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	users, msgs := newRepos(t)
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	m := send(t, msgs, alice, bob, "hi")

	require.NoError(t, msgs.MarkRead(ctx, m.ID))
	require.NoError(t, msgs.MarkRead(ctx, m.ID))

	got, err := msgs.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	assert.ErrorIs(t, msgs.MarkRead(ctx, m.ID+1000), domain.ErrNotFound)
}

func testMessageRejectsSelf(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	users, msgs := newRepos(t)
	alice := createUser(t, users, "alice")

	err := msgs.Create(ctx, &domain.Message{SenderID: alice.ID, RecipientID: alice.ID, Content: "note to self"})
	assert.ErrorIs(t, err, domain.ErrSelfMessage)

	list, err := msgs.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testMessageTimestampTies(t *testing.T, newRepos Factory, insertAt InsertAt) {
	ctx := context.Background()
	users, msgs := newRepos(t)
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	carol := createUser(t, users, "carol")

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	insert := func(from, to *domain.User, content string, when time.Time) *domain.Message {
		m := &domain.Message{SenderID: from.ID, RecipientID: to.ID, Content: content}
		insertAt(t, msgs, m, when)
		return m
	}
	insert(carol, alice, "c->a", at.Add(-time.Minute))
	first := insert(alice, bob, "first", at)
	second := insert(bob, alice, "second", at)
	third := insert(alice, bob, "third", at)
	require.Less(t, first.ID, second.ID)
	require.Less(t, second.ID, third.ID)

	between, err := msgs.ListBetween(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, contents(between))
	for _, m := range between {
		assert.True(t, at.Equal(m.CreatedAt), "created_at %s", m.CreatedAt)
	}

	forAlice, err := msgs.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first", "c->a"}, contents(forAlice))

	summaries := service.LatestPerPartner(alice.ID, forAlice)
	require.Len(t, summaries, 2)
	assert.Equal(t, bob.ID, summaries[0].PartnerID)
	assert.Equal(t, third.ID, summaries[0].LastMessage.ID)
	assert.Equal(t, 1, summaries[0].UnreadCount)
	assert.Equal(t, carol.ID, summaries[1].PartnerID)
}

package service_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dmchat/internal/domain"
	"dmchat/internal/mocks"
	"dmchat/internal/security"
	"dmchat/internal/service"
)

var (
	alice = &domain.User{ID: 1, Username: "alice", Email: "alice@example.com"}
	bob   = &domain.User{ID: 2, Username: "bob", Email: "bob@example.com"}
	carol = &domain.User{ID: 3, Username: "carol", Email: "carol@example.com"}
)

func knownUsers(repo *mocks.UserRepositoryMock, users ...*domain.User) {
	for _, u := range users {
		repo.On("GetByID", mock.Anything, u.ID).Return(u, nil).Maybe()
	}
}

func expectCreate(repo *mocks.MessageRepositoryMock, id int64) {
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Message")).
		Run(func(args mock.Arguments) {
			m := args.Get(1).(*domain.Message)
			m.ID = id
			m.CreatedAt = time.Now().UTC()
		}).
		Return(nil).Once()
}

func TestSendRejectsSelfMessage(t *testing.T) {
	msgs := new(mocks.MessageRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	svc := service.NewMessageService(msgs, users, nil, 1000)

	for _, content := range []string{"hello", "", "   "} {
		_, err := svc.Send(context.Background(), alice.ID, service.MessageCreateInput{RecipientID: alice.ID, Content: content})
		assert.ErrorIs(t, err, domain.ErrSelfMessage, "content %q", content)
	}
	msgs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSendRejectsEmptyContent(t *testing.T) {
	msgs := new(mocks.MessageRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	svc := service.NewMessageService(msgs, users, nil, 1000)

	for _, content := range []string{"", "   ", "\n\t "} {
		_, err := svc.Send(context.Background(), alice.ID, service.MessageCreateInput{RecipientID: bob.ID, Content: content})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.ErrorContains(t, err, "empty")
	}
	msgs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSendLengthBoundary(t *testing.T) {
	msgs := new(mocks.MessageRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	knownUsers(users, alice, bob)
	svc := service.NewMessageService(msgs, users, nil, 1000)
	ctx := context.Background()

	expectCreate(msgs, 1)
	view, err := svc.Send(ctx, alice.ID, service.MessageCreateInput{RecipientID: bob.ID, Content: strings.Repeat("é", 1000)})
	require.NoError(t, err)
	assert.Equal(t, 1000, len([]rune(view.Content)))

	_, err = svc.Send(ctx, alice.ID, service.MessageCreateInput{RecipientID: bob.ID, Content: strings.Repeat("a", 1001)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, "too long")

	msgs.AssertExpectations(t)
}

func TestSendRecipientMissing(t *testing.T) {
	msgs := new(mocks.MessageRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	users.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound).Once()
	svc := service.NewMessageService(msgs, users, nil, 1000)

	_, err := svc.Send(context.Background(), alice.ID, service.MessageCreateInput{RecipientID: 99, Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	msgs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	users.AssertExpectations(t)
}

func TestSendSuccess(t *testing.T) {
	msgs := new(mocks.MessageRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	knownUsers(users, alice, bob)
	svc := service.NewMessageService(msgs, users, nil, 1000)

	msgs.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		return m.SenderID == alice.ID && m.RecipientID == bob.ID && m.Content == "hi there"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Message).ID = 7
	}).Return(nil).Once()

	view, err := svc.Send(context.Background(), alice.ID, service.MessageCreateInput{RecipientID: bob.ID, Content: "  hi there \n"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), view.ID)
	assert.Equal(t, "hi there", view.Content)
	assert.Equal(t, "alice", view.Sender.Username)
	assert.Equal(t, "bob", view.Recipient.Username)
	assert.False(t, view.Read)
	msgs.AssertExpectations(t)
}

func TestSendEncryptsAtRest(t *testing.T) {
	enc, err := security.NewEncryptor([]byte("key"))
	require.NoError(t, err)

	msgs := new(mocks.MessageRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	knownUsers(users, alice, bob)
	svc := service.NewMessageService(msgs, users, enc, 1000)

	var stored string
	msgs.On("Create", mock.Anything, mock.AnythingOfType("*domain.Message")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Message).Content }).
		Return(nil).Once()

	view, err := svc.Send(context.Background(), alice.ID, service.MessageCreateInput{RecipientID: bob.ID, Content: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "secret", view.Content)
	assert.NotEqual(t, "secret", stored)

	msgs.On("ListBetween", mock.Anything, bob.ID, alice.ID).
		Return([]*domain.Message{{ID: 1, SenderID: alice.ID, RecipientID: bob.ID, Content: stored}}, nil).Once()
	history, err := svc.Conversation(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "secret", history[0].Content)
}

func TestConversationKeepsStoreOrder(t *testing.T) {
	msgs := new(mocks.MessageRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	knownUsers(users, alice, bob)
	svc := service.NewMessageService(msgs, users, nil, 1000)

	msgs.On("ListBetween", mock.Anything, alice.ID, bob.ID).Return([]*domain.Message{
		{ID: 1, SenderID: alice.ID, RecipientID: bob.ID, Content: "hi"},
		{ID: 2, SenderID: bob.ID, RecipientID: alice.ID, Content: "hello"},
	}, nil).Once()

	history, err := svc.Conversation(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, "bob", history[1].Sender.Username)
	users.AssertNumberOfCalls(t, "GetByID", 2)
}

func TestConversationUndecryptableContentIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	enc, err := security.NewEncryptor([]byte("new-key"))
	require.NoError(t, err)
	old, err := security.NewEncryptor([]byte("old-key"))
	require.NoError(t, err)
	sealed, err := old.Encrypt("secret")
	require.NoError(t, err)

	msgs := new(mocks.MessageRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	knownUsers(users, alice, bob)
	svc := service.NewMessageService(msgs, users, enc, 1000)

	msgs.On("ListBetween", mock.Anything, alice.ID, bob.ID).Return([]*domain.Message{
		{ID: 7, SenderID: alice.ID, RecipientID: bob.ID, Content: sealed},
		{ID: 8, SenderID: bob.ID, RecipientID: alice.ID, Content: "plain"},
	}, nil).Once()

	history, err := svc.Conversation(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, sealed, history[0].Content)
	assert.Equal(t, "plain", history[1].Content)
	assert.Contains(t, buf.String(), "message_id=7")
	assert.Contains(t, buf.String(), "message_id=8")
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		msgs := new(mocks.MessageRepositoryMock)
		svc := service.NewMessageService(msgs, new(mocks.UserRepositoryMock), nil, 1000)
		msgs.On("GetByID", mock.Anything, int64(5)).Return(nil, domain.ErrNotFound).Once()

		_, err := svc.MarkRead(ctx, 5, bob.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("NotRecipient", func(t *testing.T) {
		msgs := new(mocks.MessageRepositoryMock)
		svc := service.NewMessageService(msgs, new(mocks.UserRepositoryMock), nil, 1000)
		msgs.On("GetByID", mock.Anything, int64(5)).
			Return(&domain.Message{ID: 5, SenderID: alice.ID, RecipientID: bob.ID}, nil)

		_, err := svc.MarkRead(ctx, 5, alice.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		_, err = svc.MarkRead(ctx, 5, carol.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		msgs.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
	})

	t.Run("Idempotent", func(t *testing.T) {
		msgs := new(mocks.MessageRepositoryMock)
		users := new(mocks.UserRepositoryMock)
		knownUsers(users, alice, bob)
		svc := service.NewMessageService(msgs, users, nil, 1000)

		msgs.On("GetByID", mock.Anything, int64(5)).
			Return(&domain.Message{ID: 5, SenderID: alice.ID, RecipientID: bob.ID}, nil).Once()
		msgs.On("MarkRead", mock.Anything, int64(5)).Return(nil).Once()

		first, err := svc.MarkRead(ctx, 5, bob.ID)
		require.NoError(t, err)
		assert.True(t, first.Read)

		msgs.On("GetByID", mock.Anything, int64(5)).
			Return(&domain.Message{ID: 5, SenderID: alice.ID, RecipientID: bob.ID, IsRead: true}, nil).Once()

		second, err := svc.MarkRead(ctx, 5, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		msgs.AssertNumberOfCalls(t, "MarkRead", 1)
	})
}

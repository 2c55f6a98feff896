package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dmchat/internal/domain"
	"dmchat/internal/mocks"
	"dmchat/internal/service"
)

func msg(id, from, to int64, content string, read bool) *domain.Message {
	return &domain.Message{ID: id, SenderID: from, RecipientID: to, Content: content, IsRead: read}
}

func TestLatestPerPartner(t *testing.T) {
	// newest first, partners interleaved and in both directions
	msgs := []*domain.Message{
		msg(6, carol.ID, alice.ID, "c3", false),
		msg(5, alice.ID, bob.ID, "b3", false),
		msg(4, carol.ID, alice.ID, "c2", true),
		msg(3, bob.ID, alice.ID, "b2", false),
		msg(2, alice.ID, carol.ID, "c1", false),
		msg(1, bob.ID, alice.ID, "b1", false),
	}

	got := service.LatestPerPartner(alice.ID, msgs)
	require.Len(t, got, 2)

	assert.Equal(t, carol.ID, got[0].PartnerID)
	assert.Equal(t, "c3", got[0].LastMessage.Content)
	assert.Equal(t, 1, got[0].UnreadCount)

	assert.Equal(t, bob.ID, got[1].PartnerID)
	assert.Equal(t, "b3", got[1].LastMessage.Content)
	assert.Equal(t, 2, got[1].UnreadCount)
}

func TestLatestPerPartnerEmpty(t *testing.T) {
	assert.Empty(t, service.LatestPerPartner(alice.ID, nil))
}

func TestLatestPerPartnerIgnoresForeignMessages(t *testing.T) {
	got := service.LatestPerPartner(alice.ID, []*domain.Message{
		msg(2, bob.ID, carol.ID, "not mine", false),
		msg(1, bob.ID, alice.ID, "mine", false),
	})
	require.Len(t, got, 1)
	assert.Equal(t, "mine", got[0].LastMessage.Content)
}

func TestListConversations(t *testing.T) {
	msgs := new(mocks.MessageRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	knownUsers(users, alice, bob)
	svc := service.NewConversationService(msgs, users, nil)

	msgs.On("ListForUser", mock.Anything, alice.ID).Return([]*domain.Message{
		msg(2, bob.ID, alice.ID, "hello", false),
		msg(1, alice.ID, bob.ID, "hi", false),
	}, nil).Once()

	convs, err := svc.ListConversations(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "bob", convs[0].User.Username)
	assert.Equal(t, "hello", convs[0].LastMessage.Content)
	assert.Equal(t, "bob", convs[0].LastMessage.Sender.Username)
	assert.Equal(t, 1, convs[0].UnreadCount)
	msgs.AssertExpectations(t)
}

func TestListConversationsSkipsMissingPartner(t *testing.T) {
	msgs := new(mocks.MessageRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	knownUsers(users, alice, bob)
	users.On("GetByID", mock.Anything, int64(42)).Return(nil, domain.ErrNotFound).Once()
	svc := service.NewConversationService(msgs, users, nil)

	msgs.On("ListForUser", mock.Anything, alice.ID).Return([]*domain.Message{
		msg(2, 42, alice.ID, "ghost", false),
		msg(1, alice.ID, bob.ID, "hi", false),
	}, nil).Once()

	convs, err := svc.ListConversations(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, bob.ID, convs[0].User.ID)
}

func TestListConversationsStoreError(t *testing.T) {
	msgs := new(mocks.MessageRepositoryMock)
	svc := service.NewConversationService(msgs, new(mocks.UserRepositoryMock), nil)
	msgs.On("ListForUser", mock.Anything, alice.ID).Return(nil, assert.AnError).Once()

	_, err := svc.ListConversations(context.Background(), alice.ID)
	assert.ErrorIs(t, err, assert.AnError)
}

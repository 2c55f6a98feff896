package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dmchat/internal/domain"
)

type UserRepositoryMock struct {
	mock.Mock
}

var _ domain.UserRepository = (*UserRepositoryMock)(nil)

func (m *UserRepositoryMock) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserRepositoryMock) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserRepositoryMock) ListAllExcept(ctx context.Context, id int64) ([]*domain.User, error) {
	args := m.Called(ctx, id)
	var users []*domain.User
	if val := args.Get(0); val != nil {
		users = val.([]*domain.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfileImage(ctx context.Context, id int64, path string) error {
	args := m.Called(ctx, id, path)
	return args.Error(0)
}

func userOrNil(v any) *domain.User {
	if v == nil {
		return nil
	}
	return v.(*domain.User)
}

type MessageRepositoryMock struct {
	mock.Mock
}

var _ domain.MessageRepository = (*MessageRepositoryMock)(nil)

func (m *MessageRepositoryMock) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MessageRepositoryMock) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	args := m.Called(ctx, id)
	var msg *domain.Message
	if val := args.Get(0); val != nil {
		msg = val.(*domain.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListBetween(ctx context.Context, a, b int64) ([]*domain.Message, error) {
	args := m.Called(ctx, a, b)
	return messagesOrNil(args.Get(0)), args.Error(1)
}

func (m *MessageRepositoryMock) ListForUser(ctx context.Context, userID int64) ([]*domain.Message, error) {
	args := m.Called(ctx, userID)
	return messagesOrNil(args.Get(0)), args.Error(1)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func messagesOrNil(v any) []*domain.Message {
	if v == nil {
		return nil
	}
	return v.([]*domain.Message)
}

package service

import (
	"context"
	"fmt"

	"dmchat/internal/domain"
)

// UserService provides user-related operations.
type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListContacts returns every user except userID, ordered by username.
func (s *UserService) ListContacts(ctx context.Context, userID int64) ([]*domain.User, error) {
	return s.users.ListAllExcept(ctx, userID)
}

// SetProfileImage records the avatar path of a user and returns the updated user.
func (s *UserService) SetProfileImage(ctx context.Context, userID int64, path string) (*domain.User, error) {
	if err := s.users.UpdateProfileImage(ctx, userID, path); err != nil {
		return nil, fmt.Errorf("set profile image: %w", err)
	}
	return s.users.GetByID(ctx, userID)
}

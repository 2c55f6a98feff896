package domain

import (
	"context"
)

// UserRepository defines persistence operations for users.
// Lookups return ErrNotFound when no user matches and Create returns
// ErrConflict when the username or email is already taken.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListAllExcept(ctx context.Context, id int64) ([]*User, error)
	UpdateProfileImage(ctx context.Context, id int64, path string) error
}

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	// Create stores m and fills in its ID and CreatedAt.
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id int64) (*Message, error)
	// ListBetween returns the messages exchanged by a and b in either
	// direction, oldest first, ties broken by ascending id.
	ListBetween(ctx context.Context, a, b int64) ([]*Message, error)
	// ListForUser returns every message sent or received by userID,
	// newest first, ties broken by descending id.
	ListForUser(ctx context.Context, userID int64) ([]*Message, error)
	MarkRead(ctx context.Context, id int64) error
}

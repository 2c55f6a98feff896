package service

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"dmchat/internal/domain"
	"dmchat/internal/security"
)

// UserSummary is the display subset of a user embedded in message responses.
type UserSummary struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

// MessageView is a decrypted message with sender and recipient resolved.
type MessageView struct {
	ID        int64       `json:"id"`
	Sender    UserSummary `json:"sender"`
	Recipient UserSummary `json:"recipient"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	Read      bool        `json:"read"`
}

// renderer turns stored messages into views. Participants are looked up live
// in the user repository, at most once per id per renderer.
type renderer struct {
	users     domain.UserRepository
	encryptor *security.Encryptor
	seen      map[int64]*domain.User
}

func newRenderer(users domain.UserRepository, encryptor *security.Encryptor) *renderer {
	return &renderer{users: users, encryptor: encryptor, seen: make(map[int64]*domain.User)}
}

// user returns the user with id, or nil if it no longer exists.
func (r *renderer) user(ctx context.Context, id int64) (*domain.User, error) {
	if u, ok := r.seen[id]; ok {
		return u, nil
	}
	u, err := r.users.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		u, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.seen[id] = u
	return u, nil
}

func (r *renderer) summary(ctx context.Context, id int64) (UserSummary, error) {
	u, err := r.user(ctx, id)
	if err != nil {
		return UserSummary{}, err
	}
	if u == nil {
		return UserSummary{ID: id}, nil
	}
	return UserSummary{ID: u.ID, Username: u.Username, ProfileImage: u.ProfileImage}, nil
}

func (r *renderer) content(m *domain.Message) string {
	if r.encryptor == nil {
		return m.Content
	}
	plain, err := r.encryptor.Decrypt(m.Content)
	if err != nil {
		// Rows written before encryption was enabled are plain text. A rotated
		// key lands here too, so say so.
		log.Warn("message content not decryptable, returning stored value", "message_id", m.ID, "err", err)
		return m.Content
	}
	return plain
}

func (r *renderer) message(ctx context.Context, m *domain.Message) (*MessageView, error) {
	sender, err := r.summary(ctx, m.SenderID)
	if err != nil {
		return nil, err
	}
	recipient, err := r.summary(ctx, m.RecipientID)
	if err != nil {
		return nil, err
	}
	return &MessageView{
		ID:        m.ID,
		Sender:    sender,
		Recipient: recipient,
		Content:   r.content(m),
		CreatedAt: m.CreatedAt,
		Read:      m.IsRead,
	}, nil
}

func (r *renderer) messages(ctx context.Context, msgs []*domain.Message) ([]*MessageView, error) {
	res := make([]*MessageView, 0, len(msgs))
	for _, m := range msgs {
		v, err := r.message(ctx, m)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

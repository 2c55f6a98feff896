package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"dmchat/internal/domain"
	"dmchat/internal/security"
)

// DefaultMaxMessageLength bounds message content, in characters.
const DefaultMaxMessageLength = 1000

type MessageService struct {
	messages  domain.MessageRepository
	users     domain.UserRepository
	encryptor *security.Encryptor

	MaxMessageLength int
}

// NewMessageService builds the message store service. encryptor may be nil,
// in which case content is stored as plain text.
func NewMessageService(
	messages domain.MessageRepository,
	users domain.UserRepository,
	encryptor *security.Encryptor,
	maxLength int,
) *MessageService {
	if maxLength <= 0 {
		maxLength = DefaultMaxMessageLength
	}
	return &MessageService{
		messages:         messages,
		users:            users,
		encryptor:        encryptor,
		MaxMessageLength: maxLength,
	}
}

type MessageCreateInput struct {
	RecipientID int64
	Content     string
}

// Send stores a message from senderID and returns it with both parties resolved.
func (s *MessageService) Send(ctx context.Context, senderID int64, in MessageCreateInput) (*MessageView, error) {
	if senderID == in.RecipientID {
		return nil, domain.ErrSelfMessage
	}
	if in.RecipientID <= 0 {
		return nil, fmt.Errorf("%w: recipient and content are required", domain.ErrInvalidInput)
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content cannot be empty", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.Content) > s.MaxMessageLength {
		return nil, fmt.Errorf("%w: message too long (max %d characters)", domain.ErrInvalidInput, s.MaxMessageLength)
	}

	if _, err := s.users.GetByID(ctx, in.RecipientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("recipient %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get recipient: %w", err)
	}

	stored := content
	if s.encryptor != nil {
		enc, err := s.encryptor.Encrypt(content)
		if err != nil {
			return nil, fmt.Errorf("encrypt content: %w", err)
		}
		stored = enc
	}

	msg := &domain.Message{
		SenderID:    senderID,
		RecipientID: in.RecipientID,
		Content:     stored,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return newRenderer(s.users, s.encryptor).message(ctx, msg)
}

// Conversation returns every message exchanged by userID and partnerID,
// oldest first.
func (s *MessageService) Conversation(ctx context.Context, userID, partnerID int64) ([]*MessageView, error) {
	msgs, err := s.messages.ListBetween(ctx, userID, partnerID)
	if err != nil {
		return nil, err
	}
	return newRenderer(s.users, s.encryptor).messages(ctx, msgs)
}

// MarkRead flags a message as read on behalf of its recipient. Marking an
// already-read message is a no-op.
func (s *MessageService) MarkRead(ctx context.Context, messageID, actingUserID int64) (*MessageView, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("message %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	if msg.RecipientID != actingUserID {
		return nil, fmt.Errorf("%w: only the recipient can mark a message as read", domain.ErrForbidden)
	}
	if !msg.IsRead {
		if err := s.messages.MarkRead(ctx, messageID); err != nil {
			return nil, fmt.Errorf("mark read: %w", err)
		}
		msg.IsRead = true
	}
	return newRenderer(s.users, s.encryptor).message(ctx, msg)
}

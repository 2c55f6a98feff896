package service

import (
	"context"

	"github.com/charmbracelet/log"

	"dmchat/internal/domain"
	"dmchat/internal/security"
)

// PartnerSummary is the raw aggregate for one conversation partner.
type PartnerSummary struct {
	PartnerID   int64
	LastMessage *domain.Message
	UnreadCount int
}

// LatestPerPartner groups the messages of userID by conversation partner.
// msgs must be ordered newest first; the first message seen for a partner is
// its most recent one, and partners are returned in that same order. Unread
// counts only messages addressed to userID.
func LatestPerPartner(userID int64, msgs []*domain.Message) []PartnerSummary {
	index := make(map[int64]int)
	res := make([]PartnerSummary, 0)
	for _, m := range msgs {
		if !m.Involves(userID) {
			continue
		}
		partner := m.PartnerOf(userID)
		i, ok := index[partner]
		if !ok {
			i = len(res)
			index[partner] = i
			res = append(res, PartnerSummary{PartnerID: partner, LastMessage: m})
		}
		if m.RecipientID == userID && !m.IsRead {
			res[i].UnreadCount++
		}
	}
	return res
}

// ConversationView is one entry of a user's conversation list.
type ConversationView struct {
	User        *domain.User `json:"user"`
	LastMessage *MessageView `json:"lastMessage"`
	UnreadCount int          `json:"unreadCount"`
}

// ConversationService derives conversation summaries from the message store.
// Nothing is materialized: every call rescans the user's messages.
type ConversationService struct {
	messages  domain.MessageRepository
	users     domain.UserRepository
	encryptor *security.Encryptor
}

func NewConversationService(
	messages domain.MessageRepository,
	users domain.UserRepository,
	encryptor *security.Encryptor,
) *ConversationService {
	return &ConversationService{
		messages:  messages,
		users:     users,
		encryptor: encryptor,
	}
}

// ListConversations returns one entry per partner of userID, most recently
// active first.
func (s *ConversationService) ListConversations(ctx context.Context, userID int64) ([]*ConversationView, error) {
	msgs, err := s.messages.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	r := newRenderer(s.users, s.encryptor)
	res := make([]*ConversationView, 0)
	for _, p := range LatestPerPartner(userID, msgs) {
		partner, err := r.user(ctx, p.PartnerID)
		if err != nil {
			return nil, err
		}
		if partner == nil {
			log.Warn("conversation partner missing", "user_id", userID, "partner_id", p.PartnerID)
			continue
		}
		last, err := r.message(ctx, p.LastMessage)
		if err != nil {
			return nil, err
		}
		res = append(res, &ConversationView{
			User:        partner,
			LastMessage: last,
			UnreadCount: p.UnreadCount,
		})
	}
	return res, nil
}

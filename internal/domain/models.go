package domain

import "time"

// User represents a registered account.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	ProfileImage   *string   `db:"profile_image" json:"profileImage,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// Message is a single direct message between two users.
type Message struct {
	ID          int64     `db:"id"`
	SenderID    int64     `db:"sender_id"`
	RecipientID int64     `db:"recipient_id"`
	Content     string    `db:"content"` // encrypted at rest when an encryption key is configured
	CreatedAt   time.Time `db:"created_at"`
	IsRead      bool      `db:"is_read"`
}

// PartnerOf returns the other participant of m relative to userID.
func (m *Message) PartnerOf(userID int64) int64 {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}

// Involves reports whether userID is the sender or the recipient of m.
func (m *Message) Involves(userID int64) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

package models

import "time"

// Message is a targeted note from an ambassador to one participant.
type Message struct {
	ID          string     `db:"id" json:"id"`
	SenderID    string     `db:"sender_id" json:"sender_id"`
	RecipientID string     `db:"recipient_id" json:"recipient_id"`
	Subject     string     `db:"subject" json:"subject"`
	Body        string     `db:"body" json:"body"`
	IsRead      bool       `db:"is_read" json:"is_read"`
	ReadAt      *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Broadcast is a message from an ambassador to every participant. Read state
// lives in broadcast_reads.
type Broadcast struct {
	ID        string    `db:"id" json:"id"`
	SenderID  string    `db:"sender_id" json:"sender_id"`
	Subject   string    `db:"subject" json:"subject"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// InboxKind distinguishes inbox entries.
type InboxKind string

const (
	InboxKindMessage   InboxKind = "message"
	InboxKindBroadcast InboxKind = "broadcast"
)

// InboxItem merges messages and broadcasts for one recipient.
type InboxItem struct {
	ID         string     `db:"id" json:"id"`
	Kind       InboxKind  `db:"kind" json:"kind"`
	SenderID   string     `db:"sender_id" json:"sender_id"`
	SenderName string     `db:"sender_name" json:"sender_name"`
	Subject    string     `db:"subject" json:"subject"`
	Body       string     `db:"body" json:"body"`
	IsRead     bool       `db:"is_read" json:"is_read"`
	ReadAt     *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// UnreadCount splits unread totals by kind.
type UnreadCount struct {
	Messages   int `db:"messages" json:"messages"`
	Broadcasts int `db:"broadcasts" json:"broadcasts"`
	Total      int `db:"-" json:"total"`
}

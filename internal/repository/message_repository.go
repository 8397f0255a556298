package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
)

// MessageRepository persists messages, broadcasts and their read state.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs the repository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreateMessage inserts a targeted message.
func (r *MessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = newID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO messages (id, sender_id, recipient_id, subject, body, is_read, created_at) VALUES (:id, :sender_id, :recipient_id, :subject, :body, FALSE, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// CreateBroadcast inserts a broadcast.
func (r *MessageRepository) CreateBroadcast(ctx context.Context, broadcast *models.Broadcast) error {
	if broadcast.ID == "" {
		broadcast.ID = newID()
	}
	if broadcast.CreatedAt.IsZero() {
		broadcast.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO broadcasts (id, sender_id, subject, body, created_at) VALUES (:id, :sender_id, :subject, :body, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, broadcast); err != nil {
		return fmt.Errorf("create broadcast: %w", err)
	}
	return nil
}

// Inbox merges the recipient's messages and every broadcast, newest first.
func (r *MessageRepository) Inbox(ctx context.Context, userID string, limit int) ([]models.InboxItem, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf(`
SELECT * FROM (
	SELECT m.id, 'message' AS kind, m.sender_id, p.full_name AS sender_name, m.subject, m.body, m.is_read, m.read_at, m.created_at
	FROM messages m JOIN profiles p ON p.id = m.sender_id
	WHERE m.recipient_id = $1
	UNION ALL
	SELECT b.id, 'broadcast' AS kind, b.sender_id, p.full_name AS sender_name, b.subject, b.body, (br.read_at IS NOT NULL) AS is_read, br.read_at, b.created_at
	FROM broadcasts b JOIN profiles p ON p.id = b.sender_id
	LEFT JOIN broadcast_reads br ON br.broadcast_id = b.id AND br.user_id = $1
) inbox
ORDER BY created_at DESC
LIMIT %d`, limit)
	var items []models.InboxItem
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return items, nil
}

// MarkRead flags a message as read. It reports whether a message owned by
// the recipient was found.
func (r *MessageRepository) MarkRead(ctx context.Context, id, recipientID string, at time.Time) (bool, error) {
	const query = `UPDATE messages SET is_read = TRUE, read_at = COALESCE(read_at, $3) WHERE id = $1 AND recipient_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, recipientID, at)
	if err != nil {
		return false, fmt.Errorf("mark message read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark message read: %w", err)
	}
	return affected > 0, nil
}

// MarkBroadcastRead records that userID has read a broadcast. It reports
// whether the broadcast exists.
func (r *MessageRepository) MarkBroadcastRead(ctx context.Context, broadcastID, userID string, at time.Time) (bool, error) {
	const query = `INSERT INTO broadcast_reads (broadcast_id, user_id, read_at)
SELECT id, $2, $3 FROM broadcasts WHERE id = $1
ON CONFLICT (broadcast_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, broadcastID, userID, at); err != nil {
		return false, fmt.Errorf("mark broadcast read: %w", err)
	}
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM broadcasts WHERE id = $1)`, broadcastID); err != nil {
		return false, fmt.Errorf("check broadcast: %w", err)
	}
	return exists, nil
}

// UnreadCount returns unread totals for the recipient.
func (r *MessageRepository) UnreadCount(ctx context.Context, userID string) (*models.UnreadCount, error) {
	const query = `
SELECT
	(SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND is_read = FALSE) AS messages,
	(SELECT COUNT(*) FROM broadcasts b WHERE NOT EXISTS (
		SELECT 1 FROM broadcast_reads br WHERE br.broadcast_id = b.id AND br.user_id = $1
	)) AS broadcasts`
	var count models.UnreadCount
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	count.Total = count.Messages + count.Broadcasts
	return &count, nil
}

// ABOUTME: Chat message storage operations for SQLite
// ABOUTME: Append-only rows grouped by conversation ID and ordered by creation time
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harper/nutricoach/internal/models"
	"github.com/harper/nutricoach/internal/util"
)

// appendAttempts bounds retries of an append that hit SQLITE_BUSY
const appendAttempts = 3

// MessageStore handles chat message persistence
type MessageStore struct {
	db *DB
}

// NewMessageStore creates a new MessageStore
func NewMessageStore(db *DB) *MessageStore {
	return &MessageStore{db: db}
}

// Append inserts a message row and sets its ID and creation time
func (s *MessageStore) Append(ctx context.Context, msg *models.ChatMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	var (
		result sql.Result
		err    error
	)
	for attempt := 1; attempt <= appendAttempts; attempt++ {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO chat_messages (conversation_id, user_id, content, sender, sender_name, title, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, msg.ConversationID, msg.UserID, msg.Content, string(msg.Sender),
			nullString(msg.SenderName), nullString(msg.Title), msg.CreatedAt.UnixNano())
		if err == nil || !IsConflictError(err) || attempt == appendAttempts {
			break
		}
		if err := util.SleepContext(ctx, util.CalculateBackoff(25*time.Millisecond, attempt)); err != nil {
			return err
		}
	}
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get message id: %w", err)
	}
	msg.ID = id
	return nil
}

// List retrieves all rows of a conversation in creation order
func (s *MessageStore) List(ctx context.Context, userID, conversationID string) ([]models.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, sender, sender_name, title, created_at
		FROM chat_messages
		WHERE user_id = ? AND conversation_id = ?
		ORDER BY created_at ASC, id ASC
	`, userID, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []models.ChatMessage
	for rows.Next() {
		var (
			msg        = models.ChatMessage{UserID: userID, ConversationID: conversationID}
			sender     string
			senderName sql.NullString
			title      sql.NullString
			createdAt  int64
		)
		if err := rows.Scan(&msg.ID, &msg.Content, &sender, &senderName, &title, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		msg.Sender = models.Sender(sender)
		msg.SenderName = senderName.String
		msg.Title = title.String
		msg.CreatedAt = fromUnixNano(createdAt)
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// Recent returns one summary per conversation built from its latest row,
// titled from its first row, newest conversation first
func (s *MessageStore) Recent(ctx context.Context, userID string, limit int) ([]models.Conversation, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.conversation_id, m.content, m.sender, m.created_at,
		       COALESCE((
		           SELECT t.title FROM chat_messages t
		           WHERE t.user_id = m.user_id AND t.conversation_id = m.conversation_id
		           ORDER BY t.created_at ASC, t.id ASC
		           LIMIT 1
		       ), '') AS title
		FROM (
		    SELECT id, user_id, conversation_id, content, sender, created_at,
		           ROW_NUMBER() OVER (
		               PARTITION BY conversation_id
		               ORDER BY created_at DESC, id DESC
		           ) AS rn
		    FROM chat_messages
		    WHERE user_id = ?
		) m
		WHERE m.rn = 1
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var conversations []models.Conversation
	for rows.Next() {
		var (
			conv      = models.Conversation{UserID: userID}
			sender    string
			createdAt int64
		)
		if err := rows.Scan(&conv.ID, &conv.LastMessage, &sender, &createdAt, &conv.Title); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		conv.LastSender = models.Sender(sender)
		conv.UpdatedAt = fromUnixNano(createdAt)
		if conv.Title == "" {
			conv.Title = models.DefaultTitle
		}
		conversations = append(conversations, conv)
	}

	return conversations, rows.Err()
}

// Delete removes every row of a conversation
func (s *MessageStore) Delete(ctx context.Context, userID, conversationID string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM chat_messages WHERE user_id = ? AND conversation_id = ?`, userID, conversationID)
	if err != nil {
		return 0, fmt.Errorf("delete conversation: %w", err)
	}
	return result.RowsAffected()
}

// ABOUTME: ConversationManager appends chat rows and reads conversation history
// ABOUTME: Mints conversation IDs and derives titles for new conversations only
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harper/nutricoach/internal/logging"
	"github.com/harper/nutricoach/internal/models"
	"github.com/harper/nutricoach/internal/storage"
	"go.uber.org/zap"
)

// CoachDisplayName is stored as the sender name on coach rows
const CoachDisplayName = "NutriCoach"

// Message is a caller-facing chat message
type Message struct {
	Role    models.Role `json:"role"`
	Content string      `json:"content"`
	// Title overrides the title stored on this row
	Title string `json:"title,omitempty"`
}

// StoreResult reports the outcome of StoreMessage.
// ConversationID is set even when the write failed.
type StoreResult struct {
	ConversationID string `json:"conversation_id"`
	MessageID      int64  `json:"message_id,omitempty"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

// ConversationManager persists conversations through a storage.MessageStore
type ConversationManager struct {
	store  storage.MessageStore
	logger *zap.Logger
	newID  func() string
}

// NewConversationManager creates a manager over store
func NewConversationManager(store storage.MessageStore, logger *zap.Logger) *ConversationManager {
	return &ConversationManager{
		store:  store,
		logger: logging.OrNop(logger),
		newID:  uuid.NewString,
	}
}

// StoreMessage appends one row. An empty conversationID starts a new conversation
// titled from this message.
func (m *ConversationManager) StoreMessage(ctx context.Context, userID, conversationID string, msg Message) StoreResult {
	row := &models.ChatMessage{
		ConversationID: conversationID,
		UserID:         userID,
		Content:        msg.Content,
	}
	if row.ConversationID == "" {
		row.ConversationID = m.newID()
		row.Title = models.DeriveTitle(msg.Content)
	}
	if msg.Title != "" {
		row.Title = msg.Title
	}

	result := StoreResult{ConversationID: row.ConversationID}

	sender, err := models.SenderForRole(msg.Role)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	row.Sender = sender
	if sender == models.SenderCoach {
		row.SenderName = CoachDisplayName
	}

	if err := m.store.AppendMessage(ctx, row); err != nil {
		m.logger.Error("failed to store message",
			zap.String("user_id", userID),
			zap.String("conversation_id", row.ConversationID),
			zap.String("role", string(msg.Role)),
			zap.Error(err),
		)
		result.Error = err.Error()
		return result
	}

	result.MessageID = row.ID
	result.Success = true
	return result
}

// FetchMessages returns a conversation's messages oldest first
func (m *ConversationManager) FetchMessages(ctx context.Context, userID, conversationID string) ([]models.ChatMessage, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if conversationID == "" {
		return nil, errors.New("conversation ID is required")
	}
	msgs, err := m.store.ListMessages(ctx, userID, conversationID)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	return msgs, nil
}

// FetchRecentConversations returns one summary per conversation, newest first
func (m *ConversationManager) FetchRecentConversations(ctx context.Context, userID string, limit int) ([]models.Conversation, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	convs, err := m.store.ListRecentConversations(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch recent conversations: %w", err)
	}
	return convs, nil
}

// DeleteConversation removes every message of a conversation and returns how many were removed
func (m *ConversationManager) DeleteConversation(ctx context.Context, userID, conversationID string) (int64, error) {
	if userID == "" {
		return 0, ErrUnauthenticated
	}
	if conversationID == "" {
		return 0, errors.New("conversation ID is required")
	}
	n, err := m.store.DeleteConversation(ctx, userID, conversationID)
	if err != nil {
		return 0, fmt.Errorf("delete conversation: %w", err)
	}
	m.logger.Info("conversation deleted",
		zap.String("user_id", userID),
		zap.String("conversation_id", conversationID),
		zap.Int64("messages", n),
	)
	return n, nil
}

// ABOUTME: Storage contracts consumed by the coach pipeline, CLI and API
// ABOUTME: Health reads/writes, chat message rows and login sessions
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/harper/nutricoach/internal/models"
)

// ErrNotFound is returned when a keyed record does not exist
var ErrNotFound = errors.New("not found")

// HealthReader exposes the six read queries behind the health context.
// Singleton reads return (nil, nil) when the user has no row.
type HealthReader interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	GetHealthMetrics(ctx context.Context, userID string) (*models.HealthMetrics, error)
	GetDailyTracking(ctx context.Context, userID, date string) (*models.DailyTracking, error)

	// ListDietEntries returns entries logged at or after since, most recent first
	ListDietEntries(ctx context.Context, userID string, since time.Time, limit int) ([]models.DietEntry, error)

	// ListHabits returns habits logged at or after since, most recent first
	ListHabits(ctx context.Context, userID string, since time.Time) ([]models.Habit, error)

	// ListUpcomingReminders returns incomplete reminders due on or after fromDate, ascending
	ListUpcomingReminders(ctx context.Context, userID, fromDate string) ([]models.Reminder, error)
}

// HealthWriter records health data. Entries are independent single-row writes.
type HealthWriter interface {
	SaveProfile(ctx context.Context, profile *models.Profile) error
	SaveHealthMetrics(ctx context.Context, metrics *models.HealthMetrics) error
	SaveDailyTracking(ctx context.Context, tracking *models.DailyTracking) error
	AddDietEntry(ctx context.Context, entry *models.DietEntry) error
	AddHabit(ctx context.Context, habit *models.Habit) error
	AddReminder(ctx context.Context, reminder *models.Reminder) error
	CompleteReminder(ctx context.Context, userID, reminderID string) error
}

// MessageStore persists conversation rows
type MessageStore interface {
	// AppendMessage inserts one row and sets msg.ID
	AppendMessage(ctx context.Context, msg *models.ChatMessage) error

	// ListMessages returns a conversation's rows ordered by creation time
	ListMessages(ctx context.Context, userID, conversationID string) ([]models.ChatMessage, error)

	// ListRecentConversations returns one summary per conversation, newest first
	ListRecentConversations(ctx context.Context, userID string, limit int) ([]models.Conversation, error)

	// DeleteConversation removes every row of a conversation and returns the row count
	DeleteConversation(ctx context.Context, userID, conversationID string) (int64, error)
}

// Session maps an opaque bearer token to a user
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore resolves login sessions
type SessionStore interface {
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (*Session, error)

	// LookupSession returns ErrNotFound for unknown or expired tokens
	LookupSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
}

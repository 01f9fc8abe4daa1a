// ABOUTME: Unified Storage layer that wraps all SQLite stores
// ABOUTME: Implements the health, message and session contracts over one database
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/harper/nutricoach/internal/models"
	"github.com/harper/nutricoach/internal/storage"
)

var (
	_ storage.HealthReader = (*Storage)(nil)
	_ storage.HealthWriter = (*Storage)(nil)
	_ storage.MessageStore = (*Storage)(nil)
	_ storage.SessionStore = (*Storage)(nil)
)

// Storage manages all persistent coach data using SQLite
type Storage struct {
	db        *DB
	profiles  *ProfileStore
	tracking  *TrackingStore
	entries   *EntryStore
	reminders *ReminderStore
	messages  *MessageStore
	sessions  *SessionStore
}

// NewStorage initializes storage at the default XDG path
func NewStorage() (*Storage, error) {
	return NewStorageWithPath(DefaultDBPath())
}

// NewStorageWithPath initializes storage with a custom database path
func NewStorageWithPath(dbPath string) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	return &Storage{
		db:        db,
		profiles:  NewProfileStore(db),
		tracking:  NewTrackingStore(db),
		entries:   NewEntryStore(db),
		reminders: NewReminderStore(db),
		messages:  NewMessageStore(db),
		sessions:  NewSessionStore(db),
	}
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping verifies database connectivity
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// --- Health reads ---

// GetProfile loads a user's profile
func (s *Storage) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.profiles.Get(ctx, userID)
}

// GetHealthMetrics loads a user's body metrics
func (s *Storage) GetHealthMetrics(ctx context.Context, userID string) (*models.HealthMetrics, error) {
	return s.profiles.GetMetrics(ctx, userID)
}

// GetDailyTracking loads the tracking row for one calendar day
func (s *Storage) GetDailyTracking(ctx context.Context, userID, date string) (*models.DailyTracking, error) {
	return s.tracking.Get(ctx, userID, date)
}

// ListDietEntries lists water and meal entries since a time
func (s *Storage) ListDietEntries(ctx context.Context, userID string, since time.Time, limit int) ([]models.DietEntry, error) {
	return s.entries.ListDietEntries(ctx, userID, since, limit)
}

// ListHabits lists habits since a time
func (s *Storage) ListHabits(ctx context.Context, userID string, since time.Time) ([]models.Habit, error) {
	return s.entries.ListHabits(ctx, userID, since)
}

// ListUpcomingReminders lists incomplete reminders due on or after a day
func (s *Storage) ListUpcomingReminders(ctx context.Context, userID, fromDate string) ([]models.Reminder, error) {
	return s.reminders.ListUpcoming(ctx, userID, fromDate)
}

// --- Health writes ---

// SaveProfile upserts a profile, stamping UpdatedAt
func (s *Storage) SaveProfile(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	return s.profiles.Save(ctx, profile)
}

// SaveHealthMetrics upserts body metrics, stamping UpdatedAt
func (s *Storage) SaveHealthMetrics(ctx context.Context, metrics *models.HealthMetrics) error {
	metrics.UpdatedAt = time.Now().UTC()
	return s.profiles.SaveMetrics(ctx, metrics)
}

// SaveDailyTracking upserts a day's tracking row
func (s *Storage) SaveDailyTracking(ctx context.Context, tracking *models.DailyTracking) error {
	return s.tracking.Save(ctx, tracking)
}

// AddDietEntry records a water or meal entry
func (s *Storage) AddDietEntry(ctx context.Context, entry *models.DietEntry) error {
	return s.entries.AddDietEntry(ctx, entry)
}

// AddHabit records a habit
func (s *Storage) AddHabit(ctx context.Context, habit *models.Habit) error {
	return s.entries.AddHabit(ctx, habit)
}

// AddReminder records a reminder
func (s *Storage) AddReminder(ctx context.Context, reminder *models.Reminder) error {
	return s.reminders.Add(ctx, reminder)
}

// CompleteReminder marks a reminder done
func (s *Storage) CompleteReminder(ctx context.Context, userID, reminderID string) error {
	return s.reminders.Complete(ctx, userID, reminderID)
}

// --- Conversations ---

// AppendMessage inserts a chat row
func (s *Storage) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	return s.messages.Append(ctx, msg)
}

// ListMessages lists a conversation's rows in creation order
func (s *Storage) ListMessages(ctx context.Context, userID, conversationID string) ([]models.ChatMessage, error) {
	return s.messages.List(ctx, userID, conversationID)
}

// ListRecentConversations summarizes a user's conversations, newest first
func (s *Storage) ListRecentConversations(ctx context.Context, userID string, limit int) ([]models.Conversation, error) {
	return s.messages.Recent(ctx, userID, limit)
}

// DeleteConversation removes a conversation's rows
func (s *Storage) DeleteConversation(ctx context.Context, userID, conversationID string) (int64, error) {
	return s.messages.Delete(ctx, userID, conversationID)
}

// --- Sessions ---

// CreateSession issues a session token
func (s *Storage) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*storage.Session, error) {
	return s.sessions.Create(ctx, userID, ttl)
}

// LookupSession resolves an unexpired session token
func (s *Storage) LookupSession(ctx context.Context, token string) (*storage.Session, error) {
	return s.sessions.Lookup(ctx, token)
}

// DeleteSession revokes a session token
func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

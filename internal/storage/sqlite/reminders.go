// ABOUTME: Reminder storage operations for SQLite
// ABOUTME: Upcoming reminders are incomplete and due on or after a calendar day
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harper/nutricoach/internal/models"
	"github.com/harper/nutricoach/internal/storage"
)

// ReminderStore handles reminder persistence
type ReminderStore struct {
	db *DB
}

// NewReminderStore creates a new ReminderStore
func NewReminderStore(db *DB) *ReminderStore {
	return &ReminderStore{db: db}
}

// Add inserts a reminder, assigning an ID if missing
func (s *ReminderStore) Add(ctx context.Context, reminder *models.Reminder) error {
	if reminder.Title == "" {
		return errors.New("reminder title cannot be empty")
	}
	if _, err := time.Parse(models.DateLayout, reminder.DueDate); err != nil {
		return fmt.Errorf("reminder due date must be YYYY-MM-DD: %w", err)
	}
	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (id, user_id, title, due_date, due_time, completed)
		VALUES (?, ?, ?, ?, ?, ?)
	`, reminder.ID, reminder.UserID, reminder.Title, reminder.DueDate, nullString(reminder.DueTime), reminder.Completed)
	if err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}
	return nil
}

// Complete marks a reminder done
func (s *ReminderStore) Complete(ctx context.Context, userID, reminderID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET completed = 1 WHERE user_id = ? AND id = ?`, userID, reminderID)
	if err != nil {
		return fmt.Errorf("complete reminder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("reminder %s: %w", reminderID, storage.ErrNotFound)
	}
	return nil
}

// ListUpcoming returns incomplete reminders due on or after fromDate, ascending
func (s *ReminderStore) ListUpcoming(ctx context.Context, userID, fromDate string) ([]models.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, due_date, due_time
		FROM reminders
		WHERE user_id = ? AND completed = 0 AND due_date >= ?
		ORDER BY due_date ASC, COALESCE(due_time, '') ASC, id ASC
	`, userID, fromDate)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reminders []models.Reminder
	for rows.Next() {
		var (
			reminder = models.Reminder{UserID: userID}
			dueTime  sql.NullString
		)
		if err := rows.Scan(&reminder.ID, &reminder.Title, &reminder.DueDate, &dueTime); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminder.DueTime = dueTime.String
		reminders = append(reminders, reminder)
	}

	return reminders, rows.Err()
}

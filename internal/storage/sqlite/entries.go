// ABOUTME: Diet entry and habit storage operations for SQLite
// ABOUTME: Append-only logs queried over a trailing time window, newest first
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harper/nutricoach/internal/models"
)

// EntryStore handles diet entry and habit persistence
type EntryStore struct {
	db *DB
}

// NewEntryStore creates a new EntryStore
func NewEntryStore(db *DB) *EntryStore {
	return &EntryStore{db: db}
}

// AddDietEntry inserts a water or meal entry, assigning an ID and timestamp if missing
func (s *EntryStore) AddDietEntry(ctx context.Context, entry *models.DietEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now().UTC()
	}

	var calories, protein, carbs, fat interface{}
	if n := entry.Nutrition; n != nil {
		calories, protein, carbs, fat = n.Calories, n.Protein, n.Carbs, n.Fat
	}

	var waterML interface{}
	if entry.Type == models.EntryWater {
		waterML = entry.WaterML
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diet_entries (id, user_id, entry_type, meal_type, description, water_ml,
		                          calories, protein, carbs, fat, logged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.UserID, string(entry.Type), nullString(entry.MealType), nullString(entry.Description),
		waterML, calories, protein, carbs, fat, entry.LoggedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert diet entry: %w", err)
	}
	return nil
}

// ListDietEntries returns entries logged at or after since, newest first, capped at limit
func (s *EntryStore) ListDietEntries(ctx context.Context, userID string, since time.Time, limit int) ([]models.DietEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entry_type, meal_type, description, water_ml, calories, protein, carbs, fat, logged_at
		FROM diet_entries
		WHERE user_id = ? AND logged_at >= ?
		ORDER BY logged_at DESC, id DESC
		LIMIT ?
	`, userID, since.UnixNano(), limit)
	if err != nil {
		return nil, fmt.Errorf("query diet entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.DietEntry
	for rows.Next() {
		var (
			entry       = models.DietEntry{UserID: userID}
			entryType   string
			mealType    sql.NullString
			description sql.NullString
			waterML     sql.NullInt64
			calories    sql.NullFloat64
			protein     sql.NullFloat64
			carbs       sql.NullFloat64
			fat         sql.NullFloat64
			loggedAt    int64
		)

		if err := rows.Scan(&entry.ID, &entryType, &mealType, &description, &waterML,
			&calories, &protein, &carbs, &fat, &loggedAt); err != nil {
			return nil, fmt.Errorf("scan diet entry: %w", err)
		}

		entry.Type = models.EntryType(entryType)
		entry.MealType = mealType.String
		entry.Description = description.String
		entry.WaterML = int(waterML.Int64)
		entry.LoggedAt = fromUnixNano(loggedAt)
		if calories.Valid || protein.Valid || carbs.Valid || fat.Valid {
			entry.Nutrition = &models.Nutrition{
				Calories: calories.Float64,
				Protein:  protein.Float64,
				Carbs:    carbs.Float64,
				Fat:      fat.Float64,
			}
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// AddHabit inserts a habit, assigning an ID and timestamp if missing
func (s *EntryStore) AddHabit(ctx context.Context, habit *models.Habit) error {
	if habit.Description == "" {
		return fmt.Errorf("habit description cannot be empty")
	}
	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}
	if habit.LoggedAt.IsZero() {
		habit.LoggedAt = time.Now().UTC()
	}

	var burned interface{}
	if habit.CaloriesBurned != nil {
		burned = *habit.CaloriesBurned
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (id, user_id, description, completed, calories_burned, logged_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, habit.ID, habit.UserID, habit.Description, habit.Completed, burned, habit.LoggedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert habit: %w", err)
	}
	return nil
}

// ListHabits returns habits logged at or after since, newest first
func (s *EntryStore) ListHabits(ctx context.Context, userID string, since time.Time) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, completed, calories_burned, logged_at
		FROM habits
		WHERE user_id = ? AND logged_at >= ?
		ORDER BY logged_at DESC, id DESC
	`, userID, since.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("query habits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var habits []models.Habit
	for rows.Next() {
		var (
			habit    = models.Habit{UserID: userID}
			burned   sql.NullFloat64
			loggedAt int64
		)
		if err := rows.Scan(&habit.ID, &habit.Description, &habit.Completed, &burned, &loggedAt); err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		if burned.Valid {
			v := burned.Float64
			habit.CaloriesBurned = &v
		}
		habit.LoggedAt = fromUnixNano(loggedAt)
		habits = append(habits, habit)
	}

	return habits, rows.Err()
}

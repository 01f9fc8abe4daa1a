// ABOUTME: Daily tracking storage operations for SQLite
// ABOUTME: One row per user per calendar day for water, sleep and symptoms
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harper/nutricoach/internal/models"
)

// TrackingStore handles daily tracking persistence
type TrackingStore struct {
	db *DB
}

// NewTrackingStore creates a new TrackingStore
func NewTrackingStore(db *DB) *TrackingStore {
	return &TrackingStore{db: db}
}

// Get retrieves the tracking row for a day, returning nil if not found
func (s *TrackingStore) Get(ctx context.Context, userID, day string) (*models.DailyTracking, error) {
	var (
		tracking     = models.DailyTracking{UserID: userID, Date: day}
		symptomsJSON sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT water_glasses, sleep_hours, symptoms
		FROM daily_tracking
		WHERE user_id = ? AND day = ?
	`, userID, day).Scan(&tracking.WaterGlasses, &tracking.SleepHours, &symptomsJSON)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan daily tracking: %w", err)
	}

	tracking.Symptoms = decodeStrings(symptomsJSON)
	return &tracking, nil
}

// Save upserts the tracking row for its day
func (s *TrackingStore) Save(ctx context.Context, tracking *models.DailyTracking) error {
	if tracking.UserID == "" || tracking.Date == "" {
		return errors.New("tracking requires user ID and date")
	}

	symptomsJSON, err := encodeStrings(tracking.Symptoms)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_tracking (user_id, day, water_glasses, sleep_hours, symptoms)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, day) DO UPDATE SET
			water_glasses = excluded.water_glasses,
			sleep_hours = excluded.sleep_hours,
			symptoms = excluded.symptoms
	`, tracking.UserID, tracking.Date, tracking.WaterGlasses, tracking.SleepHours, symptomsJSON)
	if err != nil {
		return fmt.Errorf("upsert daily tracking: %w", err)
	}
	return nil
}

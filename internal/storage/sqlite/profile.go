// ABOUTME: Profile and health metrics storage operations for SQLite
// ABOUTME: One row per user each, upserted; JSON array for medical conditions
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harper/nutricoach/internal/models"
)

// ProfileStore handles profile and health metrics persistence
type ProfileStore struct {
	db *DB
}

// NewProfileStore creates a new ProfileStore
func NewProfileStore(db *DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Get retrieves a user's profile, returning nil if not found
func (s *ProfileStore) Get(ctx context.Context, userID string) (*models.Profile, error) {
	var (
		dietType       sql.NullString
		hasAllergies   bool
		allergyDetails sql.NullString
		conditionsJSON sql.NullString
		takesMeds      bool
		medDetails     sql.NullString
		updatedAt      int64
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT diet_type, has_allergies, allergy_details, medical_conditions,
		       takes_medications, medication_details, updated_at
		FROM profiles
		WHERE user_id = ?
	`, userID).Scan(&dietType, &hasAllergies, &allergyDetails, &conditionsJSON,
		&takesMeds, &medDetails, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	profile := &models.Profile{
		UserID:            userID,
		DietType:          dietType.String,
		HasAllergies:      hasAllergies,
		AllergyDetails:    allergyDetails.String,
		TakesMedications:  takesMeds,
		MedicationDetails: medDetails.String,
		UpdatedAt:         fromUnixNano(updatedAt),
	}

	profile.MedicalConditions = decodeStrings(conditionsJSON)

	return profile, nil
}

// Save upserts a user's profile
func (s *ProfileStore) Save(ctx context.Context, profile *models.Profile) error {
	if profile.UserID == "" {
		return errors.New("profile user ID cannot be empty")
	}

	conditionsJSON, err := encodeStrings(profile.MedicalConditions)
	if err != nil {
		return err
	}

	profile.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, diet_type, has_allergies, allergy_details, medical_conditions,
		                      takes_medications, medication_details, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			diet_type = excluded.diet_type,
			has_allergies = excluded.has_allergies,
			allergy_details = excluded.allergy_details,
			medical_conditions = excluded.medical_conditions,
			takes_medications = excluded.takes_medications,
			medication_details = excluded.medication_details,
			updated_at = excluded.updated_at
	`, profile.UserID, nullString(profile.DietType), profile.HasAllergies, nullString(profile.AllergyDetails),
		conditionsJSON, profile.TakesMedications, nullString(profile.MedicationDetails), profile.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// GetMetrics retrieves a user's health metrics, returning nil if not found
func (s *ProfileStore) GetMetrics(ctx context.Context, userID string) (*models.HealthMetrics, error) {
	var (
		height        sql.NullFloat64
		weight        sql.NullFloat64
		goal          sql.NullString
		activityLevel sql.NullString
		updatedAt     int64
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT height_cm, weight_kg, goal, activity_level, updated_at
		FROM health_metrics
		WHERE user_id = ?
	`, userID).Scan(&height, &weight, &goal, &activityLevel, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan health metrics: %w", err)
	}

	return &models.HealthMetrics{
		UserID:        userID,
		HeightCm:      height.Float64,
		WeightKg:      weight.Float64,
		Goal:          goal.String,
		ActivityLevel: activityLevel.String,
		UpdatedAt:     fromUnixNano(updatedAt),
	}, nil
}

// SaveMetrics upserts a user's health metrics
func (s *ProfileStore) SaveMetrics(ctx context.Context, metrics *models.HealthMetrics) error {
	if metrics.UserID == "" {
		return errors.New("metrics user ID cannot be empty")
	}

	metrics.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO health_metrics (user_id, height_cm, weight_kg, goal, activity_level, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			height_cm = excluded.height_cm,
			weight_kg = excluded.weight_kg,
			goal = excluded.goal,
			activity_level = excluded.activity_level,
			updated_at = excluded.updated_at
	`, metrics.UserID, nullFloat(metrics.HeightCm), nullFloat(metrics.WeightKg),
		nullString(metrics.Goal), nullString(metrics.ActivityLevel), metrics.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("upsert health metrics: %w", err)
	}
	return nil
}

// nullString stores empty strings as NULL
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullFloat stores zero as NULL (unknown measurement)
func nullFloat(f float64) interface{} {
	if f == 0 {
		return nil
	}
	return f
}

func fromUnixNano(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

func encodeStrings(values []string) (interface{}, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func decodeStrings(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw.String), &values); err != nil {
		return nil
	}
	return values
}

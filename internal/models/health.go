// ABOUTME: Health data records read by the coach: profile, metrics, tracking, entries
// ABOUTME: UserHealthContext aggregates the six slices for a single query
package models

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for tracking days and reminders
const DateLayout = "2006-01-02"

// Profile holds dietary and medical background for a user
type Profile struct {
	UserID            string    `json:"user_id" yaml:"user_id"`
	DietType          string    `json:"diet_type,omitempty" yaml:"diet_type,omitempty"`
	HasAllergies      bool      `json:"has_allergies" yaml:"has_allergies"`
	AllergyDetails    string    `json:"allergy_details,omitempty" yaml:"allergy_details,omitempty"`
	MedicalConditions []string  `json:"medical_conditions,omitempty" yaml:"medical_conditions,omitempty"`
	TakesMedications  bool      `json:"takes_medications" yaml:"takes_medications"`
	MedicationDetails string    `json:"medication_details,omitempty" yaml:"medication_details,omitempty"`
	UpdatedAt         time.Time `json:"updated_at" yaml:"updated_at"`
}

// AddCondition adds a medical condition if not already present (case-insensitive)
func (p *Profile) AddCondition(condition string) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return
	}
	for _, existing := range p.MedicalConditions {
		if strings.EqualFold(existing, condition) {
			return
		}
	}
	p.MedicalConditions = append(p.MedicalConditions, condition)
}

// HealthMetrics holds body measurements and goals
type HealthMetrics struct {
	UserID        string    `json:"user_id" yaml:"user_id"`
	HeightCm      float64   `json:"height_cm,omitempty" yaml:"height_cm,omitempty"`
	WeightKg      float64   `json:"weight_kg,omitempty" yaml:"weight_kg,omitempty"`
	Goal          string    `json:"goal,omitempty" yaml:"goal,omitempty"`
	ActivityLevel string    `json:"activity_level,omitempty" yaml:"activity_level,omitempty"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// BMI returns body mass index, or 0 when height or weight is unknown
func (m *HealthMetrics) BMI() float64 {
	if m.HeightCm <= 0 || m.WeightKg <= 0 {
		return 0
	}
	h := m.HeightCm / 100
	return m.WeightKg / (h * h)
}

// DailyTracking holds one calendar day of self-reported tracking
type DailyTracking struct {
	UserID       string   `json:"user_id" yaml:"user_id"`
	Date         string   `json:"date" yaml:"date"`
	WaterGlasses int      `json:"water_glasses" yaml:"water_glasses"`
	SleepHours   float64  `json:"sleep_hours" yaml:"sleep_hours"`
	Symptoms     []string `json:"symptoms,omitempty" yaml:"symptoms,omitempty"`
}

// EntryType distinguishes water logs from meal logs
type EntryType string

const (
	EntryWater EntryType = "water"
	EntryMeal  EntryType = "meal"
)

// Nutrition is an optional macro breakdown for a meal
type Nutrition struct {
	Calories float64 `json:"calories" yaml:"calories"`
	Protein  float64 `json:"protein" yaml:"protein"`
	Carbs    float64 `json:"carbs" yaml:"carbs"`
	Fat      float64 `json:"fat" yaml:"fat"`
}

// DietEntry is a single water or meal log
type DietEntry struct {
	ID          string     `json:"id" yaml:"id"`
	UserID      string     `json:"user_id" yaml:"user_id"`
	Type        EntryType  `json:"entry_type" yaml:"entry_type"`
	MealType    string     `json:"meal_type,omitempty" yaml:"meal_type,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	WaterML     int        `json:"water_ml,omitempty" yaml:"water_ml,omitempty"`
	Nutrition   *Nutrition `json:"nutrition,omitempty" yaml:"nutrition,omitempty"`
	LoggedAt    time.Time  `json:"logged_at" yaml:"logged_at"`
}

// Validate checks that the entry is a well-formed water or meal log
func (e *DietEntry) Validate() error {
	switch e.Type {
	case EntryWater:
		if e.WaterML <= 0 {
			return errors.New("water entry requires a positive volume")
		}
	case EntryMeal:
		if strings.TrimSpace(e.Description) == "" {
			return errors.New("meal entry requires a description")
		}
	default:
		return errors.New("entry type must be water or meal")
	}
	return nil
}

// Habit is a tracked activity such as a walk or a workout
type Habit struct {
	ID             string    `json:"id" yaml:"id"`
	UserID         string    `json:"user_id" yaml:"user_id"`
	Description    string    `json:"description" yaml:"description"`
	Completed      bool      `json:"completed" yaml:"completed"`
	CaloriesBurned *float64  `json:"calories_burned,omitempty" yaml:"calories_burned,omitempty"`
	LoggedAt       time.Time `json:"logged_at" yaml:"logged_at"`
}

// Reminder is a dated to-do for the user
type Reminder struct {
	ID        string `json:"id" yaml:"id"`
	UserID    string `json:"user_id" yaml:"user_id"`
	Title     string `json:"title" yaml:"title"`
	DueDate   string `json:"due_date" yaml:"due_date"`
	DueTime   string `json:"due_time,omitempty" yaml:"due_time,omitempty"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// UserHealthContext is the per-query aggregate of health data slices.
// Any slice may be nil when its topic was not requested or its fetch failed.
type UserHealthContext struct {
	Profile       *Profile       `json:"profile,omitempty" yaml:"profile,omitempty"`
	HealthMetrics *HealthMetrics `json:"health_metrics,omitempty" yaml:"health_metrics,omitempty"`
	DailyTracking *DailyTracking `json:"daily_tracking,omitempty" yaml:"daily_tracking,omitempty"`
	DietEntries   []DietEntry    `json:"diet_entries,omitempty" yaml:"diet_entries,omitempty"`
	Habits        []Habit        `json:"habits,omitempty" yaml:"habits,omitempty"`
	Reminders     []Reminder     `json:"reminders,omitempty" yaml:"reminders,omitempty"`
}

// IsEmpty reports whether no slice carries data
func (c *UserHealthContext) IsEmpty() bool {
	if c == nil {
		return true
	}
	return c.Profile == nil &&
		c.HealthMetrics == nil &&
		c.DailyTracking == nil &&
		len(c.DietEntries) == 0 &&
		len(c.Habits) == 0 &&
		len(c.Reminders) == 0
}

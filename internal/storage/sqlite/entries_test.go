// ABOUTME: Tests for diet entry, habit and reminder storage operations
// ABOUTME: Verifies windowing, ordering, limits and completion filtering
package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harper/nutricoach/internal/models"
	"github.com/harper/nutricoach/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDietEntriesWindowAndOrder(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	store := NewEntryStore(db)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	old := &models.DietEntry{UserID: "u1", Type: models.EntryMeal, MealType: "lunch", Description: "old soup", LoggedAt: now.AddDate(0, 0, -9)}
	water := &models.DietEntry{UserID: "u1", Type: models.EntryWater, WaterML: 250, LoggedAt: now.Add(-2 * time.Hour)}
	meal := &models.DietEntry{
		UserID: "u1", Type: models.EntryMeal, MealType: "breakfast", Description: "oatmeal",
		Nutrition: &models.Nutrition{Calories: 320, Protein: 12},
		LoggedAt:  now.Add(-1 * time.Hour),
	}
	for _, e := range []*models.DietEntry{old, water, meal} {
		require.NoError(t, store.AddDietEntry(ctx, e))
		assert.NotEmpty(t, e.ID)
	}

	entries, err := store.ListDietEntries(ctx, "u1", now.AddDate(0, 0, -7), 20)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "oatmeal", entries[0].Description)
	require.NotNil(t, entries[0].Nutrition)
	assert.Equal(t, 320.0, entries[0].Nutrition.Calories)
	assert.Equal(t, models.EntryWater, entries[1].Type)
	assert.Equal(t, 250, entries[1].WaterML)
	assert.Nil(t, entries[1].Nutrition)
}

func TestDietEntriesLimit(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	store := NewEntryStore(db)
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 25; i++ {
		require.NoError(t, store.AddDietEntry(ctx, &models.DietEntry{
			UserID: "u1", Type: models.EntryWater, WaterML: 100 + i, LoggedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := store.ListDietEntries(ctx, "u1", base.Add(-time.Minute), 20)
	require.NoError(t, err)
	require.Len(t, entries, 20)
	assert.Equal(t, 124, entries[0].WaterML, "newest first")

	defaulted, err := store.ListDietEntries(ctx, "u1", base.Add(-time.Minute), 0)
	require.NoError(t, err)
	assert.Len(t, defaulted, 20)
}

func TestDietEntryValidation(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := NewEntryStore(db)
	assert.Error(t, store.AddDietEntry(context.Background(), &models.DietEntry{UserID: "u1", Type: models.EntryWater}))
	assert.Error(t, store.AddDietEntry(context.Background(), &models.DietEntry{UserID: "u1", Type: models.EntryMeal}))
}

func TestHabits(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	store := NewEntryStore(db)
	burned := 180.0
	now := time.Now().UTC()

	require.NoError(t, store.AddHabit(ctx, &models.Habit{UserID: "u1", Description: "walk", Completed: true, CaloriesBurned: &burned, LoggedAt: now.Add(-time.Hour)}))
	require.NoError(t, store.AddHabit(ctx, &models.Habit{UserID: "u1", Description: "stretch", LoggedAt: now.Add(-2 * time.Hour)}))
	require.NoError(t, store.AddHabit(ctx, &models.Habit{UserID: "u1", Description: "ancient run", Completed: true, LoggedAt: now.AddDate(0, 0, -30)}))
	assert.Error(t, store.AddHabit(ctx, &models.Habit{UserID: "u1"}))

	habits, err := store.ListHabits(ctx, "u1", now.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, habits, 2)
	assert.Equal(t, "walk", habits[0].Description)
	assert.True(t, habits[0].Completed)
	require.NotNil(t, habits[0].CaloriesBurned)
	assert.Equal(t, 180.0, *habits[0].CaloriesBurned)
	assert.Nil(t, habits[1].CaloriesBurned)
}

func TestRemindersUpcoming(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	store := NewReminderStore(db)

	past := &models.Reminder{UserID: "u1", Title: "past", DueDate: "2026-03-09"}
	later := &models.Reminder{UserID: "u1", Title: "later", DueDate: "2026-03-12"}
	todayPM := &models.Reminder{UserID: "u1", Title: "today pm", DueDate: "2026-03-10", DueTime: "18:00"}
	todayAM := &models.Reminder{UserID: "u1", Title: "today am", DueDate: "2026-03-10", DueTime: "08:00"}
	done := &models.Reminder{UserID: "u1", Title: "done", DueDate: "2026-03-11"}
	for _, r := range []*models.Reminder{past, later, todayPM, todayAM, done} {
		require.NoError(t, store.Add(ctx, r))
	}
	require.NoError(t, store.Complete(ctx, "u1", done.ID))

	upcoming, err := store.ListUpcoming(ctx, "u1", "2026-03-10")
	require.NoError(t, err)

	var titles []string
	for _, r := range upcoming {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"today am", "today pm", "later"}, titles)
}

func TestReminderValidationAndMissing(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	store := NewReminderStore(db)

	assert.Error(t, store.Add(ctx, &models.Reminder{UserID: "u1", DueDate: "2026-03-10"}))
	assert.Error(t, store.Add(ctx, &models.Reminder{UserID: "u1", Title: "x", DueDate: "10/03/2026"}))

	err = store.Complete(ctx, "u1", "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

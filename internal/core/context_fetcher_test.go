// ABOUTME: Tests for the concurrent health context fetch
// ABOUTME: Covers topic filtering, partial-failure isolation and date shaping
package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harper/nutricoach/internal/models"
	"github.com/harper/nutricoach/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func seededHealth() *fakeHealth {
	f := newFakeHealth()
	f.data = models.UserHealthContext{
		Profile:       &models.Profile{UserID: "u1", DietType: "vegetarian"},
		HealthMetrics: &models.HealthMetrics{UserID: "u1", WeightKg: 70},
		DailyTracking: &models.DailyTracking{UserID: "u1", WaterGlasses: 3},
		DietEntries:   []models.DietEntry{{Type: models.EntryMeal, Description: "salad"}},
		Habits:        []models.Habit{{Description: "walk", Completed: true}},
		Reminders:     []models.Reminder{{Title: "buy lentils", DueDate: "2026-03-10"}},
	}
	return f
}

func TestFetchOnlyRequestedTopics(t *testing.T) {
	store := seededHealth()
	fetcher := NewContextFetcher(store, zaptest.NewLogger(t), time.UTC)

	hc := fetcher.Fetch(context.Background(), "u1", []models.TopicScope{models.TopicMeals, models.TopicHealth})

	assert.Equal(t, []models.TopicScope{models.TopicHealth, models.TopicMeals}, store.called())
	assert.Nil(t, hc.Profile)
	assert.NotNil(t, hc.HealthMetrics)
	assert.Len(t, hc.DietEntries, 1)
	assert.Nil(t, hc.Reminders)
}

func TestFetchEmptyTopicsMeansAll(t *testing.T) {
	store := seededHealth()
	fetcher := NewContextFetcher(store, nil, time.UTC)

	hc := fetcher.Fetch(context.Background(), "u1", nil)

	assert.Equal(t, models.AllTopics(), store.called())
	assert.False(t, hc.IsEmpty())
}

func TestFetchPartialFailureIsolation(t *testing.T) {
	store := seededHealth()
	store.errs[models.TopicHealth] = errors.New("permission denied")

	core, logs := observer.New(zapcore.WarnLevel)
	fetcher := NewContextFetcher(store, zap.New(core), time.UTC)

	hc := fetcher.Fetch(context.Background(), "u1", models.AllTopics())

	assert.Nil(t, hc.HealthMetrics)
	assert.NotNil(t, hc.Profile)
	assert.NotNil(t, hc.DailyTracking)
	assert.Len(t, hc.DietEntries, 1)
	assert.Len(t, hc.Habits, 1)
	assert.Len(t, hc.Reminders, 1)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0].ContextMap()
	assert.Equal(t, "health", entry["topic"])
	assert.Equal(t, "u1", entry["user_id"])
}

func TestFetchEverySliceFailing(t *testing.T) {
	store := seededHealth()
	for _, topic := range models.AllTopics() {
		store.errs[topic] = errors.New("offline")
	}
	fetcher := NewContextFetcher(store, nil, time.UTC)

	hc := fetcher.Fetch(context.Background(), "u1", nil)
	require.NotNil(t, hc)
	assert.True(t, hc.IsEmpty())
	assert.Equal(t, NoDataContext, FormatContext(hc))
}

func TestFetchUsesLocalCalendarDate(t *testing.T) {
	store := seededHealth()
	tokyo := time.FixedZone("JST", 9*60*60)
	fetcher := NewContextFetcher(store, nil, tokyo)
	// 20:00 UTC on March 9 is already March 10 in Tokyo
	now := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)
	fetcher.now = func() time.Time { return now }

	fetcher.Fetch(context.Background(), "u1", []models.TopicScope{models.TopicToday, models.TopicMeals})

	assert.Equal(t, "2026-03-10", store.lastDay)
	assert.Equal(t, "2026-03-10", fetcher.Today())
	assert.Equal(t, now.Add(-7*24*time.Hour), store.lastSince)
	assert.Equal(t, DietEntryLimit, store.lastLimit)
}

func TestFetchAgainstSQLite(t *testing.T) {
	s, err := sqlite.NewStorageInMemory()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	now := time.Now()
	today := now.In(time.UTC).Format(models.DateLayout)

	require.NoError(t, s.SaveProfile(ctx, &models.Profile{UserID: "u1", DietType: "vegan"}))
	require.NoError(t, s.SaveDailyTracking(ctx, &models.DailyTracking{UserID: "u1", Date: today, WaterGlasses: 5}))
	require.NoError(t, s.AddDietEntry(ctx, &models.DietEntry{UserID: "u1", Type: models.EntryMeal, Description: "tofu bowl", LoggedAt: now.Add(-time.Hour)}))
	require.NoError(t, s.AddDietEntry(ctx, &models.DietEntry{UserID: "u1", Type: models.EntryMeal, Description: "old", LoggedAt: now.AddDate(0, 0, -10)}))
	require.NoError(t, s.AddReminder(ctx, &models.Reminder{UserID: "u1", Title: "yesterday", DueDate: now.AddDate(0, 0, -1).In(time.UTC).Format(models.DateLayout)}))
	require.NoError(t, s.AddReminder(ctx, &models.Reminder{UserID: "u1", Title: "tomorrow", DueDate: now.AddDate(0, 0, 1).In(time.UTC).Format(models.DateLayout)}))

	fetcher := NewContextFetcher(s, zaptest.NewLogger(t), time.UTC)
	hc := fetcher.Fetch(ctx, "u1", nil)

	require.NotNil(t, hc.Profile)
	assert.Equal(t, "vegan", hc.Profile.DietType)
	assert.Nil(t, hc.HealthMetrics)
	require.NotNil(t, hc.DailyTracking)
	assert.Equal(t, 5, hc.DailyTracking.WaterGlasses)
	require.Len(t, hc.DietEntries, 1)
	assert.Equal(t, "tofu bowl", hc.DietEntries[0].Description)
	require.Len(t, hc.Reminders, 1)
	assert.Equal(t, "tomorrow", hc.Reminders[0].Title)
}

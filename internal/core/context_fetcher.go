// ABOUTME: ContextFetcher loads the requested slices of a user's health data concurrently
// ABOUTME: A failed slice is logged and left empty; the aggregate never fails
package core

import (
	"context"
	"time"

	"github.com/harper/nutricoach/internal/logging"
	"github.com/harper/nutricoach/internal/models"
	"github.com/harper/nutricoach/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// HistoryWindow bounds diet entries and habits to the trailing week
	HistoryWindow = 7 * 24 * time.Hour

	// DietEntryLimit caps the number of diet entries fetched per query
	DietEntryLimit = 20
)

// ContextFetcher reads health slices through a storage.HealthReader
type ContextFetcher struct {
	store    storage.HealthReader
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time
}

// NewContextFetcher creates a fetcher; loc is the user's calendar timezone (nil means time.Local)
func NewContextFetcher(store storage.HealthReader, logger *zap.Logger, loc *time.Location) *ContextFetcher {
	if loc == nil {
		loc = time.Local
	}
	return &ContextFetcher{
		store:    store,
		logger:   logging.OrNop(logger),
		location: loc,
		now:      time.Now,
	}
}

// Today returns the caller's local calendar date as YYYY-MM-DD
func (f *ContextFetcher) Today() string {
	return f.now().In(f.location).Format(models.DateLayout)
}

// Fetch issues one query per requested topic (all six when topics is empty) and
// waits for every query to settle
func (f *ContextFetcher) Fetch(ctx context.Context, userID string, topics []models.TopicScope) *models.UserHealthContext {
	var (
		requested = models.NewTopicSet(topics)
		result    = &models.UserHealthContext{}
		now       = f.now()
		since     = now.Add(-HistoryWindow)
		today     = now.In(f.location).Format(models.DateLayout)
		g         errgroup.Group
	)

	// Each goroutine owns exactly one field of result
	if requested.Has(models.TopicProfile) {
		g.Go(func() error {
			profile, err := f.store.GetProfile(ctx, userID)
			f.settle(models.TopicProfile, userID, err)
			if err == nil {
				result.Profile = profile
			}
			return nil
		})
	}

	if requested.Has(models.TopicHealth) {
		g.Go(func() error {
			metrics, err := f.store.GetHealthMetrics(ctx, userID)
			f.settle(models.TopicHealth, userID, err)
			if err == nil {
				result.HealthMetrics = metrics
			}
			return nil
		})
	}

	if requested.Has(models.TopicToday) {
		g.Go(func() error {
			tracking, err := f.store.GetDailyTracking(ctx, userID, today)
			f.settle(models.TopicToday, userID, err)
			if err == nil {
				result.DailyTracking = tracking
			}
			return nil
		})
	}

	if requested.Has(models.TopicMeals) {
		g.Go(func() error {
			entries, err := f.store.ListDietEntries(ctx, userID, since, DietEntryLimit)
			f.settle(models.TopicMeals, userID, err)
			if err == nil {
				result.DietEntries = entries
			}
			return nil
		})
	}

	if requested.Has(models.TopicHabits) {
		g.Go(func() error {
			habits, err := f.store.ListHabits(ctx, userID, since)
			f.settle(models.TopicHabits, userID, err)
			if err == nil {
				result.Habits = habits
			}
			return nil
		})
	}

	if requested.Has(models.TopicReminders) {
		g.Go(func() error {
			reminders, err := f.store.ListUpcomingReminders(ctx, userID, today)
			f.settle(models.TopicReminders, userID, err)
			if err == nil {
				result.Reminders = reminders
			}
			return nil
		})
	}

	_ = g.Wait()
	return result
}

func (f *ContextFetcher) settle(topic models.TopicScope, userID string, err error) {
	if err == nil {
		return
	}
	f.logger.Warn("context slice fetch failed",
		zap.String("topic", string(topic)),
		zap.String("user_id", userID),
		zap.Error(err),
	)
}

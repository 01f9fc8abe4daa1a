// ABOUTME: Shared test doubles for the core package
// ABOUTME: Scriptable health reader, message store and chat provider
package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/harper/nutricoach/internal/llm"
	"github.com/harper/nutricoach/internal/models"
	"github.com/harper/nutricoach/internal/storage"
	"go.uber.org/goleak"
)

// leakOptions ignores the stats worker that the GenAI SDK's dependencies start at init
func leakOptions(extra ...goleak.Option) []goleak.Option {
	return append([]goleak.Option{
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	}, extra...)
}

// fakeHealth records which reads ran and fails the ones listed in errs
type fakeHealth struct {
	mu    sync.Mutex
	calls map[models.TopicScope]int
	errs  map[models.TopicScope]error
	data  models.UserHealthContext

	lastDay   string
	lastSince time.Time
	lastLimit int
}

func newFakeHealth() *fakeHealth {
	return &fakeHealth{calls: map[models.TopicScope]int{}, errs: map[models.TopicScope]error{}}
}

func (f *fakeHealth) record(topic models.TopicScope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[topic]++
	return f.errs[topic]
}

func (f *fakeHealth) called() []models.TopicScope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TopicScope
	for _, t := range models.AllTopics() {
		if f.calls[t] > 0 {
			out = append(out, t)
		}
	}
	return out
}

func (f *fakeHealth) GetProfile(context.Context, string) (*models.Profile, error) {
	if err := f.record(models.TopicProfile); err != nil {
		return nil, err
	}
	return f.data.Profile, nil
}

func (f *fakeHealth) GetHealthMetrics(context.Context, string) (*models.HealthMetrics, error) {
	if err := f.record(models.TopicHealth); err != nil {
		return nil, err
	}
	return f.data.HealthMetrics, nil
}

func (f *fakeHealth) GetDailyTracking(_ context.Context, _ string, day string) (*models.DailyTracking, error) {
	f.mu.Lock()
	f.lastDay = day
	f.mu.Unlock()
	if err := f.record(models.TopicToday); err != nil {
		return nil, err
	}
	return f.data.DailyTracking, nil
}

func (f *fakeHealth) ListDietEntries(_ context.Context, _ string, since time.Time, limit int) ([]models.DietEntry, error) {
	f.mu.Lock()
	f.lastSince, f.lastLimit = since, limit
	f.mu.Unlock()
	if err := f.record(models.TopicMeals); err != nil {
		return nil, err
	}
	return f.data.DietEntries, nil
}

func (f *fakeHealth) ListHabits(context.Context, string, time.Time) ([]models.Habit, error) {
	if err := f.record(models.TopicHabits); err != nil {
		return nil, err
	}
	return f.data.Habits, nil
}

func (f *fakeHealth) ListUpcomingReminders(context.Context, string, string) ([]models.Reminder, error) {
	if err := f.record(models.TopicReminders); err != nil {
		return nil, err
	}
	return f.data.Reminders, nil
}

// failingMessages rejects every append
type failingMessages struct{}

var errStoreDown = errors.New("store unavailable")

func (failingMessages) AppendMessage(context.Context, *models.ChatMessage) error { return errStoreDown }
func (failingMessages) ListMessages(context.Context, string, string) ([]models.ChatMessage, error) {
	return nil, errStoreDown
}
func (failingMessages) ListRecentConversations(context.Context, string, int) ([]models.Conversation, error) {
	return nil, errStoreDown
}
func (failingMessages) DeleteConversation(context.Context, string, string) (int64, error) {
	return 0, errStoreDown
}

// dropFirstAppend fails the first append and passes everything else through
type dropFirstAppend struct {
	storage.MessageStore
	mu      sync.Mutex
	dropped bool
}

func (d *dropFirstAppend) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	d.mu.Lock()
	first := !d.dropped
	d.dropped = true
	d.mu.Unlock()
	if first {
		return errStoreDown
	}
	return d.MessageStore.AppendMessage(ctx, msg)
}

// scriptedReply is one provider outcome; block waits for the context to end,
// wait holds the reply until the channel is closed
type scriptedReply struct {
	text  string
	err   error
	block bool
	wait  chan struct{}
}

// scriptedProvider answers calls in order and records every request
type scriptedProvider struct {
	mu       sync.Mutex
	replies  []scriptedReply
	requests []llm.CompletionRequest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	p.mu.Lock()
	idx := len(p.requests)
	p.requests = append(p.requests, req)
	var reply scriptedReply
	if idx < len(p.replies) {
		reply = p.replies[idx]
	}
	p.mu.Unlock()

	if reply.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if reply.wait != nil {
		select {
		case <-reply.wait:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return reply.text, reply.err
}

func (p *scriptedProvider) request(i int) llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[i]
}

func joinContent(msgs []llm.Message) string {
	var out string
	for _, m := range msgs {
		out += m.Content + "\n"
	}
	return out
}

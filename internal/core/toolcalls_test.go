// ABOUTME: Tests for the cosmetic tool-call presenter
// ABOUTME: Checks the snapshot sequence, cancellation and goroutine cleanup
package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/harper/nutricoach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recorder struct {
	mu        sync.Mutex
	snapshots [][]models.ToolCall
}

func (r *recorder) emit(calls []models.ToolCall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, calls)
}

func (r *recorder) all() [][]models.ToolCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]models.ToolCall(nil), r.snapshots...)
}

func statuses(calls []models.ToolCall) []models.ToolCallStatus {
	out := make([]models.ToolCallStatus, len(calls))
	for i, c := range calls {
		out[i] = c.Status
	}
	return out
}

func TestPresenterRunSequence(t *testing.T) {
	rec := &recorder{}
	p := NewToolCallPresenter(0)

	err := p.Run(context.Background(), []models.TopicScope{models.TopicMeals, models.TopicHealth}, rec.emit)
	require.NoError(t, err)

	snaps := rec.all()
	require.Len(t, snaps, 6)

	i, f, c := models.ToolCallInitiated, models.ToolCallFetching, models.ToolCallCompleted
	want := [][]models.ToolCallStatus{
		{i},
		{f},
		{c},
		{c, i},
		{c, f},
		{c, c},
	}
	for n, snap := range snaps {
		assert.Equal(t, want[n], statuses(snap), "snapshot %d", n)
	}

	last := snaps[len(snaps)-1]
	assert.Equal(t, "call_1_meals", last[0].ID)
	assert.Equal(t, "call_2_health", last[1].ID)

	// earlier snapshots are not mutated by later steps
	assert.Equal(t, models.ToolCallInitiated, snaps[0][0].Status)
}

func TestPresenterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	err := NewToolCallPresenter(time.Hour).Run(ctx, models.AllTopics(), rec.emit)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.all())
}

func TestPresenterStopHaltsEmission(t *testing.T) {
	defer goleak.VerifyNone(t, leakOptions()...)

	rec := &recorder{}
	p := NewToolCallPresenter(time.Hour)
	stop := p.Start(context.Background(), models.AllTopics(), rec.emit)

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 5*time.Millisecond)
	stop()

	count := len(rec.all())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, count, len(rec.all()))
}

func TestPresenterNegativeDelay(t *testing.T) {
	defer goleak.VerifyNone(t, leakOptions()...)

	rec := &recorder{}
	stop := NewToolCallPresenter(-time.Second).Start(context.Background(), []models.TopicScope{models.TopicToday}, rec.emit)

	require.Eventually(t, func() bool { return len(rec.all()) == 3 }, time.Second, 5*time.Millisecond)
	stop()
}

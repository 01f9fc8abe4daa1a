// ABOUTME: ToolCallPresenter emits a timed initiated/fetching/completed sequence per topic
// ABOUTME: Cosmetic only; driven by a fixed delay, never by the real fetch
package core

import (
	"context"
	"time"

	"github.com/harper/nutricoach/internal/models"
	"github.com/harper/nutricoach/internal/util"
)

// DefaultToolCallDelay is the pause between status changes
const DefaultToolCallDelay = 300 * time.Millisecond

// ToolCallFunc receives a snapshot of every tool call after each change
type ToolCallFunc func([]models.ToolCall)

// ToolCallPresenter animates tool calls for a list of topics
type ToolCallPresenter struct {
	delay time.Duration
}

// NewToolCallPresenter creates a presenter with the given step delay
func NewToolCallPresenter(delay time.Duration) *ToolCallPresenter {
	if delay < 0 {
		delay = 0
	}
	return &ToolCallPresenter{delay: delay}
}

// Run walks each topic through its states in order, one topic at a time.
// It returns ctx.Err() if cancelled part way.
func (p *ToolCallPresenter) Run(ctx context.Context, topics []models.TopicScope, emit ToolCallFunc) error {
	calls := make([]models.ToolCall, 0, len(topics))

	for i, topic := range topics {
		if err := ctx.Err(); err != nil {
			return err
		}

		calls = append(calls, models.NewToolCall(i+1, topic))
		emit(snapshot(calls))

		current := &calls[len(calls)-1]
		for current.Status != models.ToolCallCompleted {
			if err := util.SleepContext(ctx, p.delay); err != nil {
				return err
			}
			current.Advance()
			emit(snapshot(calls))
		}
	}
	return nil
}

// Start runs the sequence in a goroutine. The returned stop cancels it and
// waits for the goroutine to exit; no emission happens after stop returns.
func (p *ToolCallPresenter) Start(ctx context.Context, topics []models.TopicScope, emit ToolCallFunc) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = p.Run(ctx, topics, emit)
	}()

	return func() {
		cancel()
		<-done
	}
}

func snapshot(calls []models.ToolCall) []models.ToolCall {
	out := make([]models.ToolCall, len(calls))
	copy(out, calls)
	return out
}

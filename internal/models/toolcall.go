// ABOUTME: ToolCall is the visible, time-boxed representation of a topic fetch
// ABOUTME: Status advances initiated -> fetching -> completed, one step at a time
package models

import "fmt"

// ToolCallStatus represents the lifecycle state of a tool call
type ToolCallStatus string

const (
	// ToolCallInitiated - the topic was discovered for this turn
	ToolCallInitiated ToolCallStatus = "initiated"

	// ToolCallFetching - the topic's data is shown as loading
	ToolCallFetching ToolCallStatus = "fetching"

	// ToolCallCompleted - terminal state for the render cycle
	ToolCallCompleted ToolCallStatus = "completed"
)

// IsValid reports whether the status is a known state
func (s ToolCallStatus) IsValid() bool {
	switch s {
	case ToolCallInitiated, ToolCallFetching, ToolCallCompleted:
		return true
	}
	return false
}

// Next returns the following state, or false when s is terminal or unknown
func (s ToolCallStatus) Next() (ToolCallStatus, bool) {
	switch s {
	case ToolCallInitiated:
		return ToolCallFetching, true
	case ToolCallFetching:
		return ToolCallCompleted, true
	}
	return s, false
}

// ToolCall is one topic fetch shown to the user during a turn
type ToolCall struct {
	ID     string         `json:"id"`
	Topic  TopicScope     `json:"topic"`
	Status ToolCallStatus `json:"status"`
}

// NewToolCall creates an initiated tool call; seq is its 1-based position in the turn
func NewToolCall(seq int, topic TopicScope) ToolCall {
	return ToolCall{
		ID:     fmt.Sprintf("call_%d_%s", seq, topic),
		Topic:  topic,
		Status: ToolCallInitiated,
	}
}

// Advance moves the call one state forward; it is a no-op once completed
func (c *ToolCall) Advance() bool {
	next, ok := c.Status.Next()
	if !ok {
		return false
	}
	c.Status = next
	return true
}

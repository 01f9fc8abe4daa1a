// ABOUTME: Tests for ConversationManager over an in-memory SQLite store
// ABOUTME: Covers ID minting, title placement, history reads and failure results
package core

import (
	"context"
	"testing"

	"github.com/harper/nutricoach/internal/models"
	"github.com/harper/nutricoach/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestManager(t *testing.T) *ConversationManager {
	t.Helper()
	s, err := sqlite.NewStorageInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewConversationManager(s, zaptest.NewLogger(t))
}

func TestStoreMessageStartsConversation(t *testing.T) {
	m := newTestManager(t)
	m.newID = func() string { return "conv-1" }
	ctx := context.Background()

	first := m.StoreMessage(ctx, "u1", "", Message{Role: models.RoleUser, Content: "**What** should I eat? I'm hungry."})
	require.True(t, first.Success, first.Error)
	assert.Equal(t, "conv-1", first.ConversationID)
	assert.NotZero(t, first.MessageID)

	second := m.StoreMessage(ctx, "u1", first.ConversationID, Message{Role: models.RoleAssistant, Content: "Lentils."})
	require.True(t, second.Success, second.Error)
	assert.Equal(t, "conv-1", second.ConversationID)

	msgs, err := m.FetchMessages(ctx, "u1", "conv-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, models.SenderUser, msgs[0].Sender)
	assert.Equal(t, "What should I eat", msgs[0].Title)
	assert.Empty(t, msgs[0].SenderName)

	assert.Equal(t, models.SenderCoach, msgs[1].Sender)
	assert.Equal(t, CoachDisplayName, msgs[1].SenderName)
	assert.Empty(t, msgs[1].Title, "only the first row carries the title")

	convs, err := m.FetchRecentConversations(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "What should I eat", convs[0].Title)
	assert.Equal(t, "Lentils.", convs[0].LastMessage)
	assert.Equal(t, models.SenderCoach, convs[0].LastSender)
}

func TestStoreMessageNewIDs(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	a := m.StoreMessage(ctx, "u1", "", Message{Role: models.RoleUser, Content: "one"})
	b := m.StoreMessage(ctx, "u1", "", Message{Role: models.RoleUser, Content: "two"})
	require.True(t, a.Success)
	require.True(t, b.Success)
	assert.NotEqual(t, a.ConversationID, b.ConversationID)
}

func TestStoreMessageFailure(t *testing.T) {
	m := NewConversationManager(failingMessages{}, nil)

	result := m.StoreMessage(context.Background(), "u1", "", Message{Role: models.RoleUser, Content: "hi"})
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.ConversationID, "a minted ID is reported even on failure")
	assert.Equal(t, errStoreDown.Error(), result.Error)

	bad := m.StoreMessage(context.Background(), "u1", "c1", Message{Role: "system", Content: "x"})
	assert.False(t, bad.Success)
	assert.Equal(t, "c1", bad.ConversationID)
}

func TestConversationReadsRequireUser(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.FetchMessages(ctx, "", "c1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = m.FetchRecentConversations(ctx, "", 5)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = m.DeleteConversation(ctx, "", "c1")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = m.FetchMessages(ctx, "u1", "")
	assert.Error(t, err)
}

func TestDeleteConversationScopedToUser(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	res := m.StoreMessage(ctx, "u1", "", Message{Role: models.RoleUser, Content: "hello"})
	require.True(t, res.Success)

	n, err := m.DeleteConversation(ctx, "intruder", res.ConversationID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = m.DeleteConversation(ctx, "u1", res.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	msgs, err := m.FetchMessages(ctx, "u1", res.ConversationID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

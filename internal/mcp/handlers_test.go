// ABOUTME: Tests for the MCP tool handlers against in-memory storage
// ABOUTME: Exercises every tool through its handler function
package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/harper/nutricoach/internal/core"
	"github.com/harper/nutricoach/internal/llm"
	"github.com/harper/nutricoach/internal/models"
	"github.com/harper/nutricoach/internal/storage/sqlite"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedProvider struct{}

func (cannedProvider) Name() string { return "canned" }

func (cannedProvider) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	if strings.HasPrefix(req.Messages[0].Content, "You are NutriCoach") {
		return "## Key Insights\nEat more beans.", nil
	}
	return "notes", nil
}

func setupHandlers(t *testing.T, userID string) (*Handlers, *sqlite.Storage) {
	t.Helper()
	store, err := sqlite.NewStorageInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	agent := core.NewAgent(core.Components{
		Fetcher:       core.NewContextFetcher(store, nil, time.UTC),
		Pipeline:      core.NewPipeline(cannedProvider{}, core.DefaultPipelineConfig(), nil),
		Conversations: core.NewConversationManager(store, nil),
		Presenter:     core.NewToolCallPresenter(0),
	})
	return NewHandlers(agent, store, userID, nil), store
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestAskCoachAndHistory(t *testing.T) {
	h, _ := setupHandlers(t, "u1")
	ctx := context.Background()

	result, err := h.AskCoach(ctx, callRequest(map[string]interface{}{
		"message": "What should I eat tonight?",
		"topics":  []interface{}{"meals"},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var turn core.QueryResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &turn))
	assert.Equal(t, "## Key Insights\nEat more beans.", turn.Response)
	assert.Equal(t, []models.TopicScope{models.TopicMeals}, turn.TopicsUsed)
	require.NotEmpty(t, turn.ConversationID)

	result, err = h.ListConversations(ctx, callRequest(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), turn.ConversationID)

	result, err = h.GetConversation(ctx, callRequest(map[string]interface{}{"conversation_id": turn.ConversationID}))
	require.NoError(t, err)
	var history struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &history))
	require.Len(t, history.Messages, 2)
	assert.Equal(t, models.SenderCoach, history.Messages[1].Sender)

	result, err = h.DeleteConversation(ctx, callRequest(map[string]interface{}{"conversation_id": turn.ConversationID}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted": 2}`, resultText(t, result))

	result, err = h.GetConversation(ctx, callRequest(map[string]interface{}{"conversation_id": turn.ConversationID}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestAskCoachValidation(t *testing.T) {
	h, _ := setupHandlers(t, "u1")

	result, err := h.AskCoach(context.Background(), callRequest(map[string]interface{}{"message": " "}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = h.AskCoach(context.Background(), callRequest(map[string]interface{}{"message": 42}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestToolsWithoutUser(t *testing.T) {
	h, _ := setupHandlers(t, "")
	ctx := context.Background()

	result, err := h.AskCoach(ctx, callRequest(map[string]interface{}{"message": "hi"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "NUTRICOACH_USER")

	result, err = h.LogMeal(ctx, callRequest(map[string]interface{}{"description": "toast"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestLogMealFeedsContext(t *testing.T) {
	h, store := setupHandlers(t, "u1")
	ctx := context.Background()

	result, err := h.LogMeal(ctx, callRequest(map[string]interface{}{
		"description": "lentil soup",
		"meal_type":   "Lunch",
		"calories":    410,
		"protein":     22.5,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	entries, err := store.ListDietEntries(ctx, "u1", time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "lunch", entries[0].MealType)
	require.NotNil(t, entries[0].Nutrition)
	assert.Equal(t, 22.5, entries[0].Nutrition.Protein)

	result, err = h.GetHealthContext(ctx, callRequest(map[string]interface{}{"topics": []interface{}{"meals"}}))
	require.NoError(t, err)
	assert.Equal(t, "Recent meals:\n- lunch: lentil soup (410 kcal)", resultText(t, result))
}

func TestLogMealValidation(t *testing.T) {
	h, _ := setupHandlers(t, "u1")
	ctx := context.Background()

	result, err := h.LogMeal(ctx, callRequest(map[string]interface{}{"description": ""}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = h.LogMeal(ctx, callRequest(map[string]interface{}{"description": "toast", "logged_at": "yesterday"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestRegisterTools(t *testing.T) {
	h, _ := setupHandlers(t, "u1")
	server := mcpserver.NewMCPServer("test", "0.0.0")
	RegisterTools(server, h)

	response := server.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(response)
	require.NoError(t, err)

	for _, name := range []string{"ask_coach", "list_conversations", "get_conversation", "delete_conversation", "get_health_context", "log_meal"} {
		assert.Contains(t, string(raw), `"name":"`+name+`"`)
	}
}

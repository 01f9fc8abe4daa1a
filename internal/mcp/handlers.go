// ABOUTME: MCP tool handler implementations for the coach server
// ABOUTME: Every tool acts as the configured user; failures become tool errors
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/nutricoach/internal/core"
	"github.com/harper/nutricoach/internal/logging"
	"github.com/harper/nutricoach/internal/models"
	"github.com/harper/nutricoach/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	agent  *core.Agent
	writer storage.HealthWriter
	userID string
	logger *zap.Logger
}

// NewHandlers creates handlers acting on behalf of userID
func NewHandlers(agent *core.Agent, writer storage.HealthWriter, userID string, logger *zap.Logger) *Handlers {
	return &Handlers{
		agent:  agent,
		writer: writer,
		userID: userID,
		logger: logging.OrNop(logger),
	}
}

type askCoachParams struct {
	Message        string   `json:"message"`
	ConversationID string   `json:"conversation_id"`
	Topics         []string `json:"topics"`
}

type conversationParams struct {
	ConversationID string `json:"conversation_id"`
}

type listParams struct {
	Limit int `json:"limit"`
}

type contextParams struct {
	Topics []string `json:"topics"`
}

type logMealParams struct {
	Description string   `json:"description"`
	MealType    string   `json:"meal_type"`
	Calories    *float64 `json:"calories"`
	Protein     *float64 `json:"protein"`
	Carbs       *float64 `json:"carbs"`
	Fat         *float64 `json:"fat"`
	LoggedAt    string   `json:"logged_at"`
}

// AskCoach handles the ask_coach tool
func (h *Handlers) AskCoach(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params askCoachParams
	if err := bindArguments(request, &params); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(params.Message) == "" {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}

	result, err := h.agent.ProcessUserQuery(ctx, h.userID, params.Message, core.QueryOptions{
		ConversationID: params.ConversationID,
		ExplicitTopics: models.ParseTopics(params.Topics),
	})
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(result)
}

// ListConversations handles the list_conversations tool
func (h *Handlers) ListConversations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := listParams{Limit: 20}
	if err := bindArguments(request, &params); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	convs, err := h.agent.Conversations().FetchRecentConversations(ctx, h.userID, params.Limit)
	if err != nil {
		return toolError(err), nil
	}
	if convs == nil {
		convs = []models.Conversation{}
	}

	return jsonResult(map[string]interface{}{"conversations": convs})
}

// GetConversation handles the get_conversation tool
func (h *Handlers) GetConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params conversationParams
	if err := bindArguments(request, &params); err != nil || params.ConversationID == "" {
		return mcp.NewToolResultError("conversation_id argument is required and must be a string"), nil
	}

	msgs, err := h.agent.Conversations().FetchMessages(ctx, h.userID, params.ConversationID)
	if err != nil {
		return toolError(err), nil
	}
	if len(msgs) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("conversation %s not found", params.ConversationID)), nil
	}

	return jsonResult(map[string]interface{}{
		"conversation_id": params.ConversationID,
		"messages":        msgs,
	})
}

// DeleteConversation handles the delete_conversation tool
func (h *Handlers) DeleteConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params conversationParams
	if err := bindArguments(request, &params); err != nil || params.ConversationID == "" {
		return mcp.NewToolResultError("conversation_id argument is required and must be a string"), nil
	}

	n, err := h.agent.Conversations().DeleteConversation(ctx, h.userID, params.ConversationID)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(map[string]interface{}{"deleted": n})
}

// GetHealthContext handles the get_health_context tool
func (h *Handlers) GetHealthContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params contextParams
	if err := bindArguments(request, &params); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	_, text, err := h.agent.Context(ctx, h.userID, models.ParseTopics(params.Topics))
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(text), nil
}

// LogMeal handles the log_meal tool
func (h *Handlers) LogMeal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.userID == "" {
		return toolError(core.ErrUnauthenticated), nil
	}

	var params logMealParams
	if err := bindArguments(request, &params); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entry := &models.DietEntry{
		UserID:      h.userID,
		Type:        models.EntryMeal,
		MealType:    strings.ToLower(strings.TrimSpace(params.MealType)),
		Description: strings.TrimSpace(params.Description),
	}
	if params.LoggedAt != "" {
		t, err := time.Parse(time.RFC3339, params.LoggedAt)
		if err != nil {
			return mcp.NewToolResultError("logged_at must be an RFC3339 timestamp"), nil
		}
		entry.LoggedAt = t
	}
	if params.Calories != nil || params.Protein != nil || params.Carbs != nil || params.Fat != nil {
		entry.Nutrition = &models.Nutrition{
			Calories: deref(params.Calories),
			Protein:  deref(params.Protein),
			Carbs:    deref(params.Carbs),
			Fat:      deref(params.Fat),
		}
	}
	if err := entry.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.writer.AddDietEntry(ctx, entry); err != nil {
		h.logger.Error("failed to log meal", zap.String("user_id", h.userID), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to log meal: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"success": true,
		"entry":   entry,
	})
}

// bindArguments decodes the tool arguments into target through JSON
func bindArguments(request mcp.CallToolRequest, target interface{}) error {
	if request.Params.Arguments == nil {
		return nil
	}
	raw, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return fmt.Errorf("failed to read arguments: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, core.ErrUnauthenticated) {
		return mcp.NewToolResultError("no user configured: set NUTRICOACH_USER or pass --user")
	}
	return mcp.NewToolResultError(err.Error())
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

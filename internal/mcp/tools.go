// ABOUTME: MCP tool definitions and registration for the coach server
// ABOUTME: Declares JSON schemas for the six coach tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

var topicSchema = map[string]interface{}{
	"type": "array",
	"items": map[string]interface{}{
		"type": "string",
		"enum": []string{"profile", "health", "today", "meals", "habits", "reminders"},
	},
	"description": "Health data topics to include. Omit to let the coach decide.",
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, handlers *Handlers) {
	// 1. ask_coach - run one coach turn
	server.AddTool(mcp.Tool{
		Name:        "ask_coach",
		Description: "Ask the nutrition coach a question. The coach reads the user's health data for the topics in the question (or @mentions) and answers with Key Insights, Action Items and Additional Tips.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "The user's question",
				},
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Continue an existing conversation (omit to start a new one)",
				},
				"topics": topicSchema,
			},
			Required: []string{"message"},
		},
	}, handlers.AskCoach)

	// 2. list_conversations - recent conversation summaries
	server.AddTool(mcp.Tool{
		Name:        "list_conversations",
		Description: "List the user's most recent coach conversations, newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of conversations to return (default: 20)",
					"default":     20,
				},
			},
		},
	}, handlers.ListConversations)

	// 3. get_conversation - full message history
	server.AddTool(mcp.Tool{
		Name:        "get_conversation",
		Description: "Get every message of one conversation, oldest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation ID",
				},
			},
			Required: []string{"conversation_id"},
		},
	}, handlers.GetConversation)

	// 4. delete_conversation
	server.AddTool(mcp.Tool{
		Name:        "delete_conversation",
		Description: "Delete one conversation and all of its messages.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation ID",
				},
			},
			Required: []string{"conversation_id"},
		},
	}, handlers.DeleteConversation)

	// 5. get_health_context - what the coach would see
	server.AddTool(mcp.Tool{
		Name:        "get_health_context",
		Description: "Show the user's health data as the coach sees it, for the given topics (all when omitted).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"topics": topicSchema,
			},
		},
	}, handlers.GetHealthContext)

	// 6. log_meal - record a meal
	server.AddTool(mcp.Tool{
		Name:        "log_meal",
		Description: "Log a meal the user ate. Nutrition values are optional.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"description": map[string]interface{}{
					"type":        "string",
					"description": "What was eaten",
				},
				"meal_type": map[string]interface{}{
					"type":        "string",
					"description": "breakfast, lunch, dinner or snack",
				},
				"calories": map[string]interface{}{"type": "number", "description": "Calories (kcal)"},
				"protein":  map[string]interface{}{"type": "number", "description": "Protein (g)"},
				"carbs":    map[string]interface{}{"type": "number", "description": "Carbohydrates (g)"},
				"fat":      map[string]interface{}{"type": "number", "description": "Fat (g)"},
				"logged_at": map[string]interface{}{
					"type":        "string",
					"description": "RFC3339 time the meal was eaten (defaults to now)",
				},
			},
			Required: []string{"description"},
		},
	}, handlers.LogMeal)
}

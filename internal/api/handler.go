// ABOUTME: HTTP handlers for coach turns, history and health context
// ABOUTME: JSON request and response helpers shared by every route
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/harper/nutricoach/internal/core"
	"github.com/harper/nutricoach/internal/identity"
	"github.com/harper/nutricoach/internal/logging"
	"github.com/harper/nutricoach/internal/models"
	"go.uber.org/zap"
)

// maxChatBody bounds the JSON body of a chat request
const maxChatBody = 64 << 10

// Handler serves the chat and history endpoints.
type Handler struct {
	agent        *core.Agent
	logger       *zap.Logger
	historyLimit int
}

// NewHandler creates a Handler over agent.
func NewHandler(agent *core.Agent, historyLimit int, logger *zap.Logger) *Handler {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &Handler{
		agent:        agent,
		logger:       logging.OrNop(logger),
		historyLimit: historyLimit,
	}
}

// ChatRequest is the body of POST /api/chat and of a /ws/chat frame.
type ChatRequest struct {
	Message        string   `json:"message"`
	ConversationID string   `json:"conversation_id,omitempty"`
	Topics         []string `json:"topics,omitempty"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error         string `json:"error"`
	LoginRequired bool   `json:"login_required,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// RegisterRoutes mounts the /api routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Get("/context", h.Context)
		r.Get("/conversations", h.ListConversations)
		r.Get("/conversations/{id}/messages", h.GetMessages)
		r.Delete("/conversations/{id}", h.DeleteConversation)
	})
}

// Chat runs one coach turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	userID := identity.UserIDFromContext(r.Context())
	result, err := h.agent.ProcessUserQuery(r.Context(), userID, req.Message, core.QueryOptions{
		ConversationID: req.ConversationID,
		ExplicitTopics: models.ParseTopics(req.Topics),
	})
	if err != nil {
		h.writeAgentError(w, err)
		return
	}

	JSON(w, http.StatusOK, result)
}

// Context returns the formatted health context for ?topics=a,b (all when absent).
func (h *Handler) Context(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	topics := models.ParseTopics(splitList(r.URL.Query().Get("topics")))

	hc, text, err := h.agent.Context(r.Context(), userID, topics)
	if err != nil {
		h.writeAgentError(w, err)
		return
	}
	if len(topics) == 0 {
		topics = models.AllTopics()
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"topics":  topics,
		"context": hc,
		"text":    text,
	})
}

// ListConversations returns the caller's recent conversations.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	convs, err := h.agent.Conversations().FetchRecentConversations(r.Context(), identity.UserIDFromContext(r.Context()), limit)
	if err != nil {
		h.writeAgentError(w, err)
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}

	JSON(w, http.StatusOK, map[string]interface{}{"conversations": convs})
}

// GetMessages returns one conversation's messages, oldest first.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	convID := chi.URLParam(r, "id")
	msgs, err := h.agent.Conversations().FetchMessages(r.Context(), identity.UserIDFromContext(r.Context()), convID)
	if err != nil {
		h.writeAgentError(w, err)
		return
	}
	if len(msgs) == 0 {
		Error(w, http.StatusNotFound, "conversation not found")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"conversation_id": convID,
		"messages":        msgs,
	})
}

// DeleteConversation removes one conversation.
func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	convID := chi.URLParam(r, "id")
	n, err := h.agent.Conversations().DeleteConversation(r.Context(), identity.UserIDFromContext(r.Context()), convID)
	if err != nil {
		h.writeAgentError(w, err)
		return
	}
	if n == 0 {
		Error(w, http.StatusNotFound, "conversation not found")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"deleted": n})
}

// statusFor maps an agent error to an HTTP status and body
func statusFor(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorResponse{Error: err.Error(), LoginRequired: true}
	case errors.Is(err, core.ErrEmptyQuery):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	case errors.Is(err, core.ErrTurnInProgress):
		return http.StatusConflict, ErrorResponse{Error: err.Error()}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal error"}
}

func (h *Handler) writeAgentError(w http.ResponseWriter, err error) {
	status, body := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	JSON(w, status, body)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

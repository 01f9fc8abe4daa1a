// ABOUTME: WebSocket chat stream for coach turns
// ABOUTME: Sends tool-call progress and the final answer as JSON frames
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/harper/nutricoach/internal/core"
	"github.com/harper/nutricoach/internal/identity"
	"github.com/harper/nutricoach/internal/models"
	"go.uber.org/zap"
)

// Frame types sent on /ws/chat
const (
	FrameToolCalls = "tool_calls"
	FrameResult    = "result"
	FrameError     = "error"
)

const wsWriteTimeout = 10 * time.Second

// Frame is one server-to-client message on /ws/chat
type Frame struct {
	Type          string            `json:"type"`
	ToolCalls     []models.ToolCall `json:"tool_calls,omitempty"`
	Result        *core.QueryResult `json:"result,omitempty"`
	Error         string            `json:"error,omitempty"`
	LoginRequired bool              `json:"login_required,omitempty"`
}

// ChatSocket streams coach turns over a WebSocket: tool-call snapshots while a
// turn runs, then its result. Each client frame is a ChatRequest.
type ChatSocket struct {
	agent          *core.Agent
	logger         *zap.Logger
	originPatterns []string
}

// NewChatSocket creates the /ws/chat handler. Empty originPatterns allows only same-origin.
func NewChatSocket(agent *core.Agent, originPatterns []string, logger *zap.Logger) *ChatSocket {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatSocket{agent: agent, logger: logger, originPatterns: originPatterns}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (s *ChatSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns,
	})
	if err != nil {
		s.logger.Warn("failed to accept websocket", zap.Error(err))
		return
	}
	defer func() { _ = ws.Close(websocket.StatusNormalClosure, "bye") }()

	ctx := r.Context()
	for {
		var req ChatRequest
		if err := wsjson.Read(ctx, ws, &req); err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				s.logger.Debug("websocket read ended", zap.String("user_id", userID), zap.Error(err))
			}
			return
		}

		if err := s.turn(ctx, ws, userID, req); err != nil {
			s.logger.Debug("websocket write failed", zap.String("user_id", userID), zap.Error(err))
			return
		}
	}
}

// turn runs one request and writes its frames
func (s *ChatSocket) turn(ctx context.Context, ws *websocket.Conn, userID string, req ChatRequest) error {
	result, err := s.agent.ProcessUserQuery(ctx, userID, req.Message, core.QueryOptions{
		ConversationID: req.ConversationID,
		ExplicitTopics: models.ParseTopics(req.Topics),
		OnToolCalls: func(calls []models.ToolCall) {
			if err := writeFrame(ctx, ws, Frame{Type: FrameToolCalls, ToolCalls: calls}); err != nil {
				s.logger.Debug("tool call frame dropped", zap.Error(err))
			}
		},
	})
	if err != nil {
		_, body := statusFor(err)
		return writeFrame(ctx, ws, Frame{Type: FrameError, Error: body.Error, LoginRequired: body.LoginRequired})
	}
	return writeFrame(ctx, ws, Frame{Type: FrameResult, Result: result})
}

func writeFrame(ctx context.Context, ws *websocket.Conn, f Frame) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, ws, f)
}

// ABOUTME: Agent is the single entry point for a coach turn: topics, context, pipeline, persistence
// ABOUTME: Turns are serialized per conversation; only sentinel errors reach the caller
package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/harper/nutricoach/internal/logging"
	"github.com/harper/nutricoach/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrUnauthenticated is returned when no user ID was resolved for the request
	ErrUnauthenticated = errors.New("login required")

	// ErrEmptyQuery is returned for a blank message
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrTurnInProgress is returned when another turn is running on the same conversation
	ErrTurnInProgress = errors.New("a turn is already in progress for this conversation")
)

// QueryOptions are the optional inputs of a turn
type QueryOptions struct {
	// ExplicitTopics are caller-selected topics, merged ahead of @mentions
	ExplicitTopics []models.TopicScope

	// ConversationID continues an existing conversation; empty starts a new one
	ConversationID string

	// OnToolCalls receives tool-call snapshots while the turn runs
	OnToolCalls ToolCallFunc
}

// QueryResult is the outcome of a turn
type QueryResult struct {
	Response           string              `json:"response"`
	Thinking           string              `json:"thinking"`
	ContextUsed        string              `json:"context_used"`
	ConversationID     string              `json:"conversation_id"`
	AutoDetectedTopics []models.TopicScope `json:"auto_detected_topics"`
	ExplicitTopics     []models.TopicScope `json:"explicit_topics"`
	TopicsUsed         []models.TopicScope `json:"topics_used"`
	Persisted          bool                `json:"persisted"`
}

// Components are the collaborators an Agent drives
type Components struct {
	Extractor     *TopicExtractor
	Fetcher       *ContextFetcher
	Pipeline      *Pipeline
	Conversations *ConversationManager
	Presenter     *ToolCallPresenter
	Logger        *zap.Logger
}

// Agent runs coach turns
type Agent struct {
	extractor     *TopicExtractor
	fetcher       *ContextFetcher
	pipeline      *Pipeline
	conversations *ConversationManager
	presenter     *ToolCallPresenter
	logger        *zap.Logger
	turns         *turnGuard
}

// NewAgent creates an agent. Extractor and Presenter default when nil.
func NewAgent(c Components) *Agent {
	if c.Extractor == nil {
		c.Extractor = NewTopicExtractor(nil)
	}
	if c.Presenter == nil {
		c.Presenter = NewToolCallPresenter(DefaultToolCallDelay)
	}
	return &Agent{
		extractor:     c.Extractor,
		fetcher:       c.Fetcher,
		pipeline:      c.Pipeline,
		conversations: c.Conversations,
		presenter:     c.Presenter,
		logger:        logging.OrNop(c.Logger),
		turns:         newTurnGuard(),
	}
}

// Conversations exposes the history operations
func (a *Agent) Conversations() *ConversationManager {
	return a.conversations
}

// Extract runs topic extraction without fetching anything
func (a *Agent) Extract(message string) ExtractedTopics {
	return a.extractor.Extract(message)
}

// Context fetches and formats the given topics (all when empty) for a user
func (a *Agent) Context(ctx context.Context, userID string, topics []models.TopicScope) (*models.UserHealthContext, string, error) {
	if userID == "" {
		return nil, "", ErrUnauthenticated
	}
	if len(topics) == 0 {
		topics = models.AllTopics()
	}
	hc := a.fetcher.Fetch(ctx, userID, topics)
	return hc, FormatContext(hc), nil
}

// ProcessUserQuery runs one coach turn
func (a *Agent) ProcessUserQuery(ctx context.Context, userID, query string, opts QueryOptions) (*QueryResult, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	if opts.ConversationID != "" {
		release, ok := a.turns.acquire(userID + "/" + opts.ConversationID)
		if !ok {
			return nil, ErrTurnInProgress
		}
		defer release()
	}

	start := time.Now()
	extracted := a.extractor.Extract(query).WithExplicit(opts.ExplicitTopics)
	topics := extracted.Resolve()

	if opts.OnToolCalls != nil {
		stop := a.presenter.Start(ctx, topics, opts.OnToolCalls)
		defer stop()
	}

	hc := a.fetcher.Fetch(ctx, userID, topics)
	contextText := FormatContext(hc)

	answer := a.pipeline.Respond(ctx, query, contextText)

	result := &QueryResult{
		Response:           answer.Response,
		Thinking:           answer.Thinking,
		ContextUsed:        contextText,
		ConversationID:     opts.ConversationID,
		AutoDetectedTopics: orNoTopics(extracted.Implicit),
		ExplicitTopics:     orNoTopics(extracted.Explicit),
		TopicsUsed:         topics,
	}

	// The turn is persisted even if the caller has gone away
	persistCtx := context.WithoutCancel(ctx)

	userRow := a.conversations.StoreMessage(persistCtx, userID, opts.ConversationID, Message{
		Role:    models.RoleUser,
		Content: query,
	})
	result.ConversationID = userRow.ConversationID

	coachMsg := Message{Role: models.RoleAssistant, Content: answer.Response}
	if !userRow.Success && opts.ConversationID == "" {
		// the coach row is the first stored row, so it carries the title
		coachMsg.Title = models.DeriveTitle(query)
	}
	coachRow := a.conversations.StoreMessage(persistCtx, userID, userRow.ConversationID, coachMsg)
	result.Persisted = userRow.Success && coachRow.Success

	a.logger.Info("coach turn complete",
		zap.String("user_id", userID),
		zap.String("conversation_id", result.ConversationID),
		zap.Strings("topics", models.TopicStrings(topics)),
		zap.Bool("analyzer_failed", answer.AnalyzerFailed),
		zap.Bool("coach_failed", answer.CoachFailed),
		zap.Bool("persisted", result.Persisted),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func orNoTopics(topics []models.TopicScope) []models.TopicScope {
	if topics == nil {
		return []models.TopicScope{}
	}
	return topics
}

// turnGuard admits one turn per key at a time
type turnGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newTurnGuard() *turnGuard {
	return &turnGuard{active: make(map[string]struct{})}
}

func (g *turnGuard) acquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[key]; busy {
		return nil, false
	}
	g.active[key] = struct{}{}

	return func() {
		g.mu.Lock()
		delete(g.active, key)
		g.mu.Unlock()
	}, true
}

// ABOUTME: Chat completion contract shared by the OpenAI and Gemini clients
// ABOUTME: Selects a provider from configuration; non-streaming, text in and text out
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harper/nutricoach/internal/config"
)

// ErrNoProvider is returned when no API key is configured for the selected provider
var ErrNoProvider = errors.New("no LLM provider configured")

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat prompt
type Message struct {
	Role    string
	Content string
}

// CompletionRequest is a single non-streaming chat completion call
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Provider produces a chat completion
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Name() string
}

// RetryPolicy bounds the retry loop each client runs around a provider call
type RetryPolicy struct {
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		RetryDelay: time.Second,
		Timeout:    30 * time.Second,
	}
}

// PolicyFromConfig returns the retry policy configured in cfg
func PolicyFromConfig(cfg *config.Config) RetryPolicy {
	return RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Timeout:    cfg.LLMTimeout,
	}
}

// Budget is the longest a whole retry loop can run: every attempt hitting
// Timeout plus the largest possible backoff between attempts
func (p RetryPolicy) Budget() time.Duration {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	budget := timeout * time.Duration(p.MaxRetries+1)
	for attempt := 1; attempt <= p.MaxRetries; attempt++ {
		backoff := p.RetryDelay << uint(min(attempt, 30))
		if backoff > 30*time.Second || backoff < 0 {
			backoff = 30 * time.Second
		}
		budget += backoff + backoff/4
	}
	return budget
}

// NewProvider builds the provider named in cfg.
// A missing API key yields Unavailable so the coach still answers with its fallback.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	policy := PolicyFromConfig(cfg)

	switch cfg.Provider {
	case config.ProviderGemini:
		if cfg.GeminiKey == "" {
			return Unavailable{}, nil
		}
		return NewGeminiClient(ctx, cfg.GeminiKey, policy)
	case config.ProviderOpenAI, "":
		if cfg.OpenAIKey == "" {
			return Unavailable{}, nil
		}
		return NewOpenAIClientWithConfig(&ClientConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Retry:   policy,
		})
	}
	return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
}

// Unavailable is the provider used when no credentials are configured
type Unavailable struct{}

// Complete always fails with ErrNoProvider
func (Unavailable) Complete(context.Context, CompletionRequest) (string, error) {
	return "", ErrNoProvider
}

// Name returns "unavailable"
func (Unavailable) Name() string { return "unavailable" }

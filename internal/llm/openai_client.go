// ABOUTME: OpenAI chat completion client with retry and per-attempt timeout
// ABOUTME: Also serves OpenAI-compatible gateways through a custom base URL
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harper/nutricoach/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Retry   RetryPolicy
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey: apiKey,
		Retry:  DefaultRetryPolicy(),
	}
}

// chatCompleter is the slice of the go-openai client this package calls
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client chatCompleter
	retry  RetryPolicy
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		retry:  config.Retry,
	}, nil
}

// Name returns "openai"
func (c *OpenAIClient) Name() string { return "openai" }

// Complete runs a chat completion, retrying transient failures with backoff
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var lastErr error

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := util.SleepContext(ctx, util.CalculateBackoff(c.retry.RetryDelay, attempt)); err != nil {
				return "", fmt.Errorf("attempt %d: %w", attempt+1, err)
			}
		}

		content, err := c.completeOnce(ctx, chatReq)
		if err == nil {
			return content, nil
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)

		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}

	return "", fmt.Errorf("chat completion failed: %w", lastErr)
}

func (c *OpenAIClient) completeOnce(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	timeout := c.retry.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// retryable reports whether an API error is worth another attempt.
// Client errors other than rate limiting will fail the same way again.
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 0
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}
	return true
}

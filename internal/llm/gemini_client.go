// ABOUTME: Gemini chat completion client using the Google GenAI SDK
// ABOUTME: System messages become the system instruction; transient errors are retried like the OpenAI client
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/nutricoach/internal/util"
	"google.golang.org/genai"
)

// contentGenerator is the slice of the genai Models service this package calls
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient wraps the GenAI client with retry logic
type GeminiClient struct {
	models contentGenerator
	retry  RetryPolicy
}

// NewGeminiClient creates a Gemini client for the Gemini API backend
func NewGeminiClient(ctx context.Context, apiKey string, retry RetryPolicy) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{models: client.Models, retry: retry}, nil
}

// Name returns "gemini"
func (c *GeminiClient) Name() string { return "gemini" }

// Complete runs a generate-content call, retrying failures with backoff
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	contents, system := toGeminiContents(req.Messages)

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	var lastErr error

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := util.SleepContext(ctx, util.CalculateBackoff(c.retry.RetryDelay, attempt)); err != nil {
				return "", fmt.Errorf("attempt %d: %w", attempt+1, err)
			}
		}

		text, err := c.generateOnce(ctx, req.Model, contents, cfg)
		if err == nil {
			return text, nil
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)

		if ctx.Err() != nil || !geminiRetryable(err) {
			break
		}
	}

	return "", fmt.Errorf("GenAI generate failed: %w", lastErr)
}

func (c *GeminiClient) generateOnce(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	timeout := c.retry.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no candidates returned")
	}
	return text, nil
}

// geminiRetryable reports whether a GenAI error is worth another attempt.
// Client errors other than rate limiting will fail the same way again.
func geminiRetryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500 || apiErr.Code == 0
	}
	return true
}

// toGeminiContents splits system messages out and maps assistant turns to the model role
func toGeminiContents(messages []Message) ([]*genai.Content, string) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return contents, strings.Join(system, "\n\n")
}

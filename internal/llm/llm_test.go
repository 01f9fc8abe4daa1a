// ABOUTME: Tests for the chat providers using fake transports
// ABOUTME: Verifies retry behavior, request mapping and provider selection
package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harper/nutricoach/internal/config"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeCompleter struct {
	errs  []error
	reply string
	calls int
	last  openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.last = req
	if f.calls <= len(f.errs) {
		return openai.ChatCompletionResponse{}, f.errs[f.calls-1]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.reply}}},
	}, nil
}

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{MaxRetries: retries, RetryDelay: time.Millisecond, Timeout: time.Second}
}

func TestOpenAIComplete_MapsRequest(t *testing.T) {
	fake := &fakeCompleter{reply: "eat more beans"}
	client := &OpenAIClient{client: fake, retry: fastPolicy(0)}

	out, err := client.Complete(context.Background(), CompletionRequest{
		Model:       "gpt-4o-mini",
		Messages:    []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hi"}},
		Temperature: 0.3,
		MaxTokens:   300,
	})
	require.NoError(t, err)
	assert.Equal(t, "eat more beans", out)
	assert.Equal(t, "gpt-4o-mini", fake.last.Model)
	assert.Equal(t, 300, fake.last.MaxTokens)
	assert.InDelta(t, 0.3, fake.last.Temperature, 1e-6)
	require.Len(t, fake.last.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, fake.last.Messages[0].Role)
}

func TestOpenAIComplete_RetriesTransient(t *testing.T) {
	fake := &fakeCompleter{
		errs:  []error{&openai.APIError{HTTPStatusCode: 503, Message: "overloaded"}},
		reply: "ok",
	}
	client := &OpenAIClient{client: fake, retry: fastPolicy(2)}

	out, err := client.Complete(context.Background(), CompletionRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, fake.calls)
}

func TestOpenAIComplete_StopsOnClientError(t *testing.T) {
	fake := &fakeCompleter{
		errs: []error{&openai.APIError{HTTPStatusCode: 401, Message: "bad key"}},
	}
	client := &OpenAIClient{client: fake, retry: fastPolicy(3)}

	_, err := client.Complete(context.Background(), CompletionRequest{Model: "m"})
	require.Error(t, err)
	assert.Equal(t, 1, fake.calls)
}

func TestOpenAIComplete_ExhaustsRetries(t *testing.T) {
	boom := errors.New("connection reset")
	fake := &fakeCompleter{errs: []error{boom, boom, boom}}
	client := &OpenAIClient{client: fake, retry: fastPolicy(2)}

	_, err := client.Complete(context.Background(), CompletionRequest{Model: "m"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, fake.calls)
}

func TestOpenAIComplete_EmptyChoices(t *testing.T) {
	client := &OpenAIClient{client: emptyCompleter{}, retry: fastPolicy(0)}
	_, err := client.Complete(context.Background(), CompletionRequest{Model: "m"})
	assert.Error(t, err)
}

type emptyCompleter struct{}

func (emptyCompleter) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, nil
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("")
	assert.Error(t, err)

	client, err := NewOpenAIClientWithConfig(&ClientConfig{APIKey: "k", BaseURL: "http://localhost:1234/v1"})
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Name())
}

type fakeGenerator struct {
	err    error
	errs   []error
	calls  int
	text   string
	model  string
	config *genai.GenerateContentConfig
	turns  []*genai.Content
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.turns, f.config = model, contents, cfg
	f.calls++
	if f.calls <= len(f.errs) {
		return nil, f.errs[f.calls-1]
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: string(genai.RoleModel), Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func TestGeminiComplete(t *testing.T) {
	fake := &fakeGenerator{text: "drink water"}
	client := &GeminiClient{models: fake, retry: fastPolicy(0)}

	out, err := client.Complete(context.Background(), CompletionRequest{
		Model: "gemini-2.5-flash",
		Messages: []Message{
			{Role: RoleSystem, Content: "be kind"},
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
		},
		Temperature: 0.7,
		MaxTokens:   1200,
	})
	require.NoError(t, err)
	assert.Equal(t, "drink water", out)
	assert.Equal(t, "gemini-2.5-flash", fake.model)
	require.Len(t, fake.turns, 2)
	assert.Equal(t, string(genai.RoleModel), fake.turns[1].Role)
	require.NotNil(t, fake.config.SystemInstruction)
	assert.Equal(t, int32(1200), fake.config.MaxOutputTokens)
	require.NotNil(t, fake.config.Temperature)
	assert.InDelta(t, 0.7, *fake.config.Temperature, 1e-6)
}

func TestGeminiComplete_Error(t *testing.T) {
	fake := &fakeGenerator{err: errors.New("quota")}
	client := &GeminiClient{models: fake, retry: fastPolicy(1)}

	_, err := client.Complete(context.Background(), CompletionRequest{Model: "m"})
	assert.Error(t, err)
}

func TestGeminiComplete_RetriesTransient(t *testing.T) {
	fake := &fakeGenerator{
		errs: []error{genai.APIError{Code: 503, Message: "overloaded"}},
		text: "ok",
	}
	client := &GeminiClient{models: fake, retry: fastPolicy(2)}

	out, err := client.Complete(context.Background(), CompletionRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, fake.calls)
}

func TestGeminiComplete_StopsOnClientError(t *testing.T) {
	fake := &fakeGenerator{err: genai.APIError{Code: 404, Message: "model not found"}}
	client := &GeminiClient{models: fake, retry: fastPolicy(3)}

	_, err := client.Complete(context.Background(), CompletionRequest{Model: "gpt-4o-mini"})
	require.Error(t, err)
	assert.Equal(t, 1, fake.calls)

	var apiErr genai.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestRetryPolicyBudget(t *testing.T) {
	p := RetryPolicy{MaxRetries: 2, RetryDelay: time.Second, Timeout: 10 * time.Second}
	// three timed-out attempts plus backoffs of up to 2.5s and 5s
	assert.Equal(t, 30*time.Second+2500*time.Millisecond+5*time.Second, p.Budget())

	none := RetryPolicy{Timeout: 5 * time.Second}
	assert.Equal(t, 5*time.Second, none.Budget())

	capped := RetryPolicy{MaxRetries: 1, RetryDelay: time.Minute, Timeout: time.Second}
	assert.Equal(t, time.Second+30*time.Second+7500*time.Millisecond, capped.Budget())
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewProvider(ctx, &config.Config{Provider: config.ProviderOpenAI})
	require.NoError(t, err)
	assert.Equal(t, "unavailable", p.Name())
	_, err = p.Complete(ctx, CompletionRequest{})
	assert.ErrorIs(t, err, ErrNoProvider)

	p, err = NewProvider(ctx, &config.Config{Provider: config.ProviderGemini})
	require.NoError(t, err)
	assert.Equal(t, "unavailable", p.Name())

	p, err = NewProvider(ctx, &config.Config{Provider: config.ProviderOpenAI, OpenAIKey: "k", LLMTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = NewProvider(ctx, &config.Config{Provider: "llama"})
	assert.Error(t, err)
}

// ABOUTME: Pipeline runs the analyzer and coach stages against one chat provider
// ABOUTME: Stages run in sequence; a failed stage yields FallbackMessage instead of an error
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/nutricoach/internal/llm"
	"github.com/harper/nutricoach/internal/logging"
	"go.uber.org/zap"
)

// FallbackMessage replaces the output of a stage whose provider call failed
const FallbackMessage = "I'm sorry, I'm having trouble putting together an answer right now. Please try again in a moment."

// Coach answer section headings
const (
	SectionKeyInsights    = "Key Insights"
	SectionActionItems    = "Action Items"
	SectionAdditionalTips = "Additional Tips"
)

// PipelineConfig holds generation parameters for both stages
type PipelineConfig struct {
	Model               string
	AnalyzerTemperature float32
	CoachTemperature    float32
	AnalyzerMaxTokens   int
	CoachMaxTokens      int
	// Timeout bounds a whole stage, including the provider's own retries
	Timeout      time.Duration
	ProteinLinks []string
}

// DefaultPipelineConfig returns the generation defaults
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Model:               "gpt-4o-mini",
		AnalyzerTemperature: 0.3,
		CoachTemperature:    0.7,
		AnalyzerMaxTokens:   300,
		CoachMaxTokens:      1200,
		Timeout:             30 * time.Second,
	}
}

// PipelineResult carries both stage outputs
type PipelineResult struct {
	Thinking       string `json:"thinking"`
	Response       string `json:"response"`
	AnalyzerFailed bool   `json:"analyzer_failed,omitempty"`
	CoachFailed    bool   `json:"coach_failed,omitempty"`
}

// StageInput is everything a prompt builder may interpolate
type StageInput struct {
	Query        string
	Context      string
	Analysis     string
	ProteinLinks []string
}

// Stage is one parameterized provider call
type Stage struct {
	Label       string
	Temperature float32
	MaxTokens   int
	Prompt      func(StageInput) []llm.Message
}

// Pipeline drives the analyzer then coach stages
type Pipeline struct {
	provider llm.Provider
	config   PipelineConfig
	logger   *zap.Logger
	analyzer Stage
	coach    Stage
}

// NewPipeline creates a pipeline over provider
func NewPipeline(provider llm.Provider, config PipelineConfig, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		provider: provider,
		config:   config,
		logger:   logging.OrNop(logger),
		analyzer: Stage{
			Label:       "analyzer",
			Temperature: config.AnalyzerTemperature,
			MaxTokens:   config.AnalyzerMaxTokens,
			Prompt:      analyzerPrompt,
		},
		coach: Stage{
			Label:       "coach",
			Temperature: config.CoachTemperature,
			MaxTokens:   config.CoachMaxTokens,
			Prompt:      coachPrompt,
		},
	}
}

// Respond runs the analyzer, then the coach with the analyzer's output. It never fails.
func (p *Pipeline) Respond(ctx context.Context, query, contextText string) PipelineResult {
	var result PipelineResult
	in := StageInput{
		Query:        query,
		Context:      contextText,
		ProteinLinks: p.config.ProteinLinks,
	}

	thinking, err := p.runStage(ctx, p.analyzer, in)
	if err != nil {
		p.logger.Warn("pipeline stage failed", zap.String("stage", p.analyzer.Label), zap.Error(err))
		thinking = FallbackMessage
		result.AnalyzerFailed = true
	}
	result.Thinking = thinking

	in.Analysis = thinking
	response, err := p.runStage(ctx, p.coach, in)
	if err != nil {
		p.logger.Warn("pipeline stage failed", zap.String("stage", p.coach.Label), zap.Error(err))
		response = FallbackMessage
		result.CoachFailed = true
	}
	result.Response = response

	return result
}

// runStage makes one bounded provider call for a stage
func (p *Pipeline) runStage(ctx context.Context, stage Stage, in StageInput) (string, error) {
	if p.provider == nil {
		return "", llm.ErrNoProvider
	}

	timeout := p.config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	out, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Model:       p.config.Model,
		Messages:    stage.Prompt(in),
		Temperature: stage.Temperature,
		MaxTokens:   stage.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%s stage: %w", stage.Label, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%s stage: %w", stage.Label, errors.New("empty completion"))
	}

	p.logger.Debug("pipeline stage complete",
		zap.String("stage", stage.Label),
		zap.Duration("duration", time.Since(start)),
		zap.Int("chars", len(out)),
	)
	return out, nil
}

func analyzerPrompt(in StageInput) []llm.Message {
	system := `You are a nutrition analyst preparing notes for a health coach.
Read the user's health data and question. In 2-3 sentences, identify which facts in the data
are relevant to the question and which constraints apply: dietary restrictions, allergies,
medical conditions, medications and recent intake. Do not answer the question itself.`

	user := fmt.Sprintf("USER HEALTH DATA:\n%s\n\nQUESTION:\n%s", in.Context, in.Query)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}
}

func coachPrompt(in StageInput) []llm.Message {
	var sb strings.Builder
	sb.WriteString("You are NutriCoach, a warm and encouraging nutrition coach.\n")
	sb.WriteString("Answer the user's question using their health data and the analyst's notes.\n")
	sb.WriteString("Respect every allergy, restriction and medical condition. Format the answer in markdown with exactly these sections:\n")
	fmt.Fprintf(&sb, "## %s\n## %s\n## %s\n", SectionKeyInsights, SectionActionItems, SectionAdditionalTips)
	sb.WriteString("Keep it practical and specific to this user.")

	if len(in.ProteinLinks) > 0 {
		sb.WriteString("\n\nIf the data or notes suggest the user is not getting enough protein, ")
		sb.WriteString("finish with a short \"Protein Support\" note that lists these links verbatim:\n")
		for _, link := range in.ProteinLinks {
			sb.WriteString("- ")
			sb.WriteString(link)
			sb.WriteString("\n")
		}
	}

	user := fmt.Sprintf("ANALYST NOTES:\n%s\n\nUSER HEALTH DATA:\n%s\n\nQUESTION:\n%s", in.Analysis, in.Context, in.Query)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: sb.String()},
		{Role: llm.RoleUser, Content: user},
	}
}

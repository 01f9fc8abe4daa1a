// ABOUTME: Wires configuration, storage, chat provider and the coach agent together
// ABOUTME: Shared by the CLI, the MCP server and the HTTP service
package app

import (
	"context"
	"fmt"

	"github.com/harper/nutricoach/internal/config"
	"github.com/harper/nutricoach/internal/core"
	"github.com/harper/nutricoach/internal/llm"
	"github.com/harper/nutricoach/internal/logging"
	"github.com/harper/nutricoach/internal/storage/sqlite"
	"go.uber.org/zap"
)

// App holds the long-lived components of a running coach
type App struct {
	Config   *config.Config
	Store    *sqlite.Storage
	Provider llm.Provider
	Agent    *core.Agent
	Logger   *zap.Logger
}

// New opens storage at cfg.DBPath (XDG default when empty) and builds the provider from cfg
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	var (
		store *sqlite.Storage
		err   error
	)
	if cfg.DBPath != "" {
		store, err = sqlite.NewStorageWithPath(cfg.DBPath)
	} else {
		store, err = sqlite.NewStorage()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	provider, err := llm.NewProvider(ctx, cfg)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	a, err := Assemble(cfg, store, provider, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

// Assemble builds the agent over an already-open store and provider
func Assemble(cfg *config.Config, store *sqlite.Storage, provider llm.Provider, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	keywords := core.DefaultKeywords()
	if cfg.KeywordsFile != "" {
		keywords, err = core.LoadKeywordMap(cfg.KeywordsFile)
		if err != nil {
			return nil, err
		}
	}

	if _, ok := provider.(llm.Unavailable); ok {
		logger.Warn("no API key configured for LLM provider; answers will use the fallback message",
			zap.String("provider", cfg.Provider))
	}

	pipeline := core.NewPipeline(provider, core.PipelineConfig{
		Model:               cfg.Model,
		AnalyzerTemperature: cfg.AnalyzerTemperature,
		CoachTemperature:    cfg.CoachTemperature,
		AnalyzerMaxTokens:   cfg.AnalyzerMaxTokens,
		CoachMaxTokens:      cfg.CoachMaxTokens,
		Timeout:             llm.PolicyFromConfig(cfg).Budget(),
		ProteinLinks:        cfg.ProteinLinks,
	}, logger.Named("pipeline"))

	agent := core.NewAgent(core.Components{
		Extractor:     core.NewTopicExtractor(keywords),
		Fetcher:       core.NewContextFetcher(store, logger.Named("context"), loc),
		Pipeline:      pipeline,
		Conversations: core.NewConversationManager(store, logger.Named("conversations")),
		Presenter:     core.NewToolCallPresenter(cfg.ToolCallDelay),
		Logger:        logger.Named("agent"),
	})

	return &App{
		Config:   cfg,
		Store:    store,
		Provider: provider,
		Agent:    agent,
		Logger:   logger,
	}, nil
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}

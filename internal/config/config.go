// ABOUTME: Centralized configuration for the nutrition coach binaries
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLM provider names
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Default models per provider, used when NUTRICOACH_MODEL is unset
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.0-flash"
)

// Config holds all configuration for the coach
type Config struct {
	// Storage and transport
	DBPath string
	Addr   string

	// LLM settings
	Provider            string
	OpenAIKey           string
	OpenAIBaseURL       string
	GeminiKey           string
	Model               string
	AnalyzerTemperature float32
	CoachTemperature    float32
	AnalyzerMaxTokens   int
	CoachMaxTokens      int
	LLMTimeout          time.Duration
	MaxRetries          int
	RetryDelay          time.Duration

	// Coach behavior
	KeywordsFile  string
	ToolCallDelay time.Duration
	Timezone      string
	ProteinLinks  []string
	HistoryLimit  int

	// Identity
	DefaultUser    string
	SessionTTL     time.Duration
	AllowedOrigins []string

	// Logging
	LogLevel string
	LogJSON  bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:              os.Getenv("NUTRICOACH_DB"),
		Addr:                getEnv("NUTRICOACH_ADDR", ":8080"),
		Provider:            strings.ToLower(getEnv("NUTRICOACH_LLM_PROVIDER", ProviderOpenAI)),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       os.Getenv("OPENAI_BASE_URL"),
		GeminiKey:           os.Getenv("GEMINI_API_KEY"),
		Model:               os.Getenv("NUTRICOACH_MODEL"),
		AnalyzerTemperature: float32(getEnvFloat("NUTRICOACH_ANALYZER_TEMPERATURE", 0.3)),
		CoachTemperature:    float32(getEnvFloat("NUTRICOACH_COACH_TEMPERATURE", 0.7)),
		AnalyzerMaxTokens:   getEnvInt("NUTRICOACH_ANALYZER_MAX_TOKENS", 300),
		CoachMaxTokens:      getEnvInt("NUTRICOACH_COACH_MAX_TOKENS", 1200),
		LLMTimeout:          getEnvDuration("NUTRICOACH_LLM_TIMEOUT", 30*time.Second),
		MaxRetries:          getEnvInt("NUTRICOACH_MAX_RETRIES", 2),
		RetryDelay:          getEnvDuration("NUTRICOACH_RETRY_DELAY", time.Second),
		KeywordsFile:        os.Getenv("NUTRICOACH_KEYWORDS_FILE"),
		ToolCallDelay:       getEnvDuration("NUTRICOACH_TOOLCALL_DELAY", 300*time.Millisecond),
		Timezone:            getEnv("NUTRICOACH_TIMEZONE", "Local"),
		ProteinLinks:        getEnvList("NUTRICOACH_PROTEIN_LINKS"),
		HistoryLimit:        getEnvInt("NUTRICOACH_HISTORY_LIMIT", 20),
		DefaultUser:         os.Getenv("NUTRICOACH_USER"),
		SessionTTL:          getEnvDuration("NUTRICOACH_SESSION_TTL", 720*time.Hour),
		AllowedOrigins:      getEnvList("NUTRICOACH_ALLOWED_ORIGINS"),
		LogLevel:            getEnv("NUTRICOACH_LOG_LEVEL", "info"),
		LogJSON:             getEnvBool("NUTRICOACH_LOG_JSON", true),
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Provider != ProviderOpenAI && c.Provider != ProviderGemini {
		return fmt.Errorf("NUTRICOACH_LLM_PROVIDER must be openai or gemini, got %q", c.Provider)
	}
	if c.AnalyzerTemperature < 0 || c.AnalyzerTemperature > 2 {
		return fmt.Errorf("NUTRICOACH_ANALYZER_TEMPERATURE must be 0-2, got %f", c.AnalyzerTemperature)
	}
	if c.CoachTemperature < 0 || c.CoachTemperature > 2 {
		return fmt.Errorf("NUTRICOACH_COACH_TEMPERATURE must be 0-2, got %f", c.CoachTemperature)
	}
	if c.AnalyzerMaxTokens <= 0 || c.CoachMaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got analyzer=%d coach=%d", c.AnalyzerMaxTokens, c.CoachMaxTokens)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("NUTRICOACH_LLM_TIMEOUT must be positive, got %s", c.LLMTimeout)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("NUTRICOACH_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.ToolCallDelay < 0 {
		return fmt.Errorf("NUTRICOACH_TOOLCALL_DELAY cannot be negative, got %s", c.ToolCallDelay)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("NUTRICOACH_HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("NUTRICOACH_SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone into the location used for calendar dates
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("NUTRICOACH_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DefaultModel returns the model used for provider when none is configured
func DefaultModel(provider string) string {
	if provider == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultOpenAIModel
}

// APIKey returns the key for the selected provider
func (c *Config) APIKey() string {
	if c.Provider == ProviderGemini {
		return c.GeminiKey
	}
	return c.OpenAIKey
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

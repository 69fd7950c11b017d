package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName string
	AppEnv  string
	AppPort string

	PreferredProvider string

	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIScoringModel string

	GoogleAIAPIKey string
	GoogleAIModel  string

	LocalAIHost  string
	LocalAIPort  string
	LocalAIModel string

	GenerationTemperature float32
	SummaryTemperature    float32
	ScoringTemperature    float32
	GenerationMaxTokens   int
	ScoringMaxTokens      int

	HealthCheckTimeout time.Duration
	CompletionTimeout  time.Duration
	SummaryThreshold   int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// LocalAIBaseURL returns the Ollama server base URL.
func (c Config) LocalAIBaseURL() string {
	return fmt.Sprintf("http://%s:%s", c.LocalAIHost, c.LocalAIPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("QUIZFORGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "QuizForge API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("provider.preferred", "local")
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.scoring_model", "gpt-4o-mini")
	v.SetDefault("google.model", "gemini-1.5-flash")
	v.SetDefault("local.host", "127.0.0.1")
	v.SetDefault("local.port", "11434")
	v.SetDefault("local.model", "gemma2:2b")
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("summary.temperature", 0.5)
	v.SetDefault("scoring.temperature", 0.3)
	v.SetDefault("generation.max_tokens", 2000)
	v.SetDefault("scoring.max_tokens", 500)
	v.SetDefault("health_check_timeout", "5s")
	v.SetDefault("completion_timeout", "2m")
	v.SetDefault("summary.threshold", 5000)

	healthTimeout, err := time.ParseDuration(v.GetString("health_check_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid health check timeout: %w", err)
	}

	completionTimeout, err := time.ParseDuration(v.GetString("completion_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid completion timeout: %w", err)
	}

	cfg := Config{
		AppName:               v.GetString("app.name"),
		AppEnv:                v.GetString("app.env"),
		AppPort:               v.GetString("app.port"),
		PreferredProvider:     strings.ToLower(v.GetString("provider.preferred")),
		OpenAIAPIKey:          v.GetString("openai.api_key"),
		OpenAIModel:           v.GetString("openai.model"),
		OpenAIScoringModel:    v.GetString("openai.scoring_model"),
		GoogleAIAPIKey:        v.GetString("google.api_key"),
		GoogleAIModel:         v.GetString("google.model"),
		LocalAIHost:           v.GetString("local.host"),
		LocalAIPort:           v.GetString("local.port"),
		LocalAIModel:          v.GetString("local.model"),
		GenerationTemperature: float32(v.GetFloat64("generation.temperature")),
		SummaryTemperature:    float32(v.GetFloat64("summary.temperature")),
		ScoringTemperature:    float32(v.GetFloat64("scoring.temperature")),
		GenerationMaxTokens:   v.GetInt("generation.max_tokens"),
		ScoringMaxTokens:      v.GetInt("scoring.max_tokens"),
		HealthCheckTimeout:    healthTimeout,
		CompletionTimeout:     completionTimeout,
		SummaryThreshold:      v.GetInt("summary.threshold"),
	}

	if cfg.GenerationMaxTokens <= 0 {
		cfg.GenerationMaxTokens = 2000
	}

	if cfg.ScoringMaxTokens <= 0 {
		cfg.ScoringMaxTokens = 500
	}

	if cfg.SummaryThreshold <= 0 {
		cfg.SummaryThreshold = 5000
	}

	return cfg, nil
}

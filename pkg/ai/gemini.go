package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

// GeminiConfig defines configuration options for the Google AI adapter.
type GeminiConfig struct {
	APIKey       string
	Model        string
	ScoringModel string
	Logger       zerolog.Logger
}

// GeminiClient implements Client against the Google AI generate-content API.
// The transport accepts a single content string, so only the final user
// message of a request is sent; system and assistant turns are dropped.
type GeminiClient struct {
	client *genai.Client
	cfg    GeminiConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewGeminiClient builds a new adapter bound to the provided credential.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google ai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}

	if cfg.ScoringModel == "" {
		cfg.ScoringModel = cfg.Model
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create google ai client: %w", err)
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &GeminiClient{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/quizforge/quizforge-api/pkg/ai/gemini"),
		logger: logger.With().Str("component", "gemini_client").Logger(),
	}, nil
}

// Provider returns the display label for this backend.
func (c *GeminiClient) Provider() string {
	return "Google AI"
}

// Close releases the underlying API connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Complete sends the final user message as a single content block and
// concatenates the text parts of the first candidate.
func (c *GeminiClient) Complete(parent context.Context, req CompletionRequest) (Completion, error) {
	modelName := c.resolveModel(req.Family)

	ctx, span := c.tracer.Start(parent, "gemini.complete", trace.WithAttributes(
		attribute.String("model", modelName),
		attribute.String("family", string(req.Family)),
	))
	defer span.End()

	content := LastUserContent(req.Messages)
	if content == "" {
		err := fmt.Errorf("no user message in completion request")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, err
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(content))
	completionDuration.WithLabelValues("google", string(req.Family)).Observe(time.Since(start).Seconds())
	if err != nil {
		completionFailures.WithLabelValues("google").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, fmt.Errorf("google ai completion: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		err := fmt.Errorf("empty response from google ai")
		completionFailures.WithLabelValues("google").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, err
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		err := fmt.Errorf("no text parts in google ai response")
		completionFailures.WithLabelValues("google").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, err
	}

	return Completion{Text: text, Provider: c.Provider()}, nil
}

func (c *GeminiClient) resolveModel(family ModelFamily) string {
	if family == FamilyScoring {
		return c.cfg.ScoringModel
	}
	return c.cfg.Model
}

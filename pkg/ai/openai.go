package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OpenAIConfig defines configuration options for the OpenAI adapter.
type OpenAIConfig struct {
	APIKey       string
	Model        string
	ScoringModel string
	Logger       zerolog.Logger
}

// OpenAIClient implements Client against the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds a new adapter bound to the provided credential.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}

	if cfg.ScoringModel == "" {
		cfg.ScoringModel = "gpt-4o-mini"
	}

	tracer := otel.Tracer("github.com/quizforge/quizforge-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIClient{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger.With().Str("component", "openai_client").Logger(),
	}, nil
}

// Provider returns the display label for this backend.
func (c *OpenAIClient) Provider() string {
	return "OpenAI"
}

// Complete sends the request to the chat completion endpoint and returns the
// first choice's content.
func (c *OpenAIClient) Complete(parent context.Context, req CompletionRequest) (Completion, error) {
	model := c.resolveModel(req.Family)

	ctx, span := c.tracer.Start(parent, "openai.complete", trace.WithAttributes(
		attribute.String("model", model),
		attribute.String("family", string(req.Family)),
	))
	defer span.End()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, message := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	completionDuration.WithLabelValues("openai", string(req.Family)).Observe(time.Since(start).Seconds())
	if err != nil {
		completionFailures.WithLabelValues("openai").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, fmt.Errorf("openai completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		completionFailures.WithLabelValues("openai").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, err
	}

	return Completion{
		Text:     strings.TrimSpace(resp.Choices[0].Message.Content),
		Provider: c.Provider(),
	}, nil
}

func (c *OpenAIClient) resolveModel(family ModelFamily) string {
	if family == FamilyScoring {
		return c.cfg.ScoringModel
	}
	return c.cfg.Model
}

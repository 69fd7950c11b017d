package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OllamaConfig defines configuration options for the local Ollama adapter.
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// OllamaClient implements Client against a local Ollama server. The generate
// endpoint takes a single prompt, so chat messages are flattened into
// role-prefixed lines before sending.
type OllamaClient struct {
	httpClient *http.Client
	cfg        OllamaConfig
	tracer     trace.Tracer
	logger     zerolog.Logger
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature   float32 `json:"temperature"`
	NumPredict    int     `json:"num_predict"`
	TopP          float32 `json:"top_p"`
	RepeatPenalty float32 `json:"repeat_penalty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaClient builds a new adapter bound to a local server and model.
func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	if cfg.Timeout <= 0 {
		// Local inference is slow; allow a couple of minutes per call.
		cfg.Timeout = 2 * time.Minute
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OllamaClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		tracer:     otel.Tracer("github.com/quizforge/quizforge-api/pkg/ai/ollama"),
		logger:     logger.With().Str("component", "ollama_client").Logger(),
	}
}

// Provider returns the display label for this backend, including the bound
// model name.
func (c *OllamaClient) Provider() string {
	return fmt.Sprintf("Local AI (%s)", c.cfg.Model)
}

// Model returns the model identifier this client is bound to.
func (c *OllamaClient) Model() string {
	return c.cfg.Model
}

// Complete flattens the conversation into a prompt and performs one
// non-streaming generate call. Both model families resolve to the bound
// local model.
func (c *OllamaClient) Complete(parent context.Context, req CompletionRequest) (Completion, error) {
	ctx, span := c.tracer.Start(parent, "ollama.complete", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
		attribute.String("family", string(req.Family)),
	))
	defer span.End()

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	payload := ollamaGenerateRequest{
		Model:  c.cfg.Model,
		Prompt: flattenMessages(req.Messages),
		Stream: false,
		Options: ollamaOptions{
			Temperature:   req.Temperature,
			NumPredict:    maxTokens,
			TopP:          0.9,
			RepeatPenalty: 1.1,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Completion{}, fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	completionDuration.WithLabelValues("local", string(req.Family)).Observe(time.Since(start).Seconds())
	if err != nil {
		completionFailures.WithLabelValues("local").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, fmt.Errorf("local ai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("local ai request failed: %d - %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		completionFailures.WithLabelValues("local").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, err
	}

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		completionFailures.WithLabelValues("local").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, fmt.Errorf("decode generate response: %w", err)
	}

	return Completion{
		Text:     strings.TrimSpace(result.Response),
		Provider: c.Provider(),
	}, nil
}

func flattenMessages(messages []Message) string {
	parts := make([]string, 0, len(messages)+1)
	for _, message := range messages {
		switch message.Role {
		case RoleSystem:
			parts = append(parts, "System: "+message.Content)
		case RoleAssistant:
			parts = append(parts, "Assistant: "+message.Content)
		default:
			parts = append(parts, "User: "+message.Content)
		}
	}
	parts = append(parts, "Assistant:")
	return strings.Join(parts, "\n")
}

// ListOllamaModels enumerates the models installed on the server at baseURL.
func ListOllamaModels(ctx context.Context, httpClient *http.Client, baseURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("build tags request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list local models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list local models: unexpected status %d", resp.StatusCode)
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode tags response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, model := range tags.Models {
		names = append(names, model.Name)
	}
	return names, nil
}

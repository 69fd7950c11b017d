// Package gateway presents one completion operation regardless of which
// backend is active and recovers transparently from a non-functioning
// preferred provider by failing over in a fixed order.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quizforge/quizforge-api/internal/config"
	"github.com/quizforge/quizforge-api/internal/models"
	"github.com/quizforge/quizforge-api/internal/observability"
	"github.com/quizforge/quizforge-api/pkg/ai"
)

// Gateway selects provider adapters, performs health checks and implements
// ordered failover across the supported backends.
type Gateway struct {
	cfg    config.Config
	creds  CredentialSource
	probe  *http.Client
	logger zerolog.Logger

	// The Google AI SDK client holds a live transport connection, so one
	// instance is cached per credential and reused across requests instead
	// of being rebuilt (and leaked) on every call.
	mu           sync.Mutex
	geminiClient *ai.GeminiClient
	geminiKey    string
}

// New constructs a gateway. The probe client is used only for the local
// server's short-timeout liveness and enumeration calls; completion calls get
// their own longer timeout.
func New(cfg config.Config, creds CredentialSource, logger zerolog.Logger) *Gateway {
	return &Gateway{
		cfg:    cfg,
		creds:  creds,
		probe:  &http.Client{Timeout: cfg.HealthCheckTimeout},
		logger: logger.With().Str("component", "provider_gateway").Logger(),
	}
}

// HealthCheck reports availability for one provider. For the local server it
// probes the model-listing endpoint; for the cloud providers presence of a
// credential is sufficient, which is cheap but does not catch revoked keys
// until first real use. It never returns an error.
func (g *Gateway) HealthCheck(ctx context.Context, provider models.ProviderName) models.ProviderHealth {
	switch provider {
	case models.ProviderLocal:
		names, err := ai.ListOllamaModels(ctx, g.probe, g.cfg.LocalAIBaseURL())
		if err != nil {
			return models.ProviderHealth{Available: false, Message: fmt.Sprintf("Ollama server not reachable: %v", err)}
		}
		if len(names) == 0 {
			return models.ProviderHealth{Available: false, Message: "no models installed, run 'ollama pull' first"}
		}
		return models.ProviderHealth{Available: true, Message: fmt.Sprintf("%d models available", len(names))}
	case models.ProviderCloudChat, models.ProviderCloudMultimodal:
		if g.creds.Get(provider) == "" {
			return models.ProviderHealth{Available: false, Message: "API key not provided"}
		}
		return models.ProviderHealth{Available: true, Message: "API key configured"}
	default:
		return models.ProviderHealth{Available: false, Message: fmt.Sprintf("unknown provider: %s", provider)}
	}
}

// DefaultProvider picks the first available provider in failover order,
// falling back to the local server when nothing is reachable.
func (g *Gateway) DefaultProvider(ctx context.Context) models.ProviderName {
	for _, descriptor := range models.Providers {
		if g.HealthCheck(ctx, descriptor.Name).Available {
			return descriptor.Name
		}
	}
	return models.ProviderLocal
}

// LocalModels enumerates the models installed on the local server.
func (g *Gateway) LocalModels(ctx context.Context) ([]string, error) {
	return ai.ListOllamaModels(ctx, g.probe, g.cfg.LocalAIBaseURL())
}

// CreateClient builds a client bound to one provider. Construction never
// fails: on any problem (server down, no models, missing credential) the
// returned client is a degraded variant whose completions embed the failure
// message, and ok is false.
func (g *Gateway) CreateClient(ctx context.Context, session *models.ActiveSession, provider models.ProviderName) (client ai.Client, displayName string, ok bool) {
	switch provider {
	case models.ProviderLocal:
		return g.createLocalClient(ctx, session)
	case models.ProviderCloudMultimodal:
		return g.createGeminiClient(ctx)
	case models.ProviderCloudChat:
		return g.createOpenAIClient()
	default:
		return g.degraded(fmt.Sprintf("unknown provider: %s", provider))
	}
}

func (g *Gateway) createLocalClient(ctx context.Context, session *models.ActiveSession) (ai.Client, string, bool) {
	baseURL := g.cfg.LocalAIBaseURL()

	names, err := ai.ListOllamaModels(ctx, g.probe, baseURL)
	if err != nil {
		return g.degraded(fmt.Sprintf("Ollama server not running at %s, start it with 'ollama serve'", baseURL))
	}
	if len(names) == 0 {
		return g.degraded("no Ollama models found, install one with 'ollama pull gemma2:2b'")
	}

	_, selected := session.Snapshot()
	if selected == "" {
		selected = g.cfg.LocalAIModel
	}
	if !contains(names, selected) {
		substitute := names[0]
		g.logger.Warn().
			Str("requested_model", selected).
			Str("substitute_model", substitute).
			Msg("selected local model not installed, substituting first available")
		selected = substitute
		session.SubstituteLocalModel(substitute)
	}

	client := ai.NewOllamaClient(ai.OllamaConfig{
		BaseURL: baseURL,
		Model:   selected,
		Timeout: g.cfg.CompletionTimeout,
		Logger:  g.logger,
	})
	return client, client.Provider(), true
}

func (g *Gateway) createGeminiClient(ctx context.Context) (ai.Client, string, bool) {
	key := g.creds.Get(models.ProviderCloudMultimodal)
	if key == "" {
		return g.degraded("Google AI API key not provided")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.geminiClient != nil && g.geminiKey == key {
		return g.geminiClient, g.geminiClient.Provider(), true
	}
	if g.geminiClient != nil {
		_ = g.geminiClient.Close()
		g.geminiClient = nil
	}

	client, err := ai.NewGeminiClient(ctx, ai.GeminiConfig{
		APIKey: key,
		Model:  g.cfg.GoogleAIModel,
		Logger: g.logger,
	})
	if err != nil {
		return g.degraded(fmt.Sprintf("Google AI error: %v", err))
	}

	g.geminiClient = client
	g.geminiKey = key
	return client, client.Provider(), true
}

// Close releases the cached cloud client connections. Safe to call more than
// once.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.geminiClient == nil {
		return nil
	}
	err := g.geminiClient.Close()
	g.geminiClient = nil
	g.geminiKey = ""
	return err
}

func (g *Gateway) createOpenAIClient() (ai.Client, string, bool) {
	key := g.creds.Get(models.ProviderCloudChat)
	if key == "" {
		return g.degraded("OpenAI API key not provided")
	}

	client, err := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey:       key,
		Model:        g.cfg.OpenAIModel,
		ScoringModel: g.cfg.OpenAIScoringModel,
		Logger:       g.logger,
	})
	if err != nil {
		return g.degraded(fmt.Sprintf("OpenAI error: %v", err))
	}
	return client, client.Provider(), true
}

// WorkingClient tries the session's preferred provider first, then the
// remaining providers in fixed order. When failover succeeds the session's
// selection is updated to the provider that actually worked. If every
// provider fails the last degraded client is returned with ok false.
func (g *Gateway) WorkingClient(ctx context.Context, session *models.ActiveSession) (ai.Client, string, bool) {
	preferred, _ := session.Snapshot()

	client, displayName, ok := g.CreateClient(ctx, session, preferred)
	if ok {
		return client, displayName, true
	}

	for _, descriptor := range models.Providers {
		if descriptor.Name == preferred {
			continue
		}
		candidate, candidateName, candidateOK := g.CreateClient(ctx, session, descriptor.Name)
		if candidateOK {
			session.Select(descriptor.Name, "")
			observability.Failovers().WithLabelValues(string(preferred), string(descriptor.Name)).Inc()
			g.logger.Info().
				Str("from", string(preferred)).
				Str("to", string(descriptor.Name)).
				Msg("switched provider after preferred became unavailable")
			return candidate, candidateName, true
		}
		client, displayName = candidate, candidateName
	}

	return client, displayName, false
}

// Complete delegates to the bound adapter and normalizes transport failures
// into a completion whose text explains the error, so callers degrade instead
// of handling exceptions. The ok flag reports whether the round-trip
// succeeded; the completion text is usable either way.
func (g *Gateway) Complete(ctx context.Context, client ai.Client, req ai.CompletionRequest) (ai.Completion, bool) {
	completion, err := client.Complete(ctx, req)
	if err != nil {
		g.logger.Error().Err(err).Str("provider", client.Provider()).Msg("completion call failed")
		return ai.Completion{
			Text:     fmt.Sprintf("Error: %v", err),
			Provider: client.Provider(),
		}, false
	}
	return completion, true
}

func (g *Gateway) degraded(reason string) (ai.Client, string, bool) {
	g.logger.Warn().Str("reason", reason).Msg("handing out degraded client")
	client := ai.NewDegradedClient(reason)
	return client, client.Provider(), false
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

package gateway

import (
	"github.com/quizforge/quizforge-api/internal/config"
	"github.com/quizforge/quizforge-api/internal/models"
)

// CredentialSource supplies the secret string for a provider. Implementations
// may return an empty string to signal a missing credential; the gateway
// treats that as the provider being unavailable.
type CredentialSource interface {
	Get(provider models.ProviderName) string
}

// ConfigCredentialSource reads credentials from the loaded configuration.
type ConfigCredentialSource struct {
	cfg config.Config
}

// NewConfigCredentialSource builds a credential source backed by cfg.
func NewConfigCredentialSource(cfg config.Config) ConfigCredentialSource {
	return ConfigCredentialSource{cfg: cfg}
}

// Get returns the configured API key for the provider. The local provider
// needs no credential and always yields an empty string.
func (s ConfigCredentialSource) Get(provider models.ProviderName) string {
	switch provider {
	case models.ProviderCloudChat:
		return s.cfg.OpenAIAPIKey
	case models.ProviderCloudMultimodal:
		return s.cfg.GoogleAIAPIKey
	default:
		return ""
	}
}

// StaticCredentialSource is a fixed credential map, used in tests.
type StaticCredentialSource map[models.ProviderName]string

// Get returns the stored credential for the provider.
func (s StaticCredentialSource) Get(provider models.ProviderName) string {
	return s[provider]
}

package models

import "sync"

// ProviderName identifies one completion backend.
type ProviderName string

const (
	ProviderLocal           ProviderName = "local"
	ProviderCloudChat       ProviderName = "openai"
	ProviderCloudMultimodal ProviderName = "google"
)

// ProviderDescriptor is the immutable description of one provider.
type ProviderDescriptor struct {
	Name               ProviderName `json:"name"`
	DisplayLabel       string       `json:"display_label"`
	RequiresCredential bool         `json:"requires_credential"`
}

// Providers lists the supported backends in failover order: the local server
// is tried first because it needs no credential, then the cloud APIs.
var Providers = []ProviderDescriptor{
	{Name: ProviderLocal, DisplayLabel: "Local AI (Ollama)", RequiresCredential: false},
	{Name: ProviderCloudMultimodal, DisplayLabel: "Google AI", RequiresCredential: true},
	{Name: ProviderCloudChat, DisplayLabel: "OpenAI", RequiresCredential: true},
}

// DescriptorFor returns the descriptor for the given provider name.
func DescriptorFor(name ProviderName) (ProviderDescriptor, bool) {
	for _, descriptor := range Providers {
		if descriptor.Name == name {
			return descriptor, true
		}
	}
	return ProviderDescriptor{}, false
}

// ProviderHealth reports the outcome of one availability check. It is
// computed on demand and never cached beyond the check that produced it.
type ProviderHealth struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// ActiveSession holds the caller-owned provider selection state. It lives for
// the duration of a process or request and is the only mutable shared state
// in the pipeline; a single mutex covers the provider-switch path so the
// gateway can record failover substitutions safely.
type ActiveSession struct {
	mu sync.Mutex

	ID                 string
	SelectedProvider   ProviderName
	SelectedLocalModel string
	LastKnownHealth    map[ProviderName]ProviderHealth
}

// NewActiveSession creates a session preferring the given provider.
func NewActiveSession(id string, preferred ProviderName) *ActiveSession {
	return &ActiveSession{
		ID:               id,
		SelectedProvider: preferred,
		LastKnownHealth:  make(map[ProviderName]ProviderHealth),
	}
}

// Snapshot returns the current selection without holding the lock.
func (s *ActiveSession) Snapshot() (ProviderName, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.SelectedProvider, s.SelectedLocalModel
}

// Select switches the session to the given provider and, for the local
// provider, the given model.
func (s *ActiveSession) Select(provider ProviderName, localModel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SelectedProvider = provider
	if localModel != "" {
		s.SelectedLocalModel = localModel
	}
}

// RecordHealth stores the most recent health result for a provider.
func (s *ActiveSession) RecordHealth(provider ProviderName, health ProviderHealth) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastKnownHealth[provider] = health
}

// SubstituteLocalModel replaces a dangling local model selection. The gateway
// calls this when the previously selected model is no longer present in the
// server's enumeration.
func (s *ActiveSession) SubstituteLocalModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SelectedLocalModel = model
}

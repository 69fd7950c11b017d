package dto

// ProviderStatusResponse reports one provider's descriptor and current health.
type ProviderStatusResponse struct {
	Name               string `json:"name"`
	DisplayLabel       string `json:"display_label"`
	RequiresCredential bool   `json:"requires_credential"`
	Available          bool   `json:"available"`
	Message            string `json:"message"`
	Active             bool   `json:"active"`
}

// SelectProviderRequest switches the active session to another provider. The
// local model is only honoured when the provider is the local one.
type SelectProviderRequest struct {
	Provider   string `json:"provider" validate:"required,oneof=local openai google"`
	LocalModel string `json:"local_model"`
}

// LocalModelsResponse lists the models installed on the local server.
type LocalModelsResponse struct {
	Models []string `json:"models"`
}

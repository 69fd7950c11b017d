package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/quizforge/quizforge-api/internal/dto"
	"github.com/quizforge/quizforge-api/internal/models"
	"github.com/quizforge/quizforge-api/internal/utils"
)

// ProviderGateway is the slice of the provider gateway the handler needs.
type ProviderGateway interface {
	HealthCheck(ctx context.Context, provider models.ProviderName) models.ProviderHealth
	LocalModels(ctx context.Context) ([]string, error)
}

// ProviderHandler exposes provider enumeration, selection and local model
// listing.
type ProviderHandler struct {
	gateway   ProviderGateway
	session   *models.ActiveSession
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProviderHandler constructs a provider handler.
func NewProviderHandler(gateway ProviderGateway, session *models.ActiveSession, validate *validator.Validate, logger zerolog.Logger) *ProviderHandler {
	return &ProviderHandler{
		gateway:   gateway,
		session:   session,
		validator: validate,
		logger:    logger.With().Str("component", "provider_handler").Logger(),
	}
}

// Register wires provider routes.
func (h *ProviderHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/select", h.selectProvider)
	router.Get("/local/models", h.localModels)
}

func (h *ProviderHandler) list(c *fiber.Ctx) error {
	selected, _ := h.session.Snapshot()

	statuses := make([]dto.ProviderStatusResponse, 0, len(models.Providers))
	for _, descriptor := range models.Providers {
		health := h.gateway.HealthCheck(c.Context(), descriptor.Name)
		h.session.RecordHealth(descriptor.Name, health)

		statuses = append(statuses, dto.ProviderStatusResponse{
			Name:               string(descriptor.Name),
			DisplayLabel:       descriptor.DisplayLabel,
			RequiresCredential: descriptor.RequiresCredential,
			Available:          health.Available,
			Message:            health.Message,
			Active:             descriptor.Name == selected,
		})
	}

	return utils.SendSuccess(c, "providers listed", statuses)
}

// selectProvider switches the active session. Selecting an unavailable
// provider is allowed; the gateway fails over on first use and the response
// carries the current health so the caller can tell.
func (h *ProviderHandler) selectProvider(c *fiber.Ctx) error {
	var payload dto.SelectProviderRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	name := models.ProviderName(payload.Provider)
	descriptor, ok := models.DescriptorFor(name)
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "unknown provider")
	}

	localModel := ""
	if name == models.ProviderLocal {
		localModel = payload.LocalModel
	}
	h.session.Select(name, localModel)

	health := h.gateway.HealthCheck(c.Context(), name)
	h.session.RecordHealth(name, health)

	requestLogger(h.logger, c).Info().
		Str("provider", string(name)).
		Bool("available", health.Available).
		Msg("provider selected")

	return utils.SendSuccess(c, "provider selected", dto.ProviderStatusResponse{
		Name:               string(descriptor.Name),
		DisplayLabel:       descriptor.DisplayLabel,
		RequiresCredential: descriptor.RequiresCredential,
		Available:          health.Available,
		Message:            health.Message,
		Active:             true,
	})
}

func (h *ProviderHandler) localModels(c *fiber.Ctx) error {
	names, err := h.gateway.LocalModels(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("local model enumeration failed")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "Ollama server not reachable")
	}

	return utils.SendSuccess(c, "local models listed", dto.LocalModelsResponse{Models: names})
}

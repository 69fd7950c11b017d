package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/quizforge/quizforge-api/internal/middleware"
	"github.com/quizforge/quizforge-api/internal/service"
	"github.com/quizforge/quizforge-api/internal/utils"
)

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// sendServiceError translates service-layer failures into HTTP responses.
// Payload validation maps to 400, invariant violations in generated output to
// 422, a total provider outage to 503 and unusable model output to 502.
func sendServiceError(c *fiber.Ctx, logger *zerolog.Logger, err error) error {
	var generationErr *service.GenerationError
	var validationErr *service.ValidationError

	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotOpenEnded):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErr):
		logger.Warn().Msg(validationErr.Message)
		return utils.SendError(c, fiber.StatusUnprocessableEntity, validationErr.Message)
	case errors.As(err, &generationErr):
		logger.Error().Str("diagnostic", generationErr.Diagnostic).Msg(generationErr.Message)
		if errors.Is(err, service.ErrNoWorkingProvider) {
			return utils.SendError(c, fiber.StatusServiceUnavailable, generationErr.Message)
		}
		return utils.SendError(c, fiber.StatusBadGateway, generationErr.Message)
	default:
		logger.Error().Err(err).Msg("request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

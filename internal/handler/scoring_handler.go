package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/quizforge/quizforge-api/internal/dto"
	"github.com/quizforge/quizforge-api/internal/models"
	"github.com/quizforge/quizforge-api/internal/service"
	"github.com/quizforge/quizforge-api/internal/utils"
)

// ScoringHandler handles rubric scoring requests.
type ScoringHandler struct {
	service service.ScoringService
	session *models.ActiveSession
	logger  zerolog.Logger
}

// NewScoringHandler constructs a scoring handler.
func NewScoringHandler(service service.ScoringService, session *models.ActiveSession, logger zerolog.Logger) *ScoringHandler {
	return &ScoringHandler{
		service: service,
		session: session,
		logger:  logger.With().Str("component", "scoring_handler").Logger(),
	}
}

// Register wires scoring routes.
func (h *ScoringHandler) Register(router fiber.Router) {
	router.Post("", h.score)
	router.Post("/batch", h.scoreBatch)
}

func (h *ScoringHandler) score(c *fiber.Ctx) error {
	var payload dto.ScoreRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Score(c.Context(), h.session, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "answer scored", response)
}

func (h *ScoringHandler) scoreBatch(c *fiber.Ctx) error {
	var payload dto.BatchScoreRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.ScoreBatch(c.Context(), h.session, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "answers scored", response)
}

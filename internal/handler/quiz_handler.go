package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/quizforge/quizforge-api/internal/dto"
	"github.com/quizforge/quizforge-api/internal/models"
	"github.com/quizforge/quizforge-api/internal/service"
	"github.com/quizforge/quizforge-api/internal/utils"
)

// QuizHandler handles quiz generation and summarization requests.
type QuizHandler struct {
	service service.QuizService
	session *models.ActiveSession
	logger  zerolog.Logger
}

// NewQuizHandler constructs a quiz handler.
func NewQuizHandler(service service.QuizService, session *models.ActiveSession, logger zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		service: service,
		session: session,
		logger:  logger.With().Str("component", "quiz_handler").Logger(),
	}
}

// Register wires quiz generation routes.
func (h *QuizHandler) Register(router fiber.Router) {
	router.Post("/closed", h.closedForm)
	router.Post("/open", h.openEnded)
	router.Post("/mixed", h.mixedSet)
}

// RegisterSummaries wires the standalone summarization route.
func (h *QuizHandler) RegisterSummaries(router fiber.Router) {
	router.Post("", h.summarize)
}

func (h *QuizHandler) closedForm(c *fiber.Ctx) error {
	var payload dto.ClosedFormRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.GenerateClosedForm(c.Context(), h.session, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "quiz generated", response)
}

func (h *QuizHandler) openEnded(c *fiber.Ctx) error {
	var payload dto.OpenEndedRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.GenerateOpenEnded(c.Context(), h.session, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "quiz generated", response)
}

func (h *QuizHandler) mixedSet(c *fiber.Ctx) error {
	var payload dto.MixedSetRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.GenerateMixedSet(c.Context(), h.session, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "quiz generated", response)
}

func (h *QuizHandler) summarize(c *fiber.Ctx) error {
	var payload dto.SummaryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Summarize(c.Context(), h.session, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "summary generated", response)
}

package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quizforge/quizforge-api/internal/config"
	"github.com/quizforge/quizforge-api/internal/handler"
	"github.com/quizforge/quizforge-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProviderHandler *handler.ProviderHandler
	QuizHandler     *handler.QuizHandler
	ScoringHandler  *handler.ScoringHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.ProviderHandler != nil {
		providers := api.Group("/providers")
		deps.ProviderHandler.Register(providers)
	}

	if deps.QuizHandler != nil {
		quizzes := api.Group("/quizzes")
		deps.QuizHandler.Register(quizzes)

		summaries := api.Group("/summaries")
		deps.QuizHandler.RegisterSummaries(summaries)
	}

	if deps.ScoringHandler != nil {
		scores := api.Group("/scores")
		deps.ScoringHandler.Register(scores)
	}
}

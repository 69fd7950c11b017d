package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizforge/quizforge-api/internal/config"
	"github.com/quizforge/quizforge-api/internal/gateway"
	"github.com/quizforge/quizforge-api/internal/handler"
	"github.com/quizforge/quizforge-api/internal/middleware"
	"github.com/quizforge/quizforge-api/internal/models"
	"github.com/quizforge/quizforge-api/internal/router"
	"github.com/quizforge/quizforge-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	validate := validator.New(validator.WithRequiredStructEnabled())

	providerGateway := gateway.New(cfg, gateway.NewConfigCredentialSource(cfg), logger)
	defer providerGateway.Close()
	session := models.NewActiveSession(uuid.NewString(), startupProvider(cfg, providerGateway, logger))

	quizService := service.NewQuizService(providerGateway, validate, logger, service.QuizConfig{
		GenerationTemperature: cfg.GenerationTemperature,
		SummaryTemperature:    cfg.SummaryTemperature,
		MaxTokens:             cfg.GenerationMaxTokens,
		SummaryThreshold:      cfg.SummaryThreshold,
	})
	scoringService := service.NewScoringService(providerGateway, validate, logger, service.ScoringConfig{
		Temperature: cfg.ScoringTemperature,
		MaxTokens:   cfg.ScoringMaxTokens,
	})

	providerHandler := handler.NewProviderHandler(providerGateway, session, validate, logger)
	quizHandler := handler.NewQuizHandler(quizService, session, logger)
	scoringHandler := handler.NewScoringHandler(scoringService, session, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ProviderHandler: providerHandler,
		QuizHandler:     quizHandler,
		ScoringHandler:  scoringHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// startupProvider resolves the session's initial provider: a configured
// preference wins if it names a known provider, otherwise the first available
// provider in failover order is probed and used.
func startupProvider(cfg config.Config, gw *gateway.Gateway, logger zerolog.Logger) models.ProviderName {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HealthCheckTimeout)
	defer cancel()

	preferred := models.ProviderName(cfg.PreferredProvider)
	if _, ok := models.DescriptorFor(preferred); !ok {
		preferred = gw.DefaultProvider(ctx)
	}

	health := gw.HealthCheck(ctx, preferred)
	logger.Info().
		Str("provider", string(preferred)).
		Bool("available", health.Available).
		Str("detail", health.Message).
		Msg("initial provider selected")

	return preferred
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/quizforge-api/internal/dto"
	"github.com/quizforge/quizforge-api/internal/handler"
	"github.com/quizforge/quizforge-api/internal/models"
)

type mockProviderGateway struct {
	health      map[models.ProviderName]models.ProviderHealth
	localModels []string
	localErr    error
}

func (m *mockProviderGateway) HealthCheck(_ context.Context, provider models.ProviderName) models.ProviderHealth {
	return m.health[provider]
}

func (m *mockProviderGateway) LocalModels(context.Context) ([]string, error) {
	return m.localModels, m.localErr
}

func newProviderApp(gw handler.ProviderGateway, session *models.ActiveSession) *fiber.App {
	app := fiber.New()
	validate := validator.New(validator.WithRequiredStructEnabled())
	handler.NewProviderHandler(gw, session, validate, zerolog.New(io.Discard)).Register(app.Group("/api/v1/providers"))
	return app
}

func TestProviderHandler_ListMarksActiveProvider(t *testing.T) {
	gw := &mockProviderGateway{health: map[models.ProviderName]models.ProviderHealth{
		models.ProviderLocal:           {Available: true, Message: "2 models available"},
		models.ProviderCloudMultimodal: {Available: false, Message: "API key not provided"},
		models.ProviderCloudChat:       {Available: true, Message: "API key configured"},
	}}
	session := models.NewActiveSession("test", models.ProviderCloudChat)
	app := newProviderApp(gw, session)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data []dto.ProviderStatusResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Len(t, response.Data, 3)

	require.Equal(t, "local", response.Data[0].Name)
	require.Equal(t, "Local AI (Ollama)", response.Data[0].DisplayLabel)
	require.True(t, response.Data[0].Available)
	require.False(t, response.Data[0].Active)

	require.Equal(t, "openai", response.Data[2].Name)
	require.True(t, response.Data[2].Active)
}

func TestProviderHandler_SelectProvider(t *testing.T) {
	gw := &mockProviderGateway{health: map[models.ProviderName]models.ProviderHealth{
		models.ProviderLocal: {Available: true, Message: "1 models available"},
	}}
	session := models.NewActiveSession("test", models.ProviderCloudChat)
	app := newProviderApp(gw, session)

	resp := postJSON(t, app, "/api/v1/providers/select", dto.SelectProviderRequest{
		Provider:   "local",
		LocalModel: "llama3:8b",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	selected, localModel := session.Snapshot()
	require.Equal(t, models.ProviderLocal, selected)
	require.Equal(t, "llama3:8b", localModel)
}

func TestProviderHandler_SelectIgnoresLocalModelForCloud(t *testing.T) {
	gw := &mockProviderGateway{health: map[models.ProviderName]models.ProviderHealth{
		models.ProviderCloudMultimodal: {Available: true, Message: "API key configured"},
	}}
	session := models.NewActiveSession("test", models.ProviderLocal)
	app := newProviderApp(gw, session)

	resp := postJSON(t, app, "/api/v1/providers/select", dto.SelectProviderRequest{
		Provider:   "google",
		LocalModel: "llama3:8b",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	selected, localModel := session.Snapshot()
	require.Equal(t, models.ProviderCloudMultimodal, selected)
	require.Empty(t, localModel)
}

func TestProviderHandler_SelectRejectsUnknownProvider(t *testing.T) {
	app := newProviderApp(&mockProviderGateway{}, models.NewActiveSession("test", models.ProviderLocal))

	resp := postJSON(t, app, "/api/v1/providers/select", map[string]string{"provider": "azure"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProviderHandler_LocalModels(t *testing.T) {
	gw := &mockProviderGateway{localModels: []string{"gemma2:2b", "llama3:8b"}}
	app := newProviderApp(gw, models.NewActiveSession("test", models.ProviderLocal))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers/local/models", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.LocalModelsResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, []string{"gemma2:2b", "llama3:8b"}, response.Data.Models)
}

func TestProviderHandler_LocalModelsUnreachable(t *testing.T) {
	gw := &mockProviderGateway{localErr: errors.New("connection refused")}
	app := newProviderApp(gw, models.NewActiveSession("test", models.ProviderLocal))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers/local/models", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

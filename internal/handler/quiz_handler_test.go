package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/quizforge-api/internal/dto"
	"github.com/quizforge/quizforge-api/internal/handler"
	"github.com/quizforge/quizforge-api/internal/models"
	"github.com/quizforge/quizforge-api/internal/service"
)

type mockQuizService struct {
	lastClosed dto.ClosedFormRequest
	response   dto.QuizResponse
	summary    dto.SummaryResponse
	err        error
}

func (m *mockQuizService) GenerateClosedForm(_ context.Context, _ *models.ActiveSession, req dto.ClosedFormRequest) (dto.QuizResponse, error) {
	m.lastClosed = req
	if m.err != nil {
		return dto.QuizResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockQuizService) GenerateOpenEnded(context.Context, *models.ActiveSession, dto.OpenEndedRequest) (dto.QuizResponse, error) {
	if m.err != nil {
		return dto.QuizResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockQuizService) GenerateMixedSet(context.Context, *models.ActiveSession, dto.MixedSetRequest) (dto.QuizResponse, error) {
	if m.err != nil {
		return dto.QuizResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockQuizService) Summarize(context.Context, *models.ActiveSession, dto.SummaryRequest) (dto.SummaryResponse, error) {
	if m.err != nil {
		return dto.SummaryResponse{}, m.err
	}
	return m.summary, nil
}

func newQuizApp(svc service.QuizService) *fiber.App {
	app := fiber.New()
	session := models.NewActiveSession("test", models.ProviderLocal)
	quizHandler := handler.NewQuizHandler(svc, session, zerolog.New(io.Discard))
	quizHandler.Register(app.Group("/api/v1/quizzes"))
	quizHandler.RegisterSummaries(app.Group("/api/v1/summaries"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestQuizHandler_ClosedFormSuccess(t *testing.T) {
	svc := &mockQuizService{response: dto.QuizResponse{
		Provider: "Local AI (gemma2:2b)",
		Questions: []models.Question{{
			Type:      models.QuestionClosedForm,
			Prompt:    "What is H2O?",
			Options:   []string{"A) Water", "B) Salt", "C) Sugar", "D) Air"},
			AnswerKey: "A",
		}},
	}}
	app := newQuizApp(svc)

	resp := postJSON(t, app, "/api/v1/quizzes/closed", dto.ClosedFormRequest{
		SourceText: "Chemistry notes.",
		Kind:       "multiple_choice",
		Count:      1,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool             `json:"success"`
		Data    dto.QuizResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "Local AI (gemma2:2b)", response.Data.Provider)
	require.Len(t, response.Data.Questions, 1)
	require.Equal(t, "Chemistry notes.", svc.lastClosed.SourceText)
}

func TestQuizHandler_MalformedBody(t *testing.T) {
	app := newQuizApp(&mockQuizService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quizzes/closed", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestQuizHandler_ServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{
			name:       "no working provider",
			err:        &service.GenerationError{Message: "no working AI provider available", Err: service.ErrNoWorkingProvider},
			statusCode: fiber.StatusServiceUnavailable,
		},
		{
			name:       "unusable model output",
			err:        &service.GenerationError{Message: "failed to parse quiz data from response", Diagnostic: "garbage"},
			statusCode: fiber.StatusBadGateway,
		},
		{
			name:       "invariant violation",
			err:        &service.ValidationError{Message: "question 1 has 3 options, want 2 or 4"},
			statusCode: fiber.StatusUnprocessableEntity,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newQuizApp(&mockQuizService{err: tc.err})

			resp := postJSON(t, app, "/api/v1/quizzes/closed", dto.ClosedFormRequest{
				SourceText: "text",
				Kind:       "multiple_choice",
				Count:      1,
			})
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}

func TestQuizHandler_Summarize(t *testing.T) {
	svc := &mockQuizService{summary: dto.SummaryResponse{Provider: "OpenAI", Summary: "Key points."}}
	app := newQuizApp(svc)

	resp := postJSON(t, app, "/api/v1/summaries", dto.SummaryRequest{Text: "Long text."})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.SummaryResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "Key points.", response.Data.Summary)
}

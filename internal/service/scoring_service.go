package service

import (
	"context"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/quizforge/quizforge-api/internal/dto"
	"github.com/quizforge/quizforge-api/internal/models"
	"github.com/quizforge/quizforge-api/internal/observability"
	"github.com/quizforge/quizforge-api/pkg/ai"
)

// ScoringService exposes rubric-based scoring of open-ended answers.
type ScoringService interface {
	Score(ctx context.Context, session *models.ActiveSession, payload dto.ScoreRequest) (dto.ScoreResponse, error)
	ScoreBatch(ctx context.Context, session *models.ActiveSession, payload dto.BatchScoreRequest) (dto.BatchScoreResponse, error)
}

// ScoringConfig describes scoring tuning knobs.
type ScoringConfig struct {
	Temperature float32
	MaxTokens   int
}

type scoringService struct {
	gateway   CompletionGateway
	validator *validator.Validate
	logger    zerolog.Logger
	config    ScoringConfig
}

// NewScoringService constructs a rubric scoring service.
func NewScoringService(gateway CompletionGateway, validate *validator.Validate, logger zerolog.Logger, cfg ScoringConfig) ScoringService {
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}

	return &scoringService{
		gateway:   gateway,
		validator: validate,
		logger:    logger.With().Str("component", "scoring_service").Logger(),
		config:    cfg,
	}
}

// Score grades one answer against the question's rubric. The model path is
// attempted once; on any failure (no provider, transport error, unparseable
// or out-of-bounds output) the deterministic heuristic path runs instead.
// The heuristic path cannot fail.
func (s *scoringService) Score(ctx context.Context, session *models.ActiveSession, payload dto.ScoreRequest) (dto.ScoreResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScoreResponse{}, err
	}
	if payload.Question.TotalMarks <= 0 || len(payload.Question.Rubric) == 0 {
		return dto.ScoreResponse{}, ErrNotOpenEnded
	}

	if strings.TrimSpace(payload.Answer) == "" {
		return dto.ScoreResponse{
			ScoringResult: models.ScoringResult{
				MaxScore:        payload.Question.TotalMarks,
				OverallFeedback: "No answer provided.",
				Method:          models.ScoredEmptyAnswer,
			},
		}, nil
	}

	if result, provider, ok := s.scoreWithModel(ctx, session, payload.Question, payload.Answer); ok {
		return dto.ScoreResponse{ScoringResult: result, Provider: provider}, nil
	}

	observability.HeuristicFallbacks().Inc()
	return dto.ScoreResponse{
		ScoringResult: heuristicScore(payload.Question, payload.Answer),
		Provider:      "heuristic",
	}, nil
}

// ScoreBatch grades several answers sequentially, one rubric call each.
// The loop is deliberately not parallel: fanning out would burst cloud
// rate limits for no benefit on a per-student grading path.
func (s *scoringService) ScoreBatch(ctx context.Context, session *models.ActiveSession, payload dto.BatchScoreRequest) (dto.BatchScoreResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BatchScoreResponse{}, err
	}

	results := make([]dto.ScoreResponse, 0, len(payload.Answers))
	for _, answer := range payload.Answers {
		result, err := s.Score(ctx, session, dto.ScoreRequest{Question: payload.Question, Answer: answer})
		if err != nil {
			return dto.BatchScoreResponse{}, err
		}
		results = append(results, result)
	}
	return dto.BatchScoreResponse{Results: results}, nil
}

func (s *scoringService) scoreWithModel(ctx context.Context, session *models.ActiveSession, question models.Question, answer string) (models.ScoringResult, string, bool) {
	client, _, ok := s.gateway.WorkingClient(ctx, session)
	if !ok {
		return models.ScoringResult{}, "", false
	}

	completion, ok := s.gateway.Complete(ctx, client, ai.CompletionRequest{
		Family:      ai.FamilyScoring,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: buildScoringPrompt(question, answer)}},
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if !ok {
		return models.ScoringResult{}, "", false
	}

	var result models.ScoringResult
	if err := decodeDocument(completion.Text, scoringSchema, &result, "failed to parse scoring data"); err != nil {
		s.logger.Warn().Err(err).Msg("model scoring output unusable, falling back to heuristic")
		return models.ScoringResult{}, "", false
	}

	// Sanity bounds: the reported maximum must be the rubric's, and the
	// award must stay within it. A model inventing its own scale is as
	// unusable as one overshooting it.
	if diff := result.MaxScore - question.TotalMarks; diff > 0.001 || diff < -0.001 {
		s.logger.Warn().
			Float64("reported_max", result.MaxScore).
			Float64("rubric_max", question.TotalMarks).
			Msg("model scoring max does not match rubric, falling back to heuristic")
		return models.ScoringResult{}, "", false
	}
	if result.TotalScore < 0 || result.TotalScore > result.MaxScore {
		s.logger.Warn().
			Float64("total", result.TotalScore).
			Float64("max", result.MaxScore).
			Msg("model scoring out of bounds, falling back to heuristic")
		return models.ScoringResult{}, "", false
	}

	if result.Percentage == 0 && result.MaxScore > 0 {
		result.Percentage = roundToTenth(result.TotalScore / result.MaxScore * 100)
	}
	result.Method = models.ScoredByModel
	return result, completion.Provider, true
}

// heuristicScore approximates a grade from answer length and rubric keyword
// coverage: 0.3 * min(1, words/50) + 0.7 * keywordsFound/keywordsTotal,
// scaled to the question's marks and rounded to one decimal. It never
// populates per-criterion scores.
func heuristicScore(question models.Question, answer string) models.ScoringResult {
	words := len(strings.Fields(answer))
	participation := math.Min(1.0, float64(words)/50.0)

	lowered := strings.ToLower(answer)
	totalKeywords := 0
	foundKeywords := 0
	for _, criterion := range question.Rubric {
		for _, keyword := range criterion.Keywords {
			totalKeywords++
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				foundKeywords++
			}
		}
	}
	coverage := float64(foundKeywords) / math.Max(float64(totalKeywords), 1)

	score := roundToTenth((0.3*participation + 0.7*coverage) * question.TotalMarks)

	return models.ScoringResult{
		TotalScore:      score,
		MaxScore:        question.TotalMarks,
		Percentage:      roundToTenth(score / question.TotalMarks * 100),
		OverallFeedback: "Answer evaluated using basic scoring. AI detailed scoring unavailable.",
		Strengths:       []string{"Answer provided"},
		Improvements:    []string{"Consider adding more specific details"},
		Method:          models.ScoredByHeuristic,
	}
}

func roundToTenth(value float64) float64 {
	return math.Round(value*10) / 10
}

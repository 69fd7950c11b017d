package service_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/quizforge-api/internal/dto"
	"github.com/quizforge/quizforge-api/internal/models"
	"github.com/quizforge/quizforge-api/internal/service"
)

func newScoringService(gw *stubGateway) service.ScoringService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return service.NewScoringService(gw, validate, zerolog.Nop(), service.ScoringConfig{})
}

func waterQuestion() models.Question {
	return models.Question{
		Type:       models.QuestionOpenEnded,
		Prompt:     "Explain the composition of water.",
		TotalMarks: 4,
		Rubric: []models.RubricCriterion{
			{Description: "Identify the formula", Marks: 4, Keywords: []string{"H2O", "hydrogen", "oxygen", "compound"}},
		},
		ModelAnswer: "Water is a compound of hydrogen and oxygen with the formula H2O.",
	}
}

const scoringDocument = "```json\n" + `{
  "criterion_scores": [
    {"criterion": "Identify the formula", "marks_awarded": 3.5, "max_marks": 4, "feedback": "Mostly complete."}
  ],
  "total_score": 3.5,
  "max_score": 4,
  "percentage": 87.5,
  "overall_feedback": "Good understanding demonstrated.",
  "strengths": ["Clear definition"],
  "improvements": ["Mention bonding"]
}` + "\n```"

func TestScoreEmptyAnswer(t *testing.T) {
	gw := &stubGateway{workingOK: true, display: "OpenAI"}
	svc := newScoringService(gw)

	response, err := svc.Score(context.Background(), testSession(), dto.ScoreRequest{
		Question: waterQuestion(),
		Answer:   "   ",
	})
	require.NoError(t, err)
	require.Equal(t, models.ScoredEmptyAnswer, response.Method)
	require.Zero(t, response.TotalScore)
	require.Equal(t, 4.0, response.MaxScore)
	require.Equal(t, "No answer provided.", response.OverallFeedback)
	require.Empty(t, gw.requests, "empty answers must not spend a completion call")
}

func TestScoreRejectsClosedFormQuestion(t *testing.T) {
	gw := &stubGateway{workingOK: true, display: "OpenAI"}
	svc := newScoringService(gw)

	_, err := svc.Score(context.Background(), testSession(), dto.ScoreRequest{
		Question: models.Question{
			Type:      models.QuestionClosedForm,
			Prompt:    "What is H2O?",
			Options:   []string{"A) Water", "B) Salt", "C) Sugar", "D) Air"},
			AnswerKey: "A",
		},
		Answer: "Water",
	})
	require.ErrorIs(t, err, service.ErrNotOpenEnded)
}

func TestScoreModelPath(t *testing.T) {
	gw := &stubGateway{workingOK: true, display: "OpenAI", responses: []stubResponse{{text: scoringDocument, ok: true}}}
	svc := newScoringService(gw)

	response, err := svc.Score(context.Background(), testSession(), dto.ScoreRequest{
		Question: waterQuestion(),
		Answer:   "Water is H2O, a compound of hydrogen and oxygen.",
	})
	require.NoError(t, err)
	require.Equal(t, models.ScoredByModel, response.Method)
	require.Equal(t, "OpenAI", response.Provider)
	require.Equal(t, 3.5, response.TotalScore)
	require.Equal(t, 87.5, response.Percentage)
	require.Len(t, response.CriterionScores, 1)

	prompt := gw.requests[0].Messages[0].Content
	require.Contains(t, prompt, "expert examiner")
	require.Contains(t, prompt, "Identify the formula (4 marks)")
	require.Contains(t, prompt, "H2O, hydrogen, oxygen, compound")
}

func TestScoreFallsBackOnUnparseableOutput(t *testing.T) {
	gw := &stubGateway{workingOK: true, display: "OpenAI", responses: []stubResponse{{text: "I refuse to grade this.", ok: true}}}
	svc := newScoringService(gw)

	response, err := svc.Score(context.Background(), testSession(), dto.ScoreRequest{
		Question: waterQuestion(),
		Answer:   "Water is H2O.",
	})
	require.NoError(t, err)
	require.Equal(t, models.ScoredByHeuristic, response.Method)
	require.Equal(t, "heuristic", response.Provider)
}

func TestScoreFallsBackOnOutOfBoundsTotal(t *testing.T) {
	document := `{"total_score": 9, "max_score": 4, "overall_feedback": "too generous"}`
	gw := &stubGateway{workingOK: true, display: "OpenAI", responses: []stubResponse{{text: document, ok: true}}}
	svc := newScoringService(gw)

	response, err := svc.Score(context.Background(), testSession(), dto.ScoreRequest{
		Question: waterQuestion(),
		Answer:   "Water is H2O.",
	})
	require.NoError(t, err)
	require.Equal(t, models.ScoredByHeuristic, response.Method)
	require.LessOrEqual(t, response.TotalScore, response.MaxScore)
}

func TestScoreFallsBackOnForeignMaxScore(t *testing.T) {
	// Internally consistent output scored against the wrong scale: 9 of 9
	// satisfies total <= max but the rubric only carries 4 marks.
	document := `{"total_score": 9, "max_score": 9, "overall_feedback": "wrong scale"}`
	gw := &stubGateway{workingOK: true, display: "OpenAI", responses: []stubResponse{{text: document, ok: true}}}
	svc := newScoringService(gw)

	response, err := svc.Score(context.Background(), testSession(), dto.ScoreRequest{
		Question: waterQuestion(),
		Answer:   "Water is H2O.",
	})
	require.NoError(t, err)
	require.Equal(t, models.ScoredByHeuristic, response.Method)
	require.Equal(t, 4.0, response.MaxScore)
	require.LessOrEqual(t, response.TotalScore, 4.0)
}

func TestScoreFallsBackWhenNoProviderWorks(t *testing.T) {
	gw := &stubGateway{workingOK: false}
	svc := newScoringService(gw)

	response, err := svc.Score(context.Background(), testSession(), dto.ScoreRequest{
		Question: waterQuestion(),
		Answer:   "Water is H2O, made of hydrogen and oxygen.",
	})
	require.NoError(t, err)
	require.Equal(t, models.ScoredByHeuristic, response.Method)
	require.Empty(t, response.CriterionScores)
	require.Equal(t, "Answer evaluated using basic scoring. AI detailed scoring unavailable.", response.OverallFeedback)
}

// The heuristic combines answer length and keyword coverage:
// 8 words gives participation 0.16, three of four keywords give coverage
// 0.75, so the score is (0.3*0.16 + 0.7*0.75) * 4 = 2.292, rounded to 2.3.
func TestScoreHeuristicFormula(t *testing.T) {
	gw := &stubGateway{workingOK: false}
	svc := newScoringService(gw)

	response, err := svc.Score(context.Background(), testSession(), dto.ScoreRequest{
		Question: waterQuestion(),
		Answer:   "Water is H2O, made of hydrogen and oxygen.",
	})
	require.NoError(t, err)
	require.Equal(t, 2.3, response.TotalScore)
	require.Equal(t, 4.0, response.MaxScore)
	require.Equal(t, 57.5, response.Percentage)
}

func TestScoreHeuristicNoKeywords(t *testing.T) {
	gw := &stubGateway{workingOK: false}
	svc := newScoringService(gw)

	question := waterQuestion()
	question.Rubric = []models.RubricCriterion{{Description: "Any valid reasoning", Marks: 4}}

	response, err := svc.Score(context.Background(), testSession(), dto.ScoreRequest{
		Question: question,
		Answer:   "A short answer.",
	})
	require.NoError(t, err)
	require.Equal(t, models.ScoredByHeuristic, response.Method)
	require.GreaterOrEqual(t, response.TotalScore, 0.0)
	require.LessOrEqual(t, response.TotalScore, 4.0)
}

func TestScoreBatchPreservesOrder(t *testing.T) {
	gw := &stubGateway{workingOK: false}
	svc := newScoringService(gw)

	response, err := svc.ScoreBatch(context.Background(), testSession(), dto.BatchScoreRequest{
		Question: waterQuestion(),
		Answers:  []string{"", "Water is H2O, made of hydrogen and oxygen."},
	})
	require.NoError(t, err)
	require.Len(t, response.Results, 2)
	require.Equal(t, models.ScoredEmptyAnswer, response.Results[0].Method)
	require.Equal(t, models.ScoredByHeuristic, response.Results[1].Method)
}

func TestScoreBatchRejectsEmptyAnswerList(t *testing.T) {
	gw := &stubGateway{workingOK: false}
	svc := newScoringService(gw)

	_, err := svc.ScoreBatch(context.Background(), testSession(), dto.BatchScoreRequest{
		Question: waterQuestion(),
	})
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

package dto

import "github.com/quizforge/quizforge-api/internal/models"

// ClosedFormRequest represents the payload for closed-form quiz generation.
type ClosedFormRequest struct {
	SourceText string `json:"source_text" validate:"required,min=1"`
	Kind       string `json:"kind" validate:"required,oneof=multiple_choice true_false mixed"`
	Count      int    `json:"count" validate:"required,gt=0,lte=15"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=Standard Advanced Extreme"`
}

// OpenEndedRequest represents the payload for open-ended quiz generation.
type OpenEndedRequest struct {
	SourceText string `json:"source_text" validate:"required,min=1"`
	Count      int    `json:"count" validate:"required,gt=0,lte=10"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=Standard Advanced Extreme"`
}

// MixedSetRequest represents the payload for a combined quiz. At least one of
// the counts must be positive; the service rejects an all-zero request.
type MixedSetRequest struct {
	SourceText          string `json:"source_text" validate:"required,min=1"`
	MultipleChoiceCount int    `json:"multiple_choice_count" validate:"gte=0,lte=15"`
	TrueFalseCount      int    `json:"true_false_count" validate:"gte=0,lte=15"`
	OpenEndedCount      int    `json:"open_ended_count" validate:"gte=0,lte=10"`
	Difficulty          string `json:"difficulty" validate:"omitempty,oneof=Standard Advanced Extreme"`
}

// SummaryRequest represents the payload for text summarization.
type SummaryRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// QuizResponse carries generated questions plus the provider that produced
// them, which may differ from the requested provider after failover.
type QuizResponse struct {
	Provider  string            `json:"provider"`
	Questions []models.Question `json:"questions"`
}

// SummaryResponse carries a summarized source text.
type SummaryResponse struct {
	Provider string `json:"provider"`
	Summary  string `json:"summary"`
}

// ScoreRequest represents the payload for scoring one open-ended answer.
type ScoreRequest struct {
	Question models.Question `json:"question" validate:"required"`
	Answer   string          `json:"answer"`
}

// BatchScoreRequest scores several answers against the same question.
type BatchScoreRequest struct {
	Question models.Question `json:"question" validate:"required"`
	Answers  []string        `json:"answers" validate:"required,min=1"`
}

// ScoreResponse carries one scoring result and the provider that produced it.
// Heuristic results report the provider as "heuristic".
type ScoreResponse struct {
	models.ScoringResult
	Provider string `json:"provider"`
}

// BatchScoreResponse carries the results of a batch scoring call in answer
// order.
type BatchScoreResponse struct {
	Results []ScoreResponse `json:"results"`
}

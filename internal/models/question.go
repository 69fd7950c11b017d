package models

// QuestionKind selects which closed-form families a generation call asks for.
type QuestionKind string

const (
	QuestionKindMultipleChoice QuestionKind = "multiple_choice"
	QuestionKindTrueFalse      QuestionKind = "true_false"
	QuestionKindMixed          QuestionKind = "mixed"
)

// DifficultyTier governs the sophistication of generated questions.
type DifficultyTier string

const (
	DifficultyStandard DifficultyTier = "Standard"
	DifficultyAdvanced DifficultyTier = "Advanced"
	DifficultyExtreme  DifficultyTier = "Extreme"
)

// QuestionType tags the variant of one generated question.
type QuestionType string

const (
	QuestionClosedForm QuestionType = "closed_form"
	QuestionOpenEnded  QuestionType = "open_ended"
)

// RubricCriterion is one weighted, keyword-annotated grading criterion of an
// open-ended question's marking scheme.
type RubricCriterion struct {
	Description string   `json:"criterion"`
	Marks       float64  `json:"marks"`
	Keywords    []string `json:"keywords"`
}

// Question is one generated quiz item. Closed-form questions carry options,
// an answer key and an explanation; open-ended questions carry total marks, a
// rubric and a model answer. Exactly one of the two field groups is populated
// depending on Type.
type Question struct {
	Type        QuestionType `json:"type"`
	Prompt      string       `json:"question"`
	Options     []string     `json:"options,omitempty"`
	AnswerKey   string       `json:"correct_answer,omitempty"`
	Explanation string       `json:"explanation,omitempty"`

	TotalMarks  float64           `json:"total_marks,omitempty"`
	Rubric      []RubricCriterion `json:"marking_scheme,omitempty"`
	ModelAnswer string            `json:"model_answer,omitempty"`
}

// IsTrueFalse reports whether a closed-form question is a true/false item.
func (q Question) IsTrueFalse() bool {
	return q.Type == QuestionClosedForm && len(q.Options) == 2
}

// RubricKeywordTotal counts the keywords across all criteria.
func (q Question) RubricKeywordTotal() int {
	total := 0
	for _, criterion := range q.Rubric {
		total += len(criterion.Keywords)
	}
	return total
}

// CriterionScore is the per-criterion breakdown of a model-scored answer.
type CriterionScore struct {
	Criterion string  `json:"criterion"`
	Awarded   float64 `json:"marks_awarded"`
	Max       float64 `json:"max_marks"`
	Feedback  string  `json:"feedback"`
}

// ScoringMethod records which path produced a ScoringResult.
type ScoringMethod string

const (
	ScoredByModel     ScoringMethod = "model"
	ScoredByHeuristic ScoringMethod = "heuristic"
	ScoredEmptyAnswer ScoringMethod = "no_answer"
)

// ScoringResult is the graded outcome for one open-ended answer. Results from
// the heuristic fallback carry totals only and leave CriterionScores empty.
type ScoringResult struct {
	CriterionScores []CriterionScore `json:"criterion_scores,omitempty"`
	TotalScore      float64          `json:"total_score"`
	MaxScore        float64          `json:"max_score"`
	Percentage      float64          `json:"percentage"`
	OverallFeedback string           `json:"overall_feedback"`
	Strengths       []string         `json:"strengths,omitempty"`
	Improvements    []string         `json:"improvements,omitempty"`
	Method          ScoringMethod    `json:"method"`
}

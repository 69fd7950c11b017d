package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/quizforge/quizforge-api/internal/dto"
	"github.com/quizforge/quizforge-api/internal/extract"
	"github.com/quizforge/quizforge-api/internal/models"
	"github.com/quizforge/quizforge-api/pkg/ai"
)

// CompletionGateway is the slice of the provider gateway the services need.
type CompletionGateway interface {
	WorkingClient(ctx context.Context, session *models.ActiveSession) (ai.Client, string, bool)
	Complete(ctx context.Context, client ai.Client, req ai.CompletionRequest) (ai.Completion, bool)
}

// QuizService exposes quiz generation and summarization operations.
type QuizService interface {
	GenerateClosedForm(ctx context.Context, session *models.ActiveSession, payload dto.ClosedFormRequest) (dto.QuizResponse, error)
	GenerateOpenEnded(ctx context.Context, session *models.ActiveSession, payload dto.OpenEndedRequest) (dto.QuizResponse, error)
	GenerateMixedSet(ctx context.Context, session *models.ActiveSession, payload dto.MixedSetRequest) (dto.QuizResponse, error)
	Summarize(ctx context.Context, session *models.ActiveSession, payload dto.SummaryRequest) (dto.SummaryResponse, error)
}

// QuizConfig describes generation tuning knobs.
type QuizConfig struct {
	GenerationTemperature float32
	SummaryTemperature    float32
	MaxTokens             int
	SummaryThreshold      int
}

type quizService struct {
	gateway   CompletionGateway
	validator *validator.Validate
	logger    zerolog.Logger
	config    QuizConfig
}

// NewQuizService constructs a quiz generation service.
func NewQuizService(gateway CompletionGateway, validate *validator.Validate, logger zerolog.Logger, cfg QuizConfig) QuizService {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.GenerationTemperature <= 0 {
		cfg.GenerationTemperature = 0.7
	}
	if cfg.SummaryTemperature <= 0 {
		cfg.SummaryTemperature = 0.5
	}

	return &quizService{
		gateway:   gateway,
		validator: validate,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
		config:    cfg,
	}
}

type closedFormDocument struct {
	Questions []closedFormItem `json:"questions"`
}

type closedFormItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

type openEndedDocument struct {
	Questions []openEndedItem `json:"questions"`
}

type openEndedItem struct {
	Question      string                   `json:"question"`
	TotalMarks    float64                  `json:"total_marks"`
	MarkingScheme []models.RubricCriterion `json:"marking_scheme"`
	ModelAnswer   string                   `json:"model_answer"`
}

func (s *quizService) GenerateClosedForm(ctx context.Context, session *models.ActiveSession, payload dto.ClosedFormRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}

	var mcqCount, tfCount int
	switch models.QuestionKind(payload.Kind) {
	case models.QuestionKindMultipleChoice:
		mcqCount = payload.Count
	case models.QuestionKindTrueFalse:
		tfCount = payload.Count
	default:
		// Mixed: half multiple choice, remainder true/false.
		mcqCount = payload.Count / 2
		tfCount = payload.Count - mcqCount
	}

	return s.generateClosed(ctx, session, payload.SourceText, mcqCount, tfCount, models.DifficultyTier(payload.Difficulty))
}

func (s *quizService) generateClosed(ctx context.Context, session *models.ActiveSession, sourceText string, mcqCount, tfCount int, tier models.DifficultyTier) (dto.QuizResponse, error) {
	client, displayName, ok := s.gateway.WorkingClient(ctx, session)
	if !ok {
		return dto.QuizResponse{}, &GenerationError{Message: ErrNoWorkingProvider.Error(), Diagnostic: displayName, Err: ErrNoWorkingProvider}
	}

	sourceText = s.condense(ctx, client, sourceText)
	prompt := buildClosedFormPrompt(sourceText, mcqCount, tfCount, tier)

	completion, ok := s.gateway.Complete(ctx, client, ai.CompletionRequest{
		Family:      ai.FamilyStandard,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: prompt}},
		Temperature: s.config.GenerationTemperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if !ok {
		return dto.QuizResponse{}, &GenerationError{Message: "quiz generation request failed", Diagnostic: extract.Truncate(completion.Text)}
	}

	var document closedFormDocument
	if err := decodeDocument(completion.Text, closedFormSchema, &document, "failed to parse quiz data from response"); err != nil {
		return dto.QuizResponse{}, err
	}

	questions := make([]models.Question, 0, len(document.Questions))
	for _, item := range document.Questions {
		questions = append(questions, models.Question{
			Type:        models.QuestionClosedForm,
			Prompt:      item.Question,
			Options:     item.Options,
			AnswerKey:   item.CorrectAnswer,
			Explanation: item.Explanation,
		})
	}

	if err := validateClosedQuestions(questions); err != nil {
		return dto.QuizResponse{}, err
	}

	requested := mcqCount + tfCount
	if len(questions) != requested {
		// Models sometimes return a different count; pass through what was
		// parsed rather than resampling.
		s.logger.Warn().Int("requested", requested).Int("returned", len(questions)).Msg("question count mismatch")
	}

	return dto.QuizResponse{Provider: completion.Provider, Questions: questions}, nil
}

func (s *quizService) GenerateOpenEnded(ctx context.Context, session *models.ActiveSession, payload dto.OpenEndedRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}
	return s.generateOpen(ctx, session, payload.SourceText, payload.Count, models.DifficultyTier(payload.Difficulty))
}

func (s *quizService) generateOpen(ctx context.Context, session *models.ActiveSession, sourceText string, count int, tier models.DifficultyTier) (dto.QuizResponse, error) {
	client, displayName, ok := s.gateway.WorkingClient(ctx, session)
	if !ok {
		return dto.QuizResponse{}, &GenerationError{Message: ErrNoWorkingProvider.Error(), Diagnostic: displayName, Err: ErrNoWorkingProvider}
	}

	sourceText = s.condense(ctx, client, sourceText)
	prompt := buildOpenEndedPrompt(sourceText, count, tier)

	completion, ok := s.gateway.Complete(ctx, client, ai.CompletionRequest{
		Family:      ai.FamilyStandard,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: prompt}},
		Temperature: s.config.GenerationTemperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if !ok {
		return dto.QuizResponse{}, &GenerationError{Message: "open-ended generation request failed", Diagnostic: extract.Truncate(completion.Text)}
	}

	var document openEndedDocument
	if err := decodeDocument(completion.Text, openEndedSchema, &document, "failed to parse open-ended quiz data from response"); err != nil {
		return dto.QuizResponse{}, err
	}

	questions := make([]models.Question, 0, len(document.Questions))
	for _, item := range document.Questions {
		questions = append(questions, models.Question{
			Type:        models.QuestionOpenEnded,
			Prompt:      item.Question,
			TotalMarks:  item.TotalMarks,
			Rubric:      item.MarkingScheme,
			ModelAnswer: item.ModelAnswer,
		})
	}

	if err := validateOpenEndedQuestions(questions); err != nil {
		return dto.QuizResponse{}, err
	}

	return dto.QuizResponse{Provider: completion.Provider, Questions: questions}, nil
}

// GenerateMixedSet composes closed-form and open-ended generation. The call
// is atomic: if either sub-generation fails, no partial results are returned.
func (s *quizService) GenerateMixedSet(ctx context.Context, session *models.ActiveSession, payload dto.MixedSetRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}
	if payload.MultipleChoiceCount+payload.TrueFalseCount+payload.OpenEndedCount == 0 {
		return dto.QuizResponse{}, &ValidationError{Message: "at least one question count must be positive"}
	}

	tier := models.DifficultyTier(payload.Difficulty)
	combined := dto.QuizResponse{}

	if payload.MultipleChoiceCount+payload.TrueFalseCount > 0 {
		closed, err := s.generateClosed(ctx, session, payload.SourceText, payload.MultipleChoiceCount, payload.TrueFalseCount, tier)
		if err != nil {
			return dto.QuizResponse{}, err
		}
		combined.Provider = closed.Provider
		combined.Questions = append(combined.Questions, closed.Questions...)
	}

	if payload.OpenEndedCount > 0 {
		open, err := s.generateOpen(ctx, session, payload.SourceText, payload.OpenEndedCount, tier)
		if err != nil {
			return dto.QuizResponse{}, err
		}
		combined.Provider = open.Provider
		combined.Questions = append(combined.Questions, open.Questions...)
	}

	return combined, nil
}

// Summarize condenses a source text into key points. It degrades softly: on
// any provider or transport failure the original text is returned unchanged.
func (s *quizService) Summarize(ctx context.Context, session *models.ActiveSession, payload dto.SummaryRequest) (dto.SummaryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SummaryResponse{}, err
	}

	client, displayName, ok := s.gateway.WorkingClient(ctx, session)
	if !ok {
		s.logger.Warn().Str("reason", displayName).Msg("summarization skipped, no working provider")
		return dto.SummaryResponse{Provider: displayName, Summary: payload.Text}, nil
	}

	summary, provider := s.summarizeWith(ctx, client, payload.Text)
	return dto.SummaryResponse{Provider: provider, Summary: summary}, nil
}

func (s *quizService) summarizeWith(ctx context.Context, client ai.Client, text string) (string, string) {
	completion, ok := s.gateway.Complete(ctx, client, ai.CompletionRequest{
		Family:      ai.FamilyStandard,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: buildSummaryPrompt(text)}},
		Temperature: s.config.SummaryTemperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if !ok || strings.TrimSpace(completion.Text) == "" {
		return text, client.Provider()
	}
	return completion.Text, completion.Provider
}

// condense summarizes oversized source texts before prompting, so local
// models with small context windows are not fed the full document.
func (s *quizService) condense(ctx context.Context, client ai.Client, text string) string {
	if s.config.SummaryThreshold <= 0 || len(text) <= s.config.SummaryThreshold {
		return text
	}
	s.logger.Info().Int("length", len(text)).Msg("source text exceeds summary threshold, condensing")
	condensed, _ := s.summarizeWith(ctx, client, text)
	return condensed
}

func decodeDocument(raw string, schema *jsonschema.Schema, v any, failMessage string) error {
	document, err := extract.Document(raw)
	if err != nil {
		var extractErr *extract.Error
		if errors.As(err, &extractErr) {
			return &GenerationError{Message: failMessage, Diagnostic: extractErr.Excerpt}
		}
		return &GenerationError{Message: failMessage, Diagnostic: extract.Truncate(raw)}
	}

	var value any
	if err := json.Unmarshal(document, &value); err != nil {
		return &GenerationError{Message: failMessage, Diagnostic: extract.Truncate(raw)}
	}
	if err := schema.Validate(value); err != nil {
		return &GenerationError{Message: failMessage, Diagnostic: extract.Truncate(raw)}
	}
	if err := json.Unmarshal(document, v); err != nil {
		return &GenerationError{Message: failMessage, Diagnostic: extract.Truncate(raw)}
	}
	return nil
}

func validateClosedQuestions(questions []models.Question) error {
	for i, question := range questions {
		if len(question.Options) != 2 && len(question.Options) != 4 {
			return &ValidationError{Message: fmt.Sprintf("question %d has %d options, want 2 or 4", i+1, len(question.Options))}
		}
		if !answerKeyMatches(question) {
			return &ValidationError{Message: fmt.Sprintf("question %d answer key %q does not reference an option", i+1, question.AnswerKey)}
		}
	}
	return nil
}

func validateOpenEndedQuestions(questions []models.Question) error {
	for i, question := range questions {
		if question.TotalMarks <= 0 {
			return &ValidationError{Message: fmt.Sprintf("question %d has non-positive total marks", i+1)}
		}
		var sum float64
		for _, criterion := range question.Rubric {
			sum += criterion.Marks
		}
		if diff := sum - question.TotalMarks; diff > 0.001 || diff < -0.001 {
			return &ValidationError{Message: fmt.Sprintf("question %d rubric marks sum to %g, want %g", i+1, sum, question.TotalMarks)}
		}
	}
	return nil
}

// answerKeyMatches accepts both full-option answers ("True") and letter keys
// ("A" against "A) ..."), which is how models answer the prompt examples.
func answerKeyMatches(question models.Question) bool {
	key := strings.TrimSpace(question.AnswerKey)
	if key == "" {
		return false
	}
	for _, option := range question.Options {
		if strings.EqualFold(option, key) {
			return true
		}
		if strings.HasPrefix(option, key+")") || strings.HasPrefix(option, key+".") {
			return true
		}
	}
	return false
}

package service

import (
	"fmt"
	"strings"

	"github.com/quizforge/quizforge-api/internal/models"
)

// Fixed instruction blocks injected into generation prompts per difficulty
// tier. The Extreme block deliberately asks for adversarial option sets where
// several choices are partially correct but exactly one is the most complete.
var closedFormDifficultyInstructions = map[models.DifficultyTier]string{
	models.DifficultyStandard: `Create university-level questions that test comprehension, analysis, and application of the material.
Questions should be straightforward but require good understanding of the content.
Focus on key concepts, definitions, and logical connections.`,
	models.DifficultyAdvanced: `Create advanced questions that require synthesis, evaluation, and critical thinking.
Include scenario-based questions and complex problem-solving.
Test ability to apply knowledge in new contexts.
Questions should be challenging but fair, suitable for graduate-level study.`,
	models.DifficultyExtreme: `Create EXTREMELY challenging questions that require critical thinking, careful reading, and deep analysis.
Make questions manipulative and tricky - use subtle distinctions, edge cases, and nuanced interpretations.
Include questions that test ability to identify assumptions, logical fallacies, and hidden implications.
Use complex scenarios that require synthesis of multiple concepts. Create sophisticated answer choices where:

- Some questions may have multiple technically correct options, but only ONE is the BEST/MOST COMPLETE answer
- Include "correct" vs "more correct" scenarios where students must choose the MOST accurate or comprehensive response
- Design questions where 2-3 options could be partially right, but one stands out as superior

Make incorrect options very plausible and tempting.
Questions should be beyond university level - suitable for advanced professionals or doctoral students.`,
}

var openEndedDifficultyInstructions = map[models.DifficultyTier]string{
	models.DifficultyStandard: `Create university-level open-ended questions that test comprehension and analysis.
Questions should require explanation of concepts, relationships, and applications.
Marking schemes should reward understanding, clarity, and correct use of terminology.`,
	models.DifficultyAdvanced: `Create advanced open-ended questions requiring critical analysis and synthesis.
Questions should involve evaluation, comparison, and complex problem-solving.
Marking schemes should reward depth of analysis, original thinking, and sophisticated reasoning.`,
	models.DifficultyExtreme: `Create expert-level open-ended questions requiring deep critical thinking.
Questions should involve complex scenarios, edge cases, and nuanced analysis.
Marking schemes should reward exceptional insight, comprehensive understanding, and advanced reasoning.`,
}

func difficultyOrDefault(tier models.DifficultyTier, instructions map[models.DifficultyTier]string) (models.DifficultyTier, string) {
	if block, ok := instructions[tier]; ok {
		return tier, block
	}
	return models.DifficultyStandard, instructions[models.DifficultyStandard]
}

const multipleChoiceExample = `{
  "questions": [
    {
      "question": "Question text here",
      "options": ["A) Option 1", "B) Option 2", "C) Option 3", "D) Option 4"],
      "correct_answer": "A",
      "explanation": "Explanation of why this is correct"
    }
  ]
}`

const trueFalseExample = `{
  "questions": [
    {
      "question": "Question text here",
      "options": ["True", "False"],
      "correct_answer": "True",
      "explanation": "Explanation of why this is correct"
    }
  ]
}`

const mixedExample = `{
  "questions": [
    {
      "question": "Question text here",
      "options": ["A) Option 1", "B) Option 2", "C) Option 3", "D) Option 4"],
      "correct_answer": "A",
      "explanation": "Explanation of why this is correct"
    },
    {
      "question": "Question text here",
      "options": ["True", "False"],
      "correct_answer": "True",
      "explanation": "Explanation of why this is correct"
    }
  ]
}`

const openEndedExample = `{
  "questions": [
    {
      "question": "Question text here",
      "total_marks": 4,
      "marking_scheme": [
        {
          "criterion": "Define water as H2O compound",
          "marks": 1,
          "keywords": ["H2O", "hydrogen", "oxygen", "compound", "molecule"]
        },
        {
          "criterion": "Explain physical properties",
          "marks": 1,
          "keywords": ["liquid", "room temperature", "boiling point", "freezing point"]
        },
        {
          "criterion": "Describe biological importance",
          "marks": 2,
          "keywords": ["life", "essential", "cellular", "metabolism", "survival"]
        }
      ],
      "model_answer": "Water is a chemical compound composed of two hydrogen atoms and one oxygen atom (H2O). At room temperature, it exists as a liquid with a boiling point of 100C. Water is essential for all life forms as it facilitates cellular processes and metabolic reactions.",
      "type": "open_ended"
    }
  ]
}`

func buildClosedFormPrompt(sourceText string, mcqCount, tfCount int, tier models.DifficultyTier) string {
	tier, instruction := difficultyOrDefault(tier, closedFormDifficultyInstructions)

	var requirement, example string
	switch {
	case mcqCount > 0 && tfCount > 0:
		requirement = fmt.Sprintf("generate exactly %d questions:\n- %d multiple choice questions with 4 options each\n- %d true or false questions",
			mcqCount+tfCount, mcqCount, tfCount)
		example = mixedExample
	case tfCount > 0:
		requirement = fmt.Sprintf("generate exactly %d true or false questions", tfCount)
		example = trueFalseExample
	default:
		requirement = fmt.Sprintf("generate exactly %d multiple choice questions with 4 options each", mcqCount)
		example = multipleChoiceExample
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following content, %s.\n\n", requirement)
	fmt.Fprintf(&b, "DIFFICULTY LEVEL: %s\n%s\n\n", tier, instruction)
	fmt.Fprintf(&b, "Return the response in this exact JSON format:\n%s\n\n", example)
	fmt.Fprintf(&b, "Content: %s\n", sourceText)
	return b.String()
}

func buildOpenEndedPrompt(sourceText string, count int, tier models.DifficultyTier) string {
	tier, instruction := difficultyOrDefault(tier, openEndedDifficultyInstructions)

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following content, generate exactly %d open-ended questions with detailed marking schemes.\n\n", count)
	fmt.Fprintf(&b, "DIFFICULTY LEVEL: %s\n%s\n\n", tier, instruction)
	b.WriteString(`For each question:
1. Create a clear, specific question that requires a written response
2. Assign appropriate total marks (2-5 marks per question)
3. Break down the marking scheme into specific criteria with point allocations
4. Provide a model answer that demonstrates the expected response

`)
	fmt.Fprintf(&b, "Return the response in this exact JSON format:\n%s\n\n", openEndedExample)
	fmt.Fprintf(&b, "Content: %s\n", sourceText)
	return b.String()
}

func buildScoringPrompt(question models.Question, answer string) string {
	var scheme strings.Builder
	for _, criterion := range question.Rubric {
		fmt.Fprintf(&scheme, "- %s (%g marks): Look for keywords: %s\n",
			criterion.Description, criterion.Marks, strings.Join(criterion.Keywords, ", "))
	}

	var b strings.Builder
	b.WriteString("You are an expert examiner scoring an open-ended question. Score the student's answer based on the detailed marking scheme provided.\n\n")
	fmt.Fprintf(&b, "QUESTION: %s\nTOTAL MARKS: %g\n\n", question.Prompt, question.TotalMarks)
	fmt.Fprintf(&b, "MARKING SCHEME:\n%s\n", scheme.String())
	fmt.Fprintf(&b, "MODEL ANSWER (for reference):\n%s\n\n", question.ModelAnswer)
	fmt.Fprintf(&b, "STUDENT'S ANSWER:\n%s\n\n", answer)
	b.WriteString(`SCORING INSTRUCTIONS:
1. Award marks for each criterion based on how well the student's answer addresses it
2. Be fair but thorough - partial marks are encouraged
3. Consider synonyms and alternative valid explanations
4. Reward clear understanding even if wording differs from model answer
5. Deduct marks only for factual errors or missing key concepts

Return your evaluation in this exact JSON format:
{
  "criterion_scores": [
    {
      "criterion": "Define water as H2O compound",
      "marks_awarded": 1,
      "max_marks": 1,
      "feedback": "Correctly identified water as H2O compound"
    }
  ],
  "total_score": 3.5,
  "max_score": 4,
  "percentage": 87.5,
  "overall_feedback": "Good understanding demonstrated.",
  "strengths": ["Clear definition"],
  "improvements": ["Add more specific detail"]
}
`)
	return b.String()
}

func buildSummaryPrompt(text string) string {
	return fmt.Sprintf("Summarize the following text into key points:\n%s", text)
}

package service

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schemas applied to extracted documents before typed decoding. The greedy
// extraction strategies can match brace spans that are valid JSON but not a
// quiz or scoring document; the schema pass rejects those.
const closedFormSchemaJSON = `{
	"type": "object",
	"required": ["questions"],
	"properties": {
		"questions": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["question", "options", "correct_answer"],
				"properties": {
					"question": {"type": "string"},
					"options": {"type": "array", "items": {"type": "string"}, "minItems": 2, "maxItems": 4},
					"correct_answer": {"type": "string"},
					"explanation": {"type": "string"}
				}
			}
		}
	}
}`

const openEndedSchemaJSON = `{
	"type": "object",
	"required": ["questions"],
	"properties": {
		"questions": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["question", "total_marks", "marking_scheme", "model_answer"],
				"properties": {
					"question": {"type": "string"},
					"total_marks": {"type": "number", "minimum": 1},
					"marking_scheme": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["criterion", "marks"],
							"properties": {
								"criterion": {"type": "string"},
								"marks": {"type": "number", "exclusiveMinimum": 0},
								"keywords": {"type": "array", "items": {"type": "string"}}
							}
						}
					},
					"model_answer": {"type": "string"}
				}
			}
		}
	}
}`

const scoringSchemaJSON = `{
	"type": "object",
	"required": ["total_score", "max_score"],
	"properties": {
		"total_score": {"type": "number", "minimum": 0},
		"max_score": {"type": "number", "exclusiveMinimum": 0},
		"percentage": {"type": "number"},
		"overall_feedback": {"type": "string"},
		"criterion_scores": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["criterion", "marks_awarded", "max_marks"],
				"properties": {
					"criterion": {"type": "string"},
					"marks_awarded": {"type": "number", "minimum": 0},
					"max_marks": {"type": "number", "minimum": 0},
					"feedback": {"type": "string"}
				}
			}
		},
		"strengths": {"type": "array", "items": {"type": "string"}},
		"improvements": {"type": "array", "items": {"type": "string"}}
	}
}`

var (
	closedFormSchema = mustCompileSchema("closed_form.schema.json", closedFormSchemaJSON)
	openEndedSchema  = mustCompileSchema("open_ended.schema.json", openEndedSchemaJSON)
	scoringSchema    = mustCompileSchema("scoring.schema.json", scoringSchemaJSON)
)

func mustCompileSchema(name, source string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(source)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}

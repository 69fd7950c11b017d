// Package extract recovers JSON documents from model output. Models
// inconsistently wrap structured answers in prose or markdown fences, so a
// chain of recovery strategies is tried in order, trading strictness for
// robustness.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxDiagnosticLength bounds the raw-text excerpt carried by an Error.
const maxDiagnosticLength = 1000

var (
	fencedTagged   = regexp.MustCompile("(?s)```(?:json|JSON)\\s*(\\{.*\\})\\s*```")
	fencedUntagged = regexp.MustCompile("(?s)```\\s*(\\{.*\\})\\s*```")
	braceSpan      = regexp.MustCompile(`(?s)\{.*\}`)
)

// Error reports that no recovery strategy produced parseable JSON. Excerpt
// carries up to 1000 characters of the raw model output for diagnostics.
type Error struct {
	Excerpt string
}

func (e *Error) Error() string {
	return "no structured document found in model output"
}

// Document extracts the first parseable JSON document from raw model output.
// Strategies, first success wins:
//  1. parse the whole trimmed text;
//  2. a ```json fenced block (tag optional), innermost braces;
//  3. a bare ``` fenced block, innermost braces;
//  4. the greedy span from the first '{' to the last '}'.
//
// The final strategy can over-match when prose itself contains braces; the
// schema validation applied by callers rejects such mis-extractions.
func Document(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)

	if candidate, ok := parse(trimmed); ok {
		return candidate, nil
	}

	for _, pattern := range []*regexp.Regexp{fencedTagged, fencedUntagged} {
		if match := pattern.FindStringSubmatch(trimmed); match != nil {
			if candidate, ok := parse(match[1]); ok {
				return candidate, nil
			}
		}
	}

	if match := braceSpan.FindString(trimmed); match != "" {
		if candidate, ok := parse(match); ok {
			return candidate, nil
		}
	}

	return nil, &Error{Excerpt: Truncate(trimmed)}
}

// Unmarshal extracts a document and decodes it into v.
func Unmarshal(raw string, v any) error {
	document, err := Document(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(document, v); err != nil {
		return &Error{Excerpt: Truncate(raw)}
	}
	return nil
}

// Truncate caps text at the diagnostic length, appending an ellipsis when
// cut. The cut lands on a rune boundary so the excerpt stays valid UTF-8.
func Truncate(text string) string {
	if len(text) <= maxDiagnosticLength {
		return text
	}
	cut := maxDiagnosticLength
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func parse(text string) (json.RawMessage, bool) {
	if text == "" {
		return nil, false
	}
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, false
	}
	return json.RawMessage(text), true
}

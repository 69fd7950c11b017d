package extract_test

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/quizforge/quizforge-api/internal/extract"
)

func TestDocumentDirectParse(t *testing.T) {
	document, err := extract.Document(`  {"questions": []}  `)
	require.NoError(t, err)
	require.JSONEq(t, `{"questions": []}`, string(document))
}

func TestDocumentTaggedFence(t *testing.T) {
	raw := "Here is the quiz you asked for:\n```json\n{\"a\": 1}\n```\nLet me know if you need more."
	document, err := extract.Document(raw)
	require.NoError(t, err)
	require.JSONEq(t, `{"a": 1}`, string(document))
}

func TestDocumentBareFence(t *testing.T) {
	raw := "Sure!\n```\n{\"a\": [1, 2]}\n```"
	document, err := extract.Document(raw)
	require.NoError(t, err)
	require.JSONEq(t, `{"a": [1, 2]}`, string(document))
}

func TestDocumentBraceSpanFallback(t *testing.T) {
	raw := `The result is {"total_score": 3.5, "max_score": 4} as computed.`
	document, err := extract.Document(raw)
	require.NoError(t, err)
	require.JSONEq(t, `{"total_score": 3.5, "max_score": 4}`, string(document))
}

func TestDocumentNoBraces(t *testing.T) {
	_, err := extract.Document("I could not generate any questions, sorry.")
	var extractErr *extract.Error
	require.ErrorAs(t, err, &extractErr)
	require.Equal(t, "I could not generate any questions, sorry.", extractErr.Excerpt)
}

func TestDocumentUnparseableBraces(t *testing.T) {
	_, err := extract.Document("set {x | x > 0} is unbounded")
	var extractErr *extract.Error
	require.ErrorAs(t, err, &extractErr)
}

func TestDocumentExcerptTruncated(t *testing.T) {
	raw := strings.Repeat("x", 5000)
	_, err := extract.Document(raw)
	var extractErr *extract.Error
	require.ErrorAs(t, err, &extractErr)
	require.Len(t, extractErr.Excerpt, 1003)
	require.True(t, strings.HasSuffix(extractErr.Excerpt, "..."))
}

func TestUnmarshal(t *testing.T) {
	raw := "```json\n{\"questions\": [{\"question\": \"Q1\"}]}\n```"

	var doc struct {
		Questions []struct {
			Question string `json:"question"`
		} `json:"questions"`
	}
	require.NoError(t, extract.Unmarshal(raw, &doc))
	require.Len(t, doc.Questions, 1)
	require.Equal(t, "Q1", doc.Questions[0].Question)
}

func TestUnmarshalTypeMismatch(t *testing.T) {
	var doc struct {
		Questions []json.RawMessage `json:"questions"`
	}
	err := extract.Unmarshal(`{"questions": "not-an-array"}`, &doc)
	var extractErr *extract.Error
	require.ErrorAs(t, err, &extractErr)
}

func TestTruncateShortTextUnchanged(t *testing.T) {
	require.Equal(t, "short", extract.Truncate("short"))
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	// A three-byte rune straddles the 1000-byte cap; the cut must back up
	// to the rune's start instead of leaving a broken sequence.
	raw := strings.Repeat("x", 999) + strings.Repeat("日", 10)
	got := extract.Truncate(raw)
	require.True(t, utf8.ValidString(got))
	require.True(t, strings.HasSuffix(got, "..."))
	require.Equal(t, strings.Repeat("x", 999), strings.TrimSuffix(got, "..."))
}

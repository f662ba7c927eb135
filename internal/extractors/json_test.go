package extractors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

func TestJSONExtractor_SummarizesObjectSchema(t *testing.T) {
	body := `{"name": "widget", "price": 9.99, "tags": ["a", "b", "c", "d"], "meta": {"active": true}}`

	e := NewJSONExtractor()
	out, err := e.Extract(domain.ExtractInput{Text: body})
	require.NoError(t, err)

	assert.Contains(t, out.Markdown, "**name**")
	assert.Contains(t, out.Markdown, "**price**")
	assert.Contains(t, out.Markdown, "**tags**")
	assert.Contains(t, out.Markdown, "array (4 items)")
}

func TestJSONExtractor_TruncatesLargeArraySamples(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`{"items": [`)
	for i := 0; i < 10; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`"item"`)
	}
	sb.WriteString(`]}`)

	e := NewJSONExtractor()
	out, err := e.Extract(domain.ExtractInput{Text: sb.String()})
	require.NoError(t, err)

	assert.Contains(t, out.Markdown, "more items")
}

func TestJSONExtractor_FallsBackOnInvalidJSON(t *testing.T) {
	e := NewJSONExtractor()
	out, err := e.Extract(domain.ExtractInput{Text: "{not valid json"})
	require.NoError(t, err)

	found := false
	for _, w := range out.Warnings {
		if w.Type == domain.WarningExtractionFallback {
			found = true
		}
	}
	assert.True(t, found)
}

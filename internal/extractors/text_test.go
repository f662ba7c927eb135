package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

func TestTextExtractor_PromotesUnderlinedHeading(t *testing.T) {
	body := "Introduction\n============\n\nSome body text.\n"

	e := NewTextExtractor()
	out, err := e.Extract(domain.ExtractInput{Text: body})
	require.NoError(t, err)

	assert.Contains(t, out.Markdown, "# Introduction")
}

func TestTextExtractor_PromotesAllCapsHeading(t *testing.T) {
	body := "OVERVIEW\n\nDetails follow here.\n"

	e := NewTextExtractor()
	out, err := e.Extract(domain.ExtractInput{Text: body})
	require.NoError(t, err)

	assert.Contains(t, out.Markdown, "## OVERVIEW")
}

func TestTextExtractor_FencesIndentedBlock(t *testing.T) {
	body := "Normal line.\n\n    indented code line one\n    indented code line two\n\nMore prose.\n"

	e := NewTextExtractor()
	out, err := e.Extract(domain.ExtractInput{Text: body})
	require.NoError(t, err)

	assert.Contains(t, out.Markdown, "```")
	assert.Contains(t, out.Markdown, "indented code line one")
}

func TestTextExtractor_PreservesBulletList(t *testing.T) {
	body := "- first\n- second\n- third\n"

	e := NewTextExtractor()
	out, err := e.Extract(domain.ExtractInput{Text: body})
	require.NoError(t, err)

	assert.Contains(t, out.Markdown, "- first")
	assert.Contains(t, out.Markdown, "- second")
}

func TestTextExtractor_UsesFirstNonEmptyLineAsTitle(t *testing.T) {
	body := "\n\nFirst real line\nSecond line\n"

	e := NewTextExtractor()
	out, err := e.Extract(domain.ExtractInput{Text: body})
	require.NoError(t, err)

	assert.Equal(t, "First real line", out.Title)
}

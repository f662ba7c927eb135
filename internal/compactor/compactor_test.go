package compactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

const structuralMD = "# Title\n\nBody text one sentence. Another sentence here with more words to pad it out nicely.\n\n## Sub\n\nMore body content that also should appear in the output summary nicely.\n"

func TestCompact_RequiresPacketOrChunkSet(t *testing.T) {
	c := New()
	_, err := c.Compact(driven.CompactInput{}, driven.CompactOptions{MaxTokens: 100})
	assert.Error(t, err)
}

func TestCompact_RequiresPositiveMaxTokens(t *testing.T) {
	c := New()
	_, err := c.Compact(driven.CompactInput{Packet: &domain.Packet{}}, driven.CompactOptions{})
	assert.Error(t, err)
}

func TestCompact_StructuralIncludesAllWhenBudgetIsGenerous(t *testing.T) {
	c := New()
	p := &domain.Packet{SourceID: "s1", Content: structuralMD}
	out, err := c.Compact(driven.CompactInput{Packet: p}, driven.CompactOptions{MaxTokens: 1000, Mode: domain.ModeStructural})
	require.NoError(t, err)
	assert.Contains(t, out.Compacted.Summary, "Title")
	assert.Contains(t, out.Compacted.Summary, "Sub")
	assert.Empty(t, out.Compacted.Omissions)
}

func TestCompact_StructuralOmitsWhenBudgetTooTight(t *testing.T) {
	c := New()
	p := &domain.Packet{SourceID: "s1", Content: structuralMD}
	out, err := c.Compact(driven.CompactInput{Packet: p}, driven.CompactOptions{MaxTokens: 5, Mode: domain.ModeStructural})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Compacted.Omissions)
}

func TestCompact_SalienceStaysWithinBudget(t *testing.T) {
	c := New()
	p := &domain.Packet{SourceID: "s1", Content: structuralMD}
	out, err := c.Compact(driven.CompactInput{Packet: p}, driven.CompactOptions{MaxTokens: 20, Mode: domain.ModeSalience})
	require.NoError(t, err)
	assert.LessOrEqual(t, out.EstTokens, 20)
}

func TestCompact_MapReduceFromChunkSet(t *testing.T) {
	c := New()
	cs := &domain.ChunkSet{
		SourceID: "s2",
		Chunks: []domain.Chunk{
			{Text: "First chunk has some important sentences about the launch date. It happened on 2026-01-05."},
			{Text: "Second chunk discusses pricing. The service costs $20 per month for most customers."},
		},
	}
	out, err := c.Compact(driven.CompactInput{ChunkSet: cs}, driven.CompactOptions{MaxTokens: 40, Mode: domain.ModeMapReduce})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Compacted.Summary)
	assert.LessOrEqual(t, out.EstTokens, 40)
}

func TestCompact_QuestionFocusedPrefersMatchingSentences(t *testing.T) {
	c := New()
	md := "# Pricing\n\nThe service costs twenty dollars per month. Our headquarters is in a large city. Support is available by email around the clock."
	p := &domain.Packet{SourceID: "s3", Content: md}
	out, err := c.Compact(driven.CompactInput{Packet: p}, driven.CompactOptions{
		MaxTokens: 30,
		Mode:      domain.ModeQuestionFocused,
		Question:  "How much does the service cost?",
	})
	require.NoError(t, err)
	assert.Contains(t, out.Compacted.Summary, "costs")
	assert.Empty(t, out.Compacted.Warnings)
}

func TestCompact_QuestionFocusedFallsBackWithoutQuestion(t *testing.T) {
	c := New()
	p := &domain.Packet{SourceID: "s4", Content: structuralMD}
	out, err := c.Compact(driven.CompactInput{Packet: p}, driven.CompactOptions{MaxTokens: 100, Mode: domain.ModeQuestionFocused})
	require.NoError(t, err)
	require.NotEmpty(t, out.Compacted.Warnings)
	assert.Equal(t, domain.WarningExtractionFallback, out.Compacted.Warnings[0].Type)
}

func TestCompact_ExtractsQuotesFromOriginalContentNotSummary(t *testing.T) {
	c := New()
	md := `# Report

Short intro line.

"This is a genuinely interesting quote worth preserving for later citation use."

More filler text follows after the quote in the document body.
`
	p := &domain.Packet{SourceID: "s5", Content: md}
	out, err := c.Compact(driven.CompactInput{Packet: p}, driven.CompactOptions{MaxTokens: 10, Mode: domain.ModeStructural})
	require.NoError(t, err)
	require.NotEmpty(t, out.Compacted.ImportantQuotes)
	assert.Contains(t, out.Compacted.ImportantQuotes[0].Text, "genuinely interesting quote")
}

package chunker

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

func TestChunk_NilPacketReturnsError(t *testing.T) {
	c := New()
	_, err := c.Chunk(nil, driven.ChunkOptions{MaxTokens: 100})
	assert.Error(t, err)
}

func TestChunk_ZeroMaxTokensReturnsError(t *testing.T) {
	c := New()
	_, err := c.Chunk(&domain.Packet{}, driven.ChunkOptions{})
	assert.Error(t, err)
}

func TestChunk_SmallPacketProducesSingleChunk(t *testing.T) {
	c := New()
	p := &domain.Packet{
		SourceID: "abc123",
		KeyBlocks: []domain.KeyBlock{
			{Kind: domain.KindHeading, Text: "# Title"},
			{Kind: domain.KindParagraph, Text: "A short paragraph."},
		},
	}
	set, err := c.Chunk(p, driven.ChunkOptions{MaxTokens: 500})
	require.NoError(t, err)
	require.Len(t, set.Chunks, 1)
	assert.Equal(t, "abc123:c0", set.Chunks[0].ChunkID)
	assert.Contains(t, set.Chunks[0].Text, "Title")
	assert.Contains(t, set.Chunks[0].Text, "short paragraph")
}

func TestChunk_HeadingsFirstForcesFlushAtLevelThreeOrLess(t *testing.T) {
	c := New()
	p := &domain.Packet{
		SourceID: "src",
		KeyBlocks: []domain.KeyBlock{
			{Kind: domain.KindHeading, Text: "# One"},
			{Kind: domain.KindParagraph, Text: "first section body"},
			{Kind: domain.KindHeading, Text: "## Two"},
			{Kind: domain.KindParagraph, Text: "second section body"},
		},
	}
	set, err := c.Chunk(p, driven.ChunkOptions{MaxTokens: 500, Strategy: driven.StrategyHeadingsFirst})
	require.NoError(t, err)
	require.Len(t, set.Chunks, 2)
	assert.Equal(t, "One", set.Chunks[0].HeadingsPath)
	assert.Equal(t, "One > Two", set.Chunks[1].HeadingsPath)
}

func TestChunk_OversizedParagraphSplitsByText(t *testing.T) {
	c := New()
	long := strings.Repeat("word ", 2000)
	p := &domain.Packet{
		SourceID: "src",
		KeyBlocks: []domain.KeyBlock{
			{Kind: domain.KindParagraph, Text: long},
		},
	}
	set, err := c.Chunk(p, driven.ChunkOptions{MaxTokens: 100, MarginRatio: 0.10})
	require.NoError(t, err)
	assert.Greater(t, len(set.Chunks), 1)
	for _, ch := range set.Chunks {
		assert.LessOrEqual(t, ch.EstTokens, 100)
	}
}

func TestChunk_OversizedCodeBlockPreservesFenceOnEveryPart(t *testing.T) {
	c := New()
	var lines []string
	for i := 0; i < 200; i++ {
		lines = append(lines, "fmt.Println(\"line of go source code here\")")
	}
	code := "```go\n" + strings.Join(lines, "\n") + "\n```"
	p := &domain.Packet{
		SourceID: "src",
		KeyBlocks: []domain.KeyBlock{
			{Kind: domain.KindCode, Text: code},
		},
	}
	set, err := c.Chunk(p, driven.ChunkOptions{MaxTokens: 50})
	require.NoError(t, err)
	require.Greater(t, len(set.Chunks), 1)
	for _, ch := range set.Chunks {
		assert.True(t, strings.HasPrefix(ch.Text, "```go"))
		assert.True(t, strings.HasSuffix(ch.Text, "```"))
	}
}

func TestChunk_ChunkIDsAreDenseAfterMerge(t *testing.T) {
	c := New()
	p := &domain.Packet{
		SourceID: "src",
		KeyBlocks: []domain.KeyBlock{
			{Kind: domain.KindHeading, Text: "# A"},
			{Kind: domain.KindParagraph, Text: "tiny"},
			{Kind: domain.KindParagraph, Text: "also tiny"},
		},
	}
	set, err := c.Chunk(p, driven.ChunkOptions{MaxTokens: 1000})
	require.NoError(t, err)
	for i, ch := range set.Chunks {
		assert.Equal(t, i, ch.ChunkIndex)
		assert.Equal(t, "src:c"+strconv.Itoa(i), ch.ChunkID)
	}
}

func TestChunk_FallsBackToMarkdownWalkWithoutKeyBlocks(t *testing.T) {
	c := New()
	p := &domain.Packet{
		SourceID: "src",
		Content:  "# Heading\n\nSome body text.\n\n## Sub\n\nMore text.\n",
	}
	set, err := c.Chunk(p, driven.ChunkOptions{MaxTokens: 500})
	require.NoError(t, err)
	require.NotEmpty(t, set.Chunks)
	assert.Equal(t, len(set.Chunks), set.TotalChunks)
}

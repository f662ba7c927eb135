// Package chunker implements §4.10: splitting a normalized packet into
// token-bounded, boundary-respecting chunks for downstream context windows.
package chunker

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

var _ driven.Chunker = (*Chunker)(nil)

const defaultMarginRatio = 0.10

// Chunker implements driven.Chunker.
type Chunker struct{}

// New creates a chunker.
func New() *Chunker {
	return &Chunker{}
}

// Chunk splits the packet's key blocks (or, lacking those, its raw markdown)
// into a dense, boundary-respecting ChunkSet bounded by opts.MaxTokens.
func (c *Chunker) Chunk(packet *domain.Packet, opts driven.ChunkOptions) (*domain.ChunkSet, error) {
	if packet == nil {
		return nil, domain.ErrInvalidInput
	}
	if opts.MaxTokens <= 0 {
		return nil, domain.ErrInvalidInput
	}

	margin := opts.MarginRatio
	if margin <= 0 {
		margin = defaultMarginRatio
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = driven.StrategyHeadingsFirst
	}

	budget := int(float64(opts.MaxTokens) * (1 - margin))
	if budget < 1 {
		budget = 1
	}

	blocks := packet.KeyBlocks
	if len(blocks) == 0 {
		blocks = fallbackBlocksFromMarkdown(packet.Content, strategy)
	}

	chunks := buildChunks(blocks, budget, strategy)
	chunks = mergeSmallChunks(chunks, opts.MaxTokens)
	reindex(chunks, packet.SourceID)

	total := 0
	for _, ch := range chunks {
		total += ch.EstTokens
	}

	return &domain.ChunkSet{
		SourceID:       packet.SourceID,
		MaxTokens:      opts.MaxTokens,
		TotalChunks:    len(chunks),
		TotalEstTokens: total,
		Chunks:         chunks,
	}, nil
}

var headingLineRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)

func headingLevel(text string) int {
	m := headingLineRe.FindStringSubmatch(text)
	if m == nil {
		return 1
	}
	return len(m[1])
}

func headingText(text string) string {
	m := headingLineRe.FindStringSubmatch(text)
	if m == nil {
		return strings.TrimSpace(text)
	}
	return m[2]
}

type headingFrame struct {
	level int
	text  string
}

func joinHeadingStack(stack []headingFrame) string {
	parts := make([]string, len(stack))
	for i, f := range stack {
		parts[i] = f.text
	}
	return strings.Join(parts, " > ")
}

// buildChunks implements §4.10's block-walk: it tracks the heading path
// across heading blocks and flushes the accumulator on overflow (and, under
// headings_first, on every heading of level <= 3).
func buildChunks(blocks []domain.KeyBlock, budget int, strategy driven.ChunkStrategy) []domain.Chunk {
	var chunks []domain.Chunk
	var stack []headingFrame
	var curTexts []string
	var curTokens int
	var curPath string

	flush := func() {
		if len(curTexts) == 0 {
			return
		}
		text := strings.Join(curTexts, "\n\n")
		chunks = append(chunks, domain.Chunk{
			HeadingsPath: curPath,
			Text:         text,
			EstTokens:    estimateTokens(text),
			CharLen:      len(text),
		})
		curTexts = nil
		curTokens = 0
	}

	for _, b := range blocks {
		if b.Kind == domain.KindHeading {
			level := headingLevel(b.Text)
			for len(stack) > 0 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, headingFrame{level: level, text: headingText(b.Text)})
			path := joinHeadingStack(stack)

			if strategy == driven.StrategyHeadingsFirst && level <= 3 {
				flush()
			}

			tokens := estimateTokens(b.Text)
			if curTokens > 0 && curTokens+tokens > budget {
				flush()
			}
			curPath = path
			curTexts = append(curTexts, b.Text)
			curTokens += tokens
			continue
		}

		path := joinHeadingStack(stack)
		tokens := estimateTokens(b.Text)

		if tokens > budget {
			flush()
			for _, part := range splitByKind(b, budget) {
				chunks = append(chunks, domain.Chunk{
					HeadingsPath: path,
					Text:         part,
					EstTokens:    estimateTokens(part),
					CharLen:      len(part),
				})
			}
			curPath = path
			continue
		}

		if curTokens > 0 && curTokens+tokens > budget {
			flush()
		}
		curPath = path
		curTexts = append(curTexts, b.Text)
		curTokens += tokens
	}
	flush()

	return chunks
}

func reindex(chunks []domain.Chunk, sourceID string) {
	for i := range chunks {
		chunks[i].ChunkIndex = i
		chunks[i].ChunkID = sourceID + ":c" + strconv.Itoa(i)
	}
}

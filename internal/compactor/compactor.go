// Package compactor implements §4.11: reducing a packet or chunk set to a
// target token budget under one of four extractive strategies.
package compactor

import (
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

var _ driven.Compactor = (*Compactor)(nil)

// Compactor implements driven.Compactor.
type Compactor struct{}

// New creates a compactor.
func New() *Compactor {
	return &Compactor{}
}

// Compact reduces the given packet or chunk set to opts.MaxTokens under the
// requested mode.
func (c *Compactor) Compact(input driven.CompactInput, opts driven.CompactOptions) (*domain.CompactedPacket, error) {
	if opts.MaxTokens <= 0 {
		return nil, domain.ErrInvalidInput
	}

	var content, sourceID, originalURL string
	var keyBlocks []domain.KeyBlock
	var chunkTexts []string

	switch {
	case input.Packet != nil:
		content = input.Packet.Content
		sourceID = input.Packet.SourceID
		originalURL = input.Packet.OriginalURL
		keyBlocks = input.Packet.KeyBlocks
	case input.ChunkSet != nil:
		sourceID = input.ChunkSet.SourceID
		var texts []string
		for _, ch := range input.ChunkSet.Chunks {
			texts = append(texts, ch.Text)
			chunkTexts = append(chunkTexts, ch.Text)
		}
		content = strings.Join(texts, "\n\n")
	default:
		return nil, domain.ErrInvalidInput
	}

	preserve := opts.Preserve
	if len(preserve) == 0 {
		preserve = domain.DefaultPreserveClasses()
	}

	mode := opts.Mode
	if mode == "" {
		mode = domain.ModeStructural
	}

	var warnings []domain.Warning
	var omissions []string
	var summary string

	switch mode {
	case domain.ModeStructural:
		summary, omissions = structuralCompact(content, opts.MaxTokens, preserve)
	case domain.ModeSalience:
		summary = salienceCompact(content, opts.MaxTokens, preserve)
	case domain.ModeMapReduce:
		texts := chunkTexts
		if texts == nil {
			texts = chunksFromKeyBlocks(keyBlocks, content)
		}
		summary = mapReduceCompact(texts, opts.MaxTokens, preserve)
	case domain.ModeQuestionFocused:
		var fellBack bool
		summary, fellBack = questionFocusedCompact(content, opts.Question, opts.MaxTokens, preserve)
		if fellBack {
			warnings = append(warnings, domain.Warning{
				Type:    domain.WarningExtractionFallback,
				Message: "question_focused fell back to salience scoring",
			})
		}
	default:
		summary = salienceCompact(content, opts.MaxTokens, preserve)
	}

	if estimateTokens(summary) > opts.MaxTokens {
		truncated, didTruncate := truncateToTokens(summary, opts.MaxTokens)
		summary = truncated
		if didTruncate {
			warnings = append(warnings, domain.Warning{
				Type:    domain.WarningTruncated,
				Message: "summary exceeded max_tokens after assembly and was truncated",
			})
		}
	}

	keyPoints := extractKeyPoints(summary, preserve, keyBlocks)
	quotes := extractQuotes(content, keyBlocks)

	return &domain.CompactedPacket{
		SourceID:    sourceID,
		OriginalURL: originalURL,
		EstTokens:   estimateTokens(summary),
		Compacted: domain.Compacted{
			Summary:         summary,
			KeyPoints:       keyPoints,
			ImportantQuotes: quotes,
			Omissions:       omissions,
			Warnings:        warnings,
		},
	}, nil
}

// chunksFromKeyBlocks gives map_reduce something chunk-shaped to work with
// when only a packet (not a chunk set) was supplied: one synthetic chunk per
// level-1 or level-2 heading section, or the whole content if there are none.
func chunksFromKeyBlocks(keyBlocks []domain.KeyBlock, content string) []string {
	if len(keyBlocks) == 0 {
		return []string{content}
	}
	var texts []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			texts = append(texts, strings.Join(cur, "\n\n"))
			cur = nil
		}
	}
	for _, b := range keyBlocks {
		if b.Kind == domain.KindHeading && headingLevelOf(b.Text) <= 2 {
			flush()
		}
		cur = append(cur, b.Text)
	}
	flush()
	if len(texts) == 0 {
		return []string{content}
	}
	return texts
}

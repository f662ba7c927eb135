package driven

import "github.com/custodia-labs/web-fetch-core/internal/core/domain"

// ChunkStrategy selects between the two boundary-selection policies in §4.10.
type ChunkStrategy string

const (
	StrategyHeadingsFirst ChunkStrategy = "headings_first"
	StrategyBalanced      ChunkStrategy = "balanced"
)

// ChunkOptions configures the chunker (§4.10).
type ChunkOptions struct {
	MaxTokens   int
	MarginRatio float64
	Strategy    ChunkStrategy
}

// Chunker splits a packet into token-bounded, boundary-respecting chunks.
type Chunker interface {
	Chunk(packet *domain.Packet, opts ChunkOptions) (*domain.ChunkSet, error)
}

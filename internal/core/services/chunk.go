package services

import (
	"context"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driving"
)

var _ driving.ChunkService = (*ChunkService)(nil)

// ChunkService implements the `chunk(packet, opts)` tool operation by
// delegating to the C11 chunker.
type ChunkService struct {
	chunker driven.Chunker
}

// NewChunkService builds a ChunkService.
func NewChunkService(chunker driven.Chunker) *ChunkService {
	return &ChunkService{chunker: chunker}
}

// Chunk implements driving.ChunkService.
func (s *ChunkService) Chunk(ctx context.Context, packet *domain.Packet, opts driven.ChunkOptions) (*domain.ChunkSet, error) {
	return s.chunker.Chunk(packet, opts)
}

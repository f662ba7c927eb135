package driving

import (
	"context"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

// ChunkService is the `chunk(packet, {max_tokens, margin_ratio?,
// strategy?})` tool operation.
type ChunkService interface {
	Chunk(ctx context.Context, packet *domain.Packet, opts driven.ChunkOptions) (*domain.ChunkSet, error)
}

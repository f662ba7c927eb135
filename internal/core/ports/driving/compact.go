package driving

import (
	"context"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

// CompactService is the `compact({packet|chunk_set}, {max_tokens, mode?,
// question?, preserve?})` tool operation.
type CompactService interface {
	Compact(ctx context.Context, input driven.CompactInput, opts driven.CompactOptions) (*domain.CompactedPacket, error)
}

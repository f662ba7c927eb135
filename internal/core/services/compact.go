package services

import (
	"context"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driving"
)

var _ driving.CompactService = (*CompactService)(nil)

// CompactService implements the `compact({packet|chunk_set}, opts)` tool
// operation by delegating to the C12 compactor.
type CompactService struct {
	compactor driven.Compactor
}

// NewCompactService builds a CompactService.
func NewCompactService(compactor driven.Compactor) *CompactService {
	return &CompactService{compactor: compactor}
}

// Compact implements driving.CompactService.
func (s *CompactService) Compact(ctx context.Context, input driven.CompactInput, opts driven.CompactOptions) (*domain.CompactedPacket, error) {
	return s.compactor.Compact(input, opts)
}

package driven

import "github.com/custodia-labs/web-fetch-core/internal/core/domain"

// CompactOptions configures the compactor (§4.11).
type CompactOptions struct {
	MaxTokens int
	Mode      domain.CompactMode
	Question  string
	Preserve  []domain.PreserveClass
}

// CompactInput is either a packet or an already-chunked set; exactly one
// must be set.
type CompactInput struct {
	Packet   *domain.Packet
	ChunkSet *domain.ChunkSet
}

// Compactor reduces a packet or chunk set to a target token budget under
// one of the four strategies.
type Compactor interface {
	Compact(input CompactInput, opts CompactOptions) (*domain.CompactedPacket, error)
}

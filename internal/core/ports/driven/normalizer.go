package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

// NormalizeInput is what the normalizer needs from a completed fetch to
// assemble a packet (§4.9).
type NormalizeInput struct {
	FetchResult  domain.FetchResult
	OriginalURL  string
	CanonicalURL string
	RetrievedAt  time.Time
	WantExcerpt  bool
}

// Normalizer orchestrates content-type detection, extraction, injection
// detection, outline generation, key-block splitting, and hashing into a
// Packet (§4.9, C10).
type Normalizer interface {
	Normalize(ctx context.Context, input NormalizeInput) (*domain.Packet, error)
}

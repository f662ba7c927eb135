package driving

import (
	"context"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

// ExtractInput is the `extract` tool operation's request shape: either a
// URL to fetch first, or raw bytes supplied directly.
type ExtractInput struct {
	URL          string
	RawBytes     []byte
	ContentType  string
	CanonicalURL string
}

// ExtractService is the `extract({url?|raw_bytes?, content_type?,
// canonical_url?}, opts)` tool operation.
type ExtractService interface {
	Extract(ctx context.Context, input ExtractInput, opts domain.FetchOptions) (*FetchOutput, error)
}

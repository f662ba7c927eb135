package driven

import (
	"context"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

// HTTPFetcher performs bounded, manually-redirected GETs with decoding and
// truncation semantics (§4.5). It does not itself perform SSRF, robots, or
// rate-limit checks; FetchService composes those around it per hop.
type HTTPFetcher interface {
	// Do issues a single GET (no redirect following) against url.
	Do(ctx context.Context, url string, opts domain.FetchOptions) (*domain.FetchResult, error)
}

// FetchCache memoizes fetch results keyed by (normalized_url, UA,
// sorted-lowercased-headers, max_bytes, max_redirects), returning deep copies.
type FetchCache interface {
	Get(key string) (*domain.FetchResult, bool)
	Set(key string, result *domain.FetchResult)
}

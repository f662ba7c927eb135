package driving

import (
	"context"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

// FetchOutput is the {packet | normalized | raw, screenshot_base64?} shape
// from §6. The fetch and extract services always populate Packet; they do
// not set Raw or ScreenshotBase64.
type FetchOutput struct {
	Packet           *domain.Packet
	Raw              *domain.FetchResult
	ScreenshotBase64 string
}

// FetchService is the `fetch(url, opts)` tool operation.
type FetchService interface {
	Fetch(ctx context.Context, url string, opts domain.FetchOptions) (*FetchOutput, error)
}

package driving

import (
	"context"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

// ResourceView is what GET on a resource URI returns: a JSON payload
// (packet/normalized), markdown (content), or base64-encoded PNG bytes
// (screenshot), tagged with the MIME type the kind implies.
type ResourceView struct {
	MimeType  string
	JSON      any
	Markdown  string
	PNGBase64 string
}

// ResourceService is the resource surface: GET webfetch://{kind}/{source_id}.
type ResourceService interface {
	// Get resolves a resource URI to its view, or domain.ErrResourceNotFound
	// / domain.ErrInvalidResourceURI.
	Get(ctx context.Context, uri string) (*ResourceView, error)

	// List returns stored resources newest-first, ties by source id ascending.
	List(ctx context.Context) ([]domain.ResourceEntry, error)
}

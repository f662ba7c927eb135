package services

import (
	"context"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driving"
	"github.com/custodia-labs/web-fetch-core/internal/resourcestore"
)

var _ driving.ResourceService = (*ResourceService)(nil)

// ResourceService implements the resource surface: GET webfetch://{kind}/
// {source_id} (§4.12, §6).
type ResourceService struct {
	store driven.ResourceStore
}

// NewResourceService builds a ResourceService.
func NewResourceService(store driven.ResourceStore) *ResourceService {
	return &ResourceService{store: store}
}

// Get resolves uri to its view, per the kind's fixed MIME type.
func (s *ResourceService) Get(ctx context.Context, uri string) (*driving.ResourceView, error) {
	kind, sourceID, err := resourcestore.ParseResourceURI(uri)
	if err != nil {
		return nil, domain.ErrInvalidResourceURI
	}

	entry, ok := s.store.Get(sourceID)
	if !ok {
		return nil, domain.ErrResourceNotFound
	}
	packet := entry.Packet

	view := &driving.ResourceView{MimeType: kind.MimeType()}
	switch kind {
	case domain.ResourceKindPacket, domain.ResourceKindNormalized:
		view.JSON = packet
	case domain.ResourceKindContent:
		view.Markdown = packet.Content
	case domain.ResourceKindScreenshot:
		if packet.ScreenshotBase64 == "" {
			return nil, domain.ErrResourceNotFound
		}
		view.PNGBase64 = packet.ScreenshotBase64
	}
	return view, nil
}

// List returns stored resources newest-first, ties by source id ascending.
func (s *ResourceService) List(ctx context.Context) ([]domain.ResourceEntry, error) {
	return s.store.List(), nil
}

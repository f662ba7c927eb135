package services

import (
	"context"
	"time"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driving"
)

var _ driving.ExtractService = (*ExtractService)(nil)

// ExtractServiceConfig holds the collaborators ExtractService needs. Fetch
// is optional: it is only consulted when the caller supplies a URL rather
// than raw bytes.
type ExtractServiceConfig struct {
	Fetch      *FetchService
	Normalizer driven.Normalizer
	Resources  driven.ResourceStore // optional
}

// ExtractService implements driving.ExtractService (§4.9): either fetch a
// URL first (delegating the hop loop to FetchService) or normalize raw
// bytes supplied directly, in both cases through the shared normalizer.
type ExtractService struct {
	fetch      *FetchService
	normalizer driven.Normalizer
	resources  driven.ResourceStore
	now        func() time.Time
}

// NewExtractService builds an ExtractService.
func NewExtractService(cfg ExtractServiceConfig) *ExtractService {
	return &ExtractService{
		fetch:      cfg.Fetch,
		normalizer: cfg.Normalizer,
		resources:  cfg.Resources,
		now:        time.Now,
	}
}

// Extract implements the `extract({url?|raw_bytes?, ...}, opts)` tool
// operation.
func (s *ExtractService) Extract(ctx context.Context, input driving.ExtractInput, opts domain.FetchOptions) (*driving.FetchOutput, error) {
	switch {
	case input.URL != "":
		if s.fetch == nil {
			return nil, domain.NewFetchError(domain.CodeInvalidInput, "extract by url is not configured")
		}
		return s.fetch.Fetch(ctx, input.URL, opts)

	case len(input.RawBytes) > 0:
		return s.extractRawBytes(ctx, input, opts)

	default:
		return nil, domain.NewFetchError(domain.CodeInvalidInput, "extract requires either url or raw_bytes")
	}
}

// extractRawBytes normalizes caller-supplied bytes directly, bypassing the
// SSRF/robots/rate-limit/redirect hop loop entirely since no network
// request is made on the caller's behalf.
func (s *ExtractService) extractRawBytes(ctx context.Context, input driving.ExtractInput, opts domain.FetchOptions) (*driving.FetchOutput, error) {
	result := domain.FetchResult{
		Status:      200,
		Body:        input.RawBytes,
		FinalURL:    input.CanonicalURL,
		ContentType: input.ContentType,
	}

	canonicalURL := input.CanonicalURL
	if s.fetch != nil {
		canonicalURL = s.fetch.urlNorm.Normalize(input.CanonicalURL)
	}

	packet, err := s.normalizer.Normalize(ctx, driven.NormalizeInput{
		FetchResult:  result,
		OriginalURL:  input.CanonicalURL,
		CanonicalURL: canonicalURL,
		RetrievedAt:  s.now().UTC(),
		WantExcerpt:  opts.RawExcerpt,
	})
	if err != nil {
		return nil, err
	}

	if s.resources != nil {
		s.resources.Set(*packet)
	}

	return &driving.FetchOutput{Packet: packet}, nil
}

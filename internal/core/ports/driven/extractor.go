package driven

import "github.com/custodia-labs/web-fetch-core/internal/core/domain"

// Extractor converts decoded body text of one content kind into the common
// ExtractedContent intermediate (§4.6).
type Extractor interface {
	// Kind returns the content kind this extractor handles.
	Kind() domain.ContentKind

	// Extract converts input into the common intermediate form.
	Extract(input domain.ExtractInput) (*domain.ExtractedContent, error)
}

// ExtractorRegistry resolves the extractor for a detected or declared
// content kind, and performs the C10 content-type sniff when the declared
// kind is unknown or text.
type ExtractorRegistry interface {
	// Get returns the extractor registered for kind, or ok=false.
	Get(kind domain.ContentKind) (Extractor, bool)

	// Register adds or replaces the extractor for its own Kind().
	Register(extractor Extractor)

	// Sniff inspects contentType and the first bytes of body to resolve a
	// ContentKind per §4.6's MIME-mapping and byte-sniffing rules.
	Sniff(contentType string, body []byte) domain.ContentKind
}

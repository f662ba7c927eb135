// Package domain holds the core data model for the fetch/extract/chunk/compact
// pipeline: content packets, chunks, compacted packets, and the resource store
// entries derived from them.
package domain

import "time"

// WarningType enumerates the non-fatal conditions surfaced on a Packet.
type WarningType string

const (
	WarningTruncated          WarningType = "truncated"
	WarningPaywalled          WarningType = "paywalled"
	WarningLowConfidenceDate  WarningType = "low_confidence_date"
	WarningScannedPDF         WarningType = "scanned_pdf"
	WarningRenderTimeout      WarningType = "render_timeout"
	WarningExtractionFallback WarningType = "extraction_fallback"
	WarningRateLimited        WarningType = "rate_limited"
	WarningRobotsBlocked      WarningType = "robots_blocked"
	WarningInjectionDetected  WarningType = "injection_detected"
)

// KeyBlockKind enumerates the semantic types a key block can carry.
type KeyBlockKind string

const (
	KindHeading   KeyBlockKind = "heading"
	KindParagraph KeyBlockKind = "paragraph"
	KindList      KeyBlockKind = "list"
	KindCode      KeyBlockKind = "code"
	KindTable     KeyBlockKind = "table"
	KindQuote     KeyBlockKind = "quote"
	KindMeta      KeyBlockKind = "meta"
)

// OutlineEntry is one heading in the document's outline tree.
type OutlineEntry struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Path  string `json:"path"`
}

// KeyBlock is a semantically typed, contiguous range of normalized markdown.
type KeyBlock struct {
	BlockID string       `json:"block_id"`
	Kind    KeyBlockKind `json:"kind"`
	Text    string       `json:"text"`
	CharLen int          `json:"char_len"`
}

// Loc is a half-open character range into a packet's content.
type Loc struct {
	StartChar int `json:"start_char"`
	EndChar   int `json:"end_char"`
}

// Citation points a chunk-derived fact back at its source key block.
type Citation struct {
	BlockID string `json:"block_id"`
	Loc     Loc    `json:"loc"`
}

// UnsafeInstruction is one prompt-injection detection hit.
type UnsafeInstruction struct {
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Warning is a non-fatal condition surfaced alongside a packet.
type Warning struct {
	Type    WarningType `json:"type"`
	Message string      `json:"message"`
}

// Hashes carries the content and raw-byte fingerprints of a packet.
type Hashes struct {
	ContentHash string `json:"content_hash"`
	RawHash     string `json:"raw_hash"`
}

// Metadata is the optional descriptive fields extracted for a packet.
type Metadata struct {
	Title                   string     `json:"title,omitempty"`
	SiteName                string     `json:"site_name,omitempty"`
	Author                  string     `json:"author,omitempty"`
	PublishedAt             *time.Time `json:"published_at,omitempty"`
	Language                string     `json:"language,omitempty"`
	EstimatedReadingTimeMin int        `json:"estimated_reading_time_min,omitempty"`
}

// Packet is the canonical, immutable output of normalization.
type Packet struct {
	SourceID           string              `json:"source_id"`
	OriginalURL        string              `json:"original_url"`
	CanonicalURL       string              `json:"canonical_url"`
	RetrievedAt        time.Time           `json:"retrieved_at"`
	Status             int                 `json:"status"`
	ContentType        string              `json:"content_type"`
	Metadata           Metadata            `json:"metadata"`
	Outline            []OutlineEntry      `json:"outline"`
	KeyBlocks          []KeyBlock          `json:"key_blocks"`
	Content            string              `json:"content"`
	SourceSummary      []string            `json:"source_summary"`
	Citations          []Citation          `json:"citations"`
	UnsafeInstructions []UnsafeInstruction `json:"unsafe_instructions_detected"`
	Warnings           []Warning           `json:"warnings"`
	Hashes             Hashes              `json:"hashes"`
	RawExcerpt         string              `json:"raw_excerpt,omitempty"`
	ScreenshotBase64   string              `json:"screenshot_base64,omitempty"`
}

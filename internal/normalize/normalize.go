// Package normalize implements the C10 normalizer: it orchestrates content
// sniffing, charset decoding, extraction, injection detection, outline
// generation, key-block splitting, summarizing, and hashing into a Packet
// (§4.9).
package normalize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
	"github.com/custodia-labs/web-fetch-core/internal/extractors"
)

var _ driven.Normalizer = (*Normalizer)(nil)

const (
	rawExcerptMaxBytes = 1000
	sourceIDHexLen     = 16
	summaryWindowBytes = 2048
	maxTopics          = 5
	maxNumericTokens   = 5
	maxDateMentions    = 3
)

var (
	numericRe   = regexp.MustCompile(`\b\d[\d,.]*\b`)
	monthDateRe = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(st|nd|rd|th)?,?\s+\d{4}\b`)
	slashDateRe = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
	isoDateRe   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
)

// Normalizer implements driven.Normalizer.
type Normalizer struct {
	registry  driven.ExtractorRegistry
	injection driven.InjectionDetector
	outline   driven.OutlineGenerator
}

// New constructs a Normalizer from its collaborating ports.
func New(registry driven.ExtractorRegistry, injector driven.InjectionDetector, outliner driven.OutlineGenerator) *Normalizer {
	return &Normalizer{registry: registry, injection: injector, outline: outliner}
}

// Normalize implements driven.Normalizer (§4.9, steps 1-10).
func (n *Normalizer) Normalize(ctx context.Context, input driven.NormalizeInput) (*domain.Packet, error) {
	fr := input.FetchResult
	var warnings []domain.Warning

	kind := n.registry.Sniff(fr.ContentType, fr.Body)

	text, ok := extractors.DecodeCharset(fr.Body, charsetFromContentType(fr.ContentType))
	if !ok {
		warnings = append(warnings, domain.Warning{
			Type:    domain.WarningExtractionFallback,
			Message: "unsupported charset; body decoded as UTF-8 best-effort",
		})
	}

	extractor, ok := n.registry.Get(kind)
	if !ok {
		return nil, domain.NewFetchError(domain.CodeExtractionFailed, fmt.Sprintf("no extractor registered for content kind %q", kind))
	}

	extracted, err := extractor.Extract(domain.ExtractInput{
		Text:         text,
		ContentType:  fr.ContentType,
		CanonicalURL: input.CanonicalURL,
	})
	if err != nil {
		return nil, domain.NewFetchError(domain.CodeExtractionFailed, err.Error())
	}
	warnings = append(warnings, extracted.Warnings...)

	md := extracted.Markdown
	if md == "" {
		md = extracted.Content
	}

	unsafe := n.injection.Detect(md)
	if len(unsafe) > 0 {
		warnings = append(warnings, domain.Warning{
			Type:    domain.WarningInjectionDetected,
			Message: fmt.Sprintf("%d potential prompt-injection pattern(s) detected", len(unsafe)),
		})
	}

	outlineEntries := n.outline.Generate(md)
	keyBlocks := splitKeyBlocks(md)
	summary := sourceSummary(md, outlineEntries)

	contentHash := sha256Hex([]byte(md))
	rawHash := sha256Hex(fr.Body)

	sourceID := computeSourceID(input.CanonicalURL, input.RetrievedAt, contentHash)

	var rawExcerpt string
	if input.WantExcerpt {
		rawExcerpt = excerptBytes(fr.Body, rawExcerptMaxBytes)
	}

	packet := &domain.Packet{
		SourceID:     sourceID,
		OriginalURL:  input.OriginalURL,
		CanonicalURL: input.CanonicalURL,
		RetrievedAt:  input.RetrievedAt,
		Status:       fr.Status,
		ContentType:  fr.ContentType,
		Metadata: domain.Metadata{
			Title:                   extracted.Title,
			SiteName:                extracted.SiteName,
			Author:                  extracted.Byline,
			PublishedAt:             extracted.PublishedTime,
			Language:                extracted.Lang,
			EstimatedReadingTimeMin: estimateReadingTimeMin(md),
		},
		Outline:            outlineEntries,
		KeyBlocks:          keyBlocks,
		Content:            md,
		SourceSummary:      summary,
		UnsafeInstructions: unsafe,
		Warnings:           warnings,
		Hashes:             domain.Hashes{ContentHash: contentHash, RawHash: rawHash},
		RawExcerpt:         rawExcerpt,
	}
	return packet, nil
}

func charsetFromContentType(contentType string) string {
	idx := strings.Index(strings.ToLower(contentType), "charset=")
	if idx < 0 {
		return ""
	}
	v := contentType[idx+len("charset="):]
	if semi := strings.IndexByte(v, ';'); semi >= 0 {
		v = v[:semi]
	}
	return strings.Trim(strings.TrimSpace(v), `"'`)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// computeSourceID implements §4.9 step 9: first 16 hex chars of
// SHA-256(canonical_url + "|" + YYYY-MM-DD(retrieved_at) + "|" + content_hash).
func computeSourceID(canonicalURL string, retrievedAt time.Time, contentHash string) string {
	date := retrievedAt.Format("2006-01-02")
	full := sha256Hex([]byte(canonicalURL + "|" + date + "|" + contentHash))
	return full[:sourceIDHexLen]
}

func excerptBytes(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max])
}

// estimateReadingTimeMin uses a 200-words-per-minute heuristic, rounded up.
func estimateReadingTimeMin(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// sourceSummary implements §4.9 step 7: up to five H1/H2 topics, up to five
// distinct numeric tokens found in the first 2KB, up to three date
// mentions, plus a trailing word-count entry.
func sourceSummary(md string, outline []domain.OutlineEntry) []string {
	var summary []string

	topics := topLevelTopics(outline)
	summary = append(summary, topics...)

	window := md
	if len(window) > summaryWindowBytes {
		window = window[:summaryWindowBytes]
	}

	numbers := dedupeOrdered(numericRe.FindAllString(window, -1))
	if len(numbers) > maxNumericTokens {
		numbers = numbers[:maxNumericTokens]
	}
	summary = append(summary, numbers...)

	dates := dedupeOrdered(append(append(
		monthDateRe.FindAllString(md, -1),
		slashDateRe.FindAllString(md, -1)...),
		isoDateRe.FindAllString(md, -1)...))
	if len(dates) > maxDateMentions {
		dates = dates[:maxDateMentions]
	}
	summary = append(summary, dates...)

	summary = append(summary, "word_count:"+strconv.Itoa(len(strings.Fields(md))))
	return summary
}

func topLevelTopics(outline []domain.OutlineEntry) []string {
	var topics []string
	for _, e := range outline {
		if e.Level <= 2 {
			topics = append(topics, e.Text)
		}
		if len(topics) >= maxTopics {
			break
		}
	}
	return topics
}

func dedupeOrdered(items []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

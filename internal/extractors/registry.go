// Package extractors converts decoded body text of each detected content
// kind into the common ExtractedContent intermediate (§4.6, C7).
package extractors

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry resolves the extractor for a content kind and performs the C10
// content-type sniff.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.ContentKind]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[domain.ContentKind]driven.Extractor)}
}

// NewDefaultRegistry builds a Registry with all standard extractors registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewHTMLExtractor())
	r.Register(NewMarkdownExtractor())
	r.Register(NewPDFExtractor())
	r.Register(NewJSONExtractor())
	r.Register(NewXMLExtractor())
	r.Register(NewTextExtractor())
	return r
}

// Register adds or replaces the extractor for its own Kind().
func (r *Registry) Register(e driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[e.Kind()] = e
}

// Get returns the extractor registered for kind.
func (r *Registry) Get(kind domain.ContentKind) (driven.Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.extractors[kind]
	return e, ok
}

// mimeKind maps a MIME type/subtype to a content kind (§4.6). Parameters
// after ';' (such as charset) are ignored.
func mimeKind(mimeType string) domain.ContentKind {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case mimeType == "text/html" || mimeType == "application/xhtml+xml":
		return domain.KindHTML
	case mimeType == "text/markdown" || mimeType == "text/x-markdown":
		return domain.KindMarkdown
	case mimeType == "application/pdf":
		return domain.KindPDF
	case mimeType == "application/json" || strings.HasSuffix(mimeType, "+json"):
		return domain.KindJSON
	case mimeType == "application/xml" || mimeType == "text/xml" ||
		mimeType == "application/rss+xml" || mimeType == "application/atom+xml" ||
		strings.HasSuffix(mimeType, "+xml"):
		return domain.KindXML
	case mimeType == "text/plain":
		return domain.KindText
	default:
		return domain.KindUnknown
	}
}

// Sniff resolves a ContentKind from the declared Content-Type plus, when
// that declaration is unknown/text, the first 1KB of body.
func (r *Registry) Sniff(contentType string, body []byte) domain.ContentKind {
	kind := mimeKind(contentType)
	if kind != domain.KindUnknown && kind != domain.KindText {
		return kind
	}

	window := body
	if len(window) > 1024 {
		window = window[:1024]
	}
	sample := strings.TrimSpace(string(window))
	lowerSample := strings.ToLower(sample)

	switch {
	case strings.HasPrefix(sample, "%PDF-"):
		return domain.KindPDF
	case strings.Contains(lowerSample, "<!doctype"), strings.Contains(lowerSample, "<html"),
		strings.Contains(lowerSample, "<head"), strings.Contains(lowerSample, "<body"):
		return domain.KindHTML
	case strings.Contains(lowerSample, "<?xml"), strings.Contains(lowerSample, "<rss"),
		strings.Contains(lowerSample, "<feed"), strings.Contains(lowerSample, "<atom"):
		return domain.KindXML
	case looksLikeJSON(sample):
		return domain.KindJSON
	case looksLikeMarkdown(sample):
		return domain.KindMarkdown
	default:
		return kind // unknown stays unknown, text stays text
	}
}

func looksLikeJSON(sample string) bool {
	if sample == "" || (sample[0] != '{' && sample[0] != '[') {
		return false
	}
	var v any
	return json.Unmarshal([]byte(sample), &v) == nil
}

func looksLikeMarkdown(sample string) bool {
	if strings.HasPrefix(sample, "---\n") {
		return true
	}
	for _, line := range strings.Split(sample, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return true
		}
		if bytes.Contains([]byte(trimmed), []byte("](")) && strings.HasPrefix(trimmed, "[") {
			return true
		}
	}
	return false
}

package extractors

import (
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

var _ driven.Extractor = (*HTMLExtractor)(nil)

// paywallSelectorNeedles matches against id/class attributes across the
// whole document (including regions sanitize already removed from the
// candidate subtree) to flag likely paywalled articles.
var paywallSelectorNeedles = []string{
	"paywall", "subscriber-only", "subscription-required", "metered-content",
}

var paywallPhrases = []string{
	"subscribe to continue reading",
	"this content is for subscribers",
	"to continue reading this article",
	"create a free account to continue",
	"you have reached your article limit",
}

// HTMLExtractor implements driven.Extractor for text/html and
// application/xhtml+xml bodies: sanitize, pick main content via a
// readability-style heuristic with a selector-based fallback, then render
// Markdown.
type HTMLExtractor struct{}

// NewHTMLExtractor constructs an HTMLExtractor.
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Kind implements driven.Extractor.
func (e *HTMLExtractor) Kind() domain.ContentKind {
	return domain.KindHTML
}

// Extract implements driven.Extractor.
func (e *HTMLExtractor) Extract(input domain.ExtractInput) (*domain.ExtractedContent, error) {
	doc, err := html.Parse(strings.NewReader(input.Text))
	if err != nil {
		return nil, err
	}

	title := findFirst(doc, atom.Title)
	var titleText string
	if title != nil {
		titleText = strings.TrimSpace(textContent(title))
	}
	if titleText == "" {
		if h1 := findFirst(doc, atom.H1); h1 != nil {
			titleText = strings.TrimSpace(textContent(h1))
		}
	}

	byline, siteName, lang, published := extractMeta(doc)
	paywalled := detectPaywall(doc)

	Sanitize(doc)

	body := findFirst(doc, atom.Body)
	if body == nil {
		body = doc
	}

	readabilityNode := findReadabilityCandidate(body)
	if scoreCandidate(readabilityNode) <= 0 {
		readabilityNode = nil
	}
	fallbackNode := findFallbackCandidate(doc)
	content := chooseContent(readabilityNode, fallbackNode)

	md := renderMarkdown(content)
	text := collapseSpaces(textContent(content))

	var warnings []domain.Warning
	if paywalled {
		warnings = append(warnings, domain.Warning{
			Type:    domain.WarningPaywalled,
			Message: "page appears to gate full content behind a subscription wall",
		})
	}

	excerpt := text
	if len(excerpt) > 280 {
		excerpt = strings.TrimSpace(excerpt[:280]) + "..."
	}

	return &domain.ExtractedContent{
		Title:         titleText,
		Content:       md,
		TextContent:   text,
		Excerpt:       excerpt,
		Byline:        byline,
		SiteName:      siteName,
		Lang:          lang,
		PublishedTime: published,
		Markdown:      md,
		Warnings:      warnings,
	}, nil
}

func detectPaywall(doc *html.Node) bool {
	lowerAll := strings.ToLower(textContent(doc))
	for _, phrase := range paywallPhrases {
		if strings.Contains(lowerAll, phrase) {
			return true
		}
	}
	found := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found || n.Type != html.ElementNode {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if found {
					return
				}
				walk(c)
			}
			return
		}
		idClass := strings.ToLower(attr(n, "id") + " " + attr(n, "class"))
		for _, needle := range paywallSelectorNeedles {
			if strings.Contains(idClass, needle) {
				found = true
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found {
				return
			}
			walk(c)
		}
	}
	walk(doc)
	return found
}

// extractMeta pulls byline, site name, language, and published time from
// <meta> tags and the <html lang> attribute before sanitize removes <head>.
func extractMeta(doc *html.Node) (byline, siteName, lang string, published *time.Time) {
	if htmlNode := findFirst(doc, atom.Html); htmlNode != nil {
		lang = attr(htmlNode, "lang")
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			name := strings.ToLower(attr(n, "name"))
			property := strings.ToLower(attr(n, "property"))
			content := attr(n, "content")

			switch {
			case name == "author":
				byline = content
			case property == "og:site_name":
				siteName = content
			case property == "article:published_time", name == "article:published_time":
				if t, err := parseMetaTime(content); err == nil {
					published = &t
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return byline, siteName, lang, published
}

// parseMetaTime accepts the handful of timestamp formats real article:published_time
// meta tags use.
func parseMetaTime(s string) (time.Time, error) {
	formats := []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}
	var err error
	for _, f := range formats {
		var t time.Time
		if t, err = time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

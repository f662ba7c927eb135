package extractors

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

var _ driven.Extractor = (*MarkdownExtractor)(nil)

var frontmatterRe = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---\r?\n?`)

var firstHeadingRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// MarkdownExtractor implements driven.Extractor for text/markdown bodies:
// YAML frontmatter extraction, embedded raw-HTML sanitization, and fence
// normalization.
type MarkdownExtractor struct{}

// NewMarkdownExtractor constructs a MarkdownExtractor.
func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{}
}

// Kind implements driven.Extractor.
func (e *MarkdownExtractor) Kind() domain.ContentKind {
	return domain.KindMarkdown
}

// Extract implements driven.Extractor.
func (e *MarkdownExtractor) Extract(input domain.ExtractInput) (*domain.ExtractedContent, error) {
	body := input.Text
	var warnings []domain.Warning

	frontmatter, rest := splitFrontmatter(body)
	title, _ := frontmatter["title"].(string)

	rest = normalizeFences(rest)
	rest = stripEmbeddedHTML(rest)

	if title == "" {
		if m := firstHeadingRe.FindStringSubmatch(rest); m != nil {
			title = strings.TrimSpace(m[1])
		}
	}

	text := strings.TrimSpace(stripMarkdownSyntax(rest))
	excerpt := text
	if len(excerpt) > 280 {
		excerpt = strings.TrimSpace(excerpt[:280]) + "..."
	}

	return &domain.ExtractedContent{
		Title:       title,
		Content:     strings.TrimSpace(rest),
		TextContent: text,
		Excerpt:     excerpt,
		Markdown:    strings.TrimSpace(rest),
		Warnings:    warnings,
	}, nil
}

// splitFrontmatter extracts and parses a leading --- YAML block, if present.
func splitFrontmatter(body string) (map[string]any, string) {
	m := frontmatterRe.FindStringSubmatchIndex(body)
	if m == nil {
		return nil, body
	}
	raw := body[m[2]:m[3]]
	rest := body[m[1]:]

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return nil, body
	}
	return fm, rest
}

// normalizeFences rewrites legacy ~~~ fences to the canonical ``` form.
func normalizeFences(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		indent := line[:len(line)-len(trimmed)]
		if strings.HasPrefix(trimmed, "~~~") {
			lines[i] = indent + "```" + strings.TrimPrefix(trimmed, "~~~")
		}
	}
	return strings.Join(lines, "\n")
}

// stripEmbeddedHTML removes script/style/iframe blocks and inline event
// handlers from raw HTML embedded in markdown, by round-tripping the whole
// document through the HTML sanitizer.
func stripEmbeddedHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}
	Sanitize(doc)
	// Only rewrite if the document contains a denylisted tag or text that
	// looks like an on* event-handler attribute; otherwise return the original markdown
	// untouched to avoid html.Parse reformatting plain prose.
	if !containsRawTags(s) {
		return s
	}
	var b strings.Builder
	_ = html.Render(&b, doc)
	return b.String()
}

func containsRawTags(s string) bool {
	lower := strings.ToLower(s)
	for tag := range denyListTags {
		if strings.Contains(lower, "<"+tag) {
			return true
		}
	}
	return strings.Contains(lower, " on") && strings.Contains(lower, "=")
}

// stripMarkdownSyntax gives a rough plain-text rendering for excerpting:
// drop heading markers, emphasis markers, and link/image syntax noise.
func stripMarkdownSyntax(s string) string {
	replacer := strings.NewReplacer("#", "", "*", "", "_", "", "`", "")
	return collapseSpaces(replacer.Replace(s))
}

package extractors

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

var _ driven.Extractor = (*TextExtractor)(nil)

var (
	bulletLineRe   = regexp.MustCompile(`^\s*[-*+]\s+\S`)
	numberedLineRe = regexp.MustCompile(`^\s*\d+[.)]\s+\S`)
	underlineRe    = regexp.MustCompile(`^(=+|-+)\s*$`)
	codeLikeLineRe = regexp.MustCompile(`[{}();=<>]|^\s*(func|def|class|var|const|import|public|private)\b`)
)

// TextExtractor implements driven.Extractor for text/plain bodies: it
// infers structure (headings, lists, code blocks) heuristically and
// renders Markdown that preserves it.
type TextExtractor struct{}

// NewTextExtractor constructs a TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Kind implements driven.Extractor.
func (e *TextExtractor) Kind() domain.ContentKind {
	return domain.KindText
}

// Extract implements driven.Extractor.
func (e *TextExtractor) Extract(input domain.ExtractInput) (*domain.ExtractedContent, error) {
	lines := strings.Split(input.Text, "\n")
	md := renderPlainTextAsMarkdown(lines)

	title := ""
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			title = strings.TrimSpace(line)
			break
		}
	}

	text := strings.TrimSpace(input.Text)
	excerpt := text
	if len(excerpt) > 280 {
		excerpt = strings.TrimSpace(excerpt[:280]) + "..."
	}

	return &domain.ExtractedContent{
		Title:       title,
		Content:     md,
		TextContent: text,
		Excerpt:     excerpt,
		Markdown:    md,
	}, nil
}

// renderPlainTextAsMarkdown promotes ALL-CAPS lines and ===/--- underlined
// lines to headings, recognizes existing bullet/numbered lists, and fences
// runs of tab- or four-space-indented lines. Unindented code-like lines are
// not fenced.
func renderPlainTextAsMarkdown(lines []string) string {
	var out []string
	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if i+1 < len(lines) && underlineRe.MatchString(lines[i+1]) && trimmed != "" {
			level := "##"
			if strings.HasPrefix(strings.TrimSpace(lines[i+1]), "=") {
				level = "#"
			}
			out = append(out, level+" "+trimmed, "")
			i += 2
			continue
		}

		if isAllCapsHeading(trimmed) {
			out = append(out, "## "+trimmed, "")
			i++
			continue
		}

		if isIndentedCodeLine(line) {
			var block []string
			for i < len(lines) && (isIndentedCodeLine(lines[i]) || strings.TrimSpace(lines[i]) == "") {
				block = append(block, strings.TrimPrefix(strings.TrimPrefix(lines[i], "\t"), "    "))
				i++
			}
			out = append(out, "```")
			out = append(out, block...)
			out = append(out, "```", "")
			continue
		}

		if bulletLineRe.MatchString(line) || numberedLineRe.MatchString(line) {
			out = append(out, line)
			i++
			continue
		}

		out = append(out, line)
		i++
	}
	return collapseBlankLines(strings.Join(out, "\n"))
}

func isAllCapsHeading(s string) bool {
	if s == "" || len(s) > 80 {
		return false
	}
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

func isIndentedCodeLine(line string) bool {
	if strings.HasPrefix(line, "\t") {
		return true
	}
	if strings.HasPrefix(line, "    ") {
		return true
	}
	return false
}

// looksLikeCode is a loose heuristic for whether a block of otherwise
// unstructured text reads as code. renderPlainTextAsMarkdown does not call
// it.
func looksLikeCode(s string) bool {
	lines := strings.Split(s, "\n")
	if len(lines) == 0 {
		return false
	}
	hits := 0
	for _, l := range lines {
		if codeLikeLineRe.MatchString(l) {
			hits++
		}
	}
	return float64(hits)/float64(len(lines)) > 0.4
}

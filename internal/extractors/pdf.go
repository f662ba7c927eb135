package extractors

import (
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

var _ driven.Extractor = (*PDFExtractor)(nil)

var (
	pdfPageRe       = regexp.MustCompile(`/Type\s*/Page[^s]`)
	pdfTextBlockRe  = regexp.MustCompile(`(?s)BT(.*?)ET`)
	pdfShowStringRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*Tj`)
	pdfShowArrayRe  = regexp.MustCompile(`(?s)\[((?:[^\[\]]|\\.)*)\]\s*TJ`)
	pdfArrayLitRe   = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)
	pdfCreationRe   = regexp.MustCompile(`/CreationDate\s*\(\s*D:([0-9]{4,14})([^)]*)\)`)
)

// PDFExtractor implements driven.Extractor for application/pdf bodies.
//
// There is no PDF parsing library in the example corpus to ground this on,
// so extraction is a minimal, stdlib-only reader of the literal text-showing
// operators (Tj/TJ) inside BT/ET blocks, good enough to recover embedded
// text from simple, non-encrypted, non-CID-font PDFs. This is the one
// extractor without a direct third-party grounding; see DESIGN.md.
type PDFExtractor struct{}

// NewPDFExtractor constructs a PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Kind implements driven.Extractor.
func (e *PDFExtractor) Kind() domain.ContentKind {
	return domain.KindPDF
}

// Extract implements driven.Extractor.
func (e *PDFExtractor) Extract(input domain.ExtractInput) (*domain.ExtractedContent, error) {
	raw := []byte(input.Text)

	pageCount := len(pdfPageRe.FindAll(raw, -1))
	if pageCount == 0 {
		pageCount = 1
	}

	pages := extractPageTexts(raw, pageCount)
	fullText := strings.TrimSpace(strings.Join(pages, "\n\n"))

	var warnings []domain.Warning
	if looksScanned(pages) {
		warnings = append(warnings, domain.Warning{
			Type:    domain.WarningScannedPDF,
			Message: "little or no embedded text found; document may be a scanned image",
		})
	}

	var published *time.Time
	if m := pdfCreationRe.FindSubmatch(raw); m != nil {
		t, ok := parsePDFDigits(string(m[1]))
		lowConfidence := strings.TrimSpace(string(m[2])) != ""
		if ok {
			published = &t
			if lowConfidence {
				warnings = append(warnings, domain.Warning{
					Type:    domain.WarningLowConfidenceDate,
					Message: "PDF creation date carried a timezone offset that was discarded",
				})
			}
		}
	}

	title := firstNonEmptyLine(fullText)
	excerpt := fullText
	if len(excerpt) > 280 {
		excerpt = strings.TrimSpace(excerpt[:280]) + "..."
	}

	return &domain.ExtractedContent{
		Title:         title,
		Content:       fullText,
		TextContent:   fullText,
		Excerpt:       excerpt,
		PublishedTime: published,
		Markdown:      fullText,
		Warnings:      warnings,
	}, nil
}

// extractPageTexts splits the raw PDF body at page boundaries by "/Type /Page"
// markers and recovers the literal-string text operators within each segment.
// It is a rough approximation: real PDF page boundaries require following
// the object/xref graph, which this minimal reader does not do.
func extractPageTexts(raw []byte, pageCount int) []string {
	if pageCount <= 1 {
		return []string{extractTextFromSegment(raw)}
	}
	segLen := len(raw) / pageCount
	var pages []string
	for i := 0; i < pageCount; i++ {
		start := i * segLen
		end := start + segLen
		if i == pageCount-1 {
			end = len(raw)
		}
		if start >= len(raw) {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, extractTextFromSegment(raw[start:end]))
	}
	return pages
}

func extractTextFromSegment(seg []byte) string {
	var out strings.Builder
	for _, block := range pdfTextBlockRe.FindAllSubmatch(seg, -1) {
		body := block[1]
		for _, m := range pdfShowStringRe.FindAllSubmatch(body, -1) {
			out.WriteString(unescapePDFString(m[1]))
			out.WriteString(" ")
		}
		for _, m := range pdfShowArrayRe.FindAllSubmatch(body, -1) {
			for _, lit := range pdfArrayLitRe.FindAllSubmatch(m[1], -1) {
				out.WriteString(unescapePDFString(lit[1]))
			}
			out.WriteString(" ")
		}
		out.WriteString("\n")
	}
	return strings.TrimSpace(out.String())
}

func unescapePDFString(b []byte) string {
	s := string(b)
	replacer := strings.NewReplacer(`\(`, "(", `\)`, ")", `\\`, `\`, `\n`, "\n", `\r`, "\r", `\t`, "\t")
	return replacer.Replace(s)
}

// looksScanned flags a document whose embedded text is sparse relative to
// its page count, the usual signature of an image-only scan.
func looksScanned(pages []string) bool {
	if len(pages) == 0 {
		return true
	}
	empty := 0
	totalChars := 0
	for _, p := range pages {
		totalChars += len(strings.TrimSpace(p))
		if strings.TrimSpace(p) == "" {
			empty++
		}
	}
	emptyRatio := float64(empty) / float64(len(pages))
	avgChars := float64(totalChars) / float64(len(pages))
	return emptyRatio > 0.5 || avgChars < 40
}

// parsePDFDigits parses the "YYYYMMDDHHmmss" digit run of a PDF
// "D:YYYYMMDDHHmmss[+-]HH'mm'" date string. Any timezone suffix is matched
// separately by the caller and discarded rather than applied (spec Open
// Question decision), surfaced as a low-confidence warning instead.
func parsePDFDigits(digits string) (t time.Time, ok bool) {
	for len(digits) < 14 {
		digits += "0"
	}
	digits = digits[:14]

	parsed, err := time.Parse("20060102150405", digits)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func firstNonEmptyLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

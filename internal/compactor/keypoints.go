package compactor

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

const (
	maxKeyPoints = 10
	maxQuotes    = 5
)

func normalizeForDedupe(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func citationFor(text string, keyBlocks []domain.KeyBlock) string {
	normText := normalizeForDedupe(text)
	for _, b := range keyBlocks {
		if strings.Contains(b.Text, text) || strings.Contains(normalizeForDedupe(b.Text), normText) {
			return b.BlockID
		}
	}
	return ""
}

// extractKeyPoints implements §4.11's key-point extraction: up to 10
// distinct sentences from the summary scoring >= 2.
func extractKeyPoints(summary string, preserve []domain.PreserveClass, keyBlocks []domain.KeyBlock) []domain.KeyPoint {
	sentences := splitSentences(summary)
	seen := make(map[string]bool)
	var points []domain.KeyPoint
	for _, s := range sentences {
		if len(points) >= maxKeyPoints {
			break
		}
		if scoreSentenceSalience(s, preserve) < 2 {
			continue
		}
		key := normalizeForDedupe(s.Text)
		if seen[key] {
			continue
		}
		seen[key] = true
		points = append(points, domain.KeyPoint{Text: s.Text, Citation: citationFor(s.Text, keyBlocks)})
	}
	return points
}

var quoteSpanRe = regexp.MustCompile(`"([^"]{20,200})"`)

var codeFenceRe = regexp.MustCompile("(?s)```.*?```")
var inlineCodeRe = regexp.MustCompile("`[^`]*`")
var urlRe = regexp.MustCompile(`https?://\S+`)

func looksLikeNaturalLanguage(s string) bool {
	words := strings.Fields(s)
	if len(words) < 4 {
		return false
	}
	letters, symbols := 0, 0
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsSpace(r):
			// not counted either way
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbols++
		}
	}
	if letters < 10 {
		return false
	}
	total := letters + symbols
	if total == 0 {
		return false
	}
	if float64(symbols)/float64(total) >= 0.20 {
		return false
	}
	if strings.Contains(s, `\n`) || strings.Contains(s, `\t`) {
		return false
	}
	if urlRe.MatchString(s) {
		return false
	}
	return true
}

func looksLikeJSONLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	first := trimmed[0]
	last := trimmed[len(trimmed)-1]
	return (first == '{' || first == '[') && (last == '}' || last == ']' || last == ',')
}

// extractQuotes implements §4.11's important-quote extraction: up to 5
// natural-language quoted spans pulled from the original content (not the
// summary), citing back to the first key block that contains them.
func extractQuotes(content string, keyBlocks []domain.KeyBlock) []domain.Quote {
	var sources []string
	if len(keyBlocks) == 0 {
		sources = []string{content}
	} else {
		for _, b := range keyBlocks {
			if b.Kind == domain.KindCode || b.Kind == domain.KindTable || b.Kind == domain.KindMeta {
				continue
			}
			sources = append(sources, b.Text)
		}
	}

	var quotes []domain.Quote
	seen := make(map[string]bool)
	for _, src := range sources {
		cleaned := codeFenceRe.ReplaceAllString(src, "")
		cleaned = inlineCodeRe.ReplaceAllString(cleaned, "")

		for _, line := range strings.Split(cleaned, "\n") {
			if looksLikeJSONLine(line) {
				continue
			}
			for _, m := range quoteSpanRe.FindAllStringSubmatch(line, -1) {
				if len(quotes) >= maxQuotes {
					return quotes
				}
				candidate := m[1]
				if !looksLikeNaturalLanguage(candidate) {
					continue
				}
				key := normalizeForDedupe(candidate)
				if seen[key] {
					continue
				}
				seen[key] = true
				quotes = append(quotes, domain.Quote{Text: candidate, Citation: citationFor(candidate, keyBlocks)})
			}
		}
	}
	return quotes
}

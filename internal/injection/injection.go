// Package injection implements the fixed prompt-injection detection
// catalogue (§4.7, C8): a closed set of case-insensitive regular
// expressions, each tagged with a reason, run over normalized Markdown.
package injection

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

const contextWindow = 50

type pattern struct {
	re     *regexp.Regexp
	reason string
}

// catalogue is the fixed, closed set of detection patterns. It is never
// user-configurable: the spec treats detection as a static taxonomy.
var catalogue = []pattern{
	{regexp.MustCompile(`(?i)ignore\s+(all\s+)?(the\s+)?previous\s+instructions`), "instruction override"},
	{regexp.MustCompile(`(?i)forget\s+(everything|all)\s+you\s+(know|were\s+told)`), "instruction override"},
	{regexp.MustCompile(`(?i)disregard\s+(all\s+)?(prior|previous|above)\s+instructions`), "instruction override"},

	{regexp.MustCompile(`(?i)you\s+are\s+now\s+an?\b`), "role reassignment"},
	{regexp.MustCompile(`(?i)act\s+as\s+an?\b`), "role reassignment"},
	{regexp.MustCompile(`(?i)pretend\s+(to\s+be|you\s+are)\b`), "role reassignment"},

	{regexp.MustCompile(`(?i)enter\s+\w+\s+mode\b`), "mode switching"},
	{regexp.MustCompile(`(?i)enable\s+(developer|admin|root|sudo)\s+mode\b`), "mode switching"},

	{regexp.MustCompile(`(?i)show\s+me\s+your\s+system\s+prompt`), "system-prompt extraction"},
	{regexp.MustCompile(`(?i)repeat\s+your\s+(initial\s+)?instructions`), "system-prompt extraction"},
	{regexp.MustCompile(`(?i)reveal\s+your\s+(system\s+)?prompt`), "system-prompt extraction"},

	{regexp.MustCompile(`(?i)\bDAN\s+mode\b`), "known jailbreak"},
	{regexp.MustCompile(`(?i)\bdo\s+anything\s+now\b`), "known jailbreak"},
	{regexp.MustCompile(`(?i)\bjailbreak\b`), "known jailbreak"},

	{regexp.MustCompile(`(?i)bypass\s+(safety|restrictions|filters)\b`), "safety bypass"},

	{regexp.MustCompile(`\[SYSTEM\]`), "fake delimiter"},
	{regexp.MustCompile(`(?i)<\|system\|>`), "fake delimiter"},
	{regexp.MustCompile(`###\s*System\s*###`), "fake delimiter"},
	{regexp.MustCompile(`(?m)^(Human|Assistant|System):\s`), "fake delimiter"},

	{regexp.MustCompile(`<tool_call>`), "tool-call injection"},
	{regexp.MustCompile(`\{"function":\s*"`), "tool-call injection"},

	{regexp.MustCompile(`(?i)<thinking>`), "structured-output tag injection"},
	{regexp.MustCompile(`(?i)<answer>`), "structured-output tag injection"},

	{regexp.MustCompile(`(?i)when\s+the\s+AI\s+reads\s+this`), "conditional injection"},

	{regexp.MustCompile(`(?i)(leak|exfiltrate|extract)\s+the\s+(api\s+key|password|token)`), "secret exfiltration"},
}

// Detector runs the fixed catalogue against text and deduplicates hits.
type Detector struct{}

// New constructs a Detector.
func New() *Detector {
	return &Detector{}
}

// Detect scans text and returns one UnsafeInstruction per distinct
// (match_text, reason) pair, in catalogue then document order, each
// carrying a ±contextWindow-char window around the match.
func (d *Detector) Detect(text string) []domain.UnsafeInstruction {
	var out []domain.UnsafeInstruction
	seen := make(map[string]bool)

	for _, p := range catalogue {
		locs := p.re.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			matchText := text[loc[0]:loc[1]]
			key := matchText + "\x00" + p.reason
			if seen[key] {
				continue
			}
			seen[key] = true

			out = append(out, domain.UnsafeInstruction{
				Text:   contextWindowAround(text, loc[0], loc[1]),
				Reason: p.reason,
			})
		}
	}
	return out
}

// contextWindowAround returns the matched span padded by contextWindow
// characters on each side, with "..." markers when the window was
// truncated by the string boundary.
func contextWindowAround(text string, start, end int) string {
	windowStart := start - contextWindow
	prefixTruncated := windowStart > 0
	if windowStart < 0 {
		windowStart = 0
	}

	windowEnd := end + contextWindow
	suffixTruncated := windowEnd < len(text)
	if windowEnd > len(text) {
		windowEnd = len(text)
	}

	var b strings.Builder
	if prefixTruncated {
		b.WriteString("...")
	}
	b.WriteString(text[windowStart:windowEnd])
	if suffixTruncated {
		b.WriteString("...")
	}
	return b.String()
}

package chunker

import (
	"math"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

// codeIndicators is the short indicator list used to bias token estimation
// toward the denser 3.0 chars/token rate for code-like text.
var codeIndicators = []string{"{", "}", ";", "=>", "function(", "def ", "class ", "import ", "#include", "</", "->"}

func isCJK(r rune) bool {
	switch {
	case r >= 0x3040 && r <= 0x30FF:
		return true
	case r >= 0x3400 && r <= 0x9FFF:
		return true
	case r >= 0xAC00 && r <= 0xD7AF:
		return true
	}
	return false
}

func looksLikeCode(text string) bool {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return false
	}
	hits := 0
	for _, line := range lines {
		for _, ind := range codeIndicators {
			if strings.Contains(line, ind) {
				hits++
				break
			}
		}
	}
	return float64(hits)/float64(len(lines)) > 0.3
}

// estimateTokens implements §4.10: CJK characters at ~1.5 chars/token, the
// remainder at 3.5 chars/token (3.0 for code-like text).
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	var cjk, other int
	for _, r := range text {
		if isCJK(r) {
			cjk++
		} else {
			other++
		}
	}
	divisor := 3.5
	if looksLikeCode(text) {
		divisor = 3.0
	}
	tokens := float64(cjk)/1.5 + float64(other)/divisor
	n := int(math.Ceil(tokens))
	if n < 1 {
		n = 1
	}
	return n
}

var sentenceEnders = []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}

// truncateToTokens cuts text at a paragraph, sentence, or line boundary
// within 80-90% of the target character count for N tokens.
func truncateToTokens(text string, n int) (string, bool) {
	if estimateTokens(text) <= n {
		return text, false
	}
	target := int(float64(n) * 3.5)
	if target <= 0 {
		target = 1
	}
	if target >= len(text) {
		return text, false
	}

	lower := int(float64(target) * 0.8)
	upper := int(float64(target) * 0.9)
	if upper > len(text) {
		upper = len(text)
	}
	if lower > upper {
		lower = upper
	}
	window := text[lower:upper]

	cut := -1
	if idx := strings.LastIndex(window, "\n\n"); idx != -1 {
		cut = lower + idx + 2
	} else {
		best := -1
		for _, ender := range sentenceEnders {
			if idx := strings.LastIndex(window, ender); idx != -1 {
				end := idx + len(ender)
				if end > best {
					best = end
				}
			}
		}
		if best > 0 {
			cut = lower + best
		} else if idx := strings.LastIndex(window, "\n"); idx != -1 {
			cut = lower + idx + 1
		}
	}
	if cut <= 0 {
		cut = upper
	}
	if cut <= 0 {
		cut = target
	}
	return strings.TrimRight(text[:cut], "\n"), true
}

// splitTextBlock is the generic fallback: prefer paragraph breaks, then
// sentence boundaries, then lines, then a hard cut, targeting ~budget tokens
// per piece.
func splitTextBlock(text string, budget int) []string {
	if budget < 1 {
		budget = 1
	}
	var parts []string
	remaining := text
	for remaining != "" {
		if estimateTokens(remaining) <= budget {
			parts = append(parts, remaining)
			break
		}
		piece, truncated := truncateToTokens(remaining, budget)
		if !truncated || piece == "" {
			maxChars := int(float64(budget) * 3.5)
			if maxChars < 1 {
				maxChars = 1
			}
			if maxChars > len(remaining) {
				maxChars = len(remaining)
			}
			piece = remaining[:maxChars]
		}
		if piece == "" {
			break
		}
		parts = append(parts, strings.TrimRight(piece, "\n"))
		remaining = strings.TrimLeft(remaining[len(piece):], "\n")
	}
	return parts
}

func fenceOpenMarker(line string) (marker, lang string) {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return "", ""
	}
	c := trimmed[0]
	i := 0
	for i < len(trimmed) && trimmed[i] == c {
		i++
	}
	return trimmed[:i], strings.TrimSpace(trimmed[i:])
}

// splitCodeBlock implements §4.10's code split: the opening and closing
// fence are preserved on every part; a single line too large to fit is
// handed to splitTextBlock.
func splitCodeBlock(text string, budget int) []string {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return splitTextBlock(text, budget)
	}
	openLine := lines[0]
	marker, _ := fenceOpenMarker(openLine)
	if marker == "" {
		return splitTextBlock(text, budget)
	}
	closeMarker := marker

	body := lines[1:]
	if len(body) > 0 {
		if c, n, ok := isFenceLine(body[len(body)-1]); ok && string(c) == marker[:1] && n >= len(marker) {
			body = body[:len(body)-1]
		}
	}

	overhead := estimateTokens(openLine) + estimateTokens(closeMarker)
	if overhead >= budget {
		pieces := splitTextBlock(strings.Join(body, "\n"), 1)
		var out []string
		for _, p := range pieces {
			out = append(out, openLine+"\n"+p+"\n"+closeMarker)
		}
		if len(out) == 0 {
			return []string{text}
		}
		return out
	}

	var parts []string
	var cur []string
	curTokens := overhead
	flush := func() {
		if len(cur) == 0 {
			return
		}
		parts = append(parts, openLine+"\n"+strings.Join(cur, "\n")+"\n"+closeMarker)
		cur = nil
		curTokens = overhead
	}
	for _, line := range body {
		t := estimateTokens(line)
		if overhead+t > budget {
			flush()
			for _, piece := range splitTextBlock(line, budget-overhead) {
				parts = append(parts, openLine+"\n"+piece+"\n"+closeMarker)
			}
			continue
		}
		if curTokens+t > budget {
			flush()
		}
		cur = append(cur, line)
		curTokens += t
	}
	flush()
	if len(parts) == 0 {
		return []string{text}
	}
	return parts
}

// splitListBlock groups continuation lines with their owning item, then
// packs whole items into parts within budget.
func splitListBlock(text string, budget int) []string {
	lines := strings.Split(text, "\n")
	var items [][]string
	for _, line := range lines {
		if isListItemLine(line) || len(items) == 0 {
			items = append(items, []string{line})
			continue
		}
		items[len(items)-1] = append(items[len(items)-1], line)
	}

	var parts []string
	var cur []string
	curTokens := 0
	flush := func() {
		if len(cur) == 0 {
			return
		}
		parts = append(parts, strings.Join(cur, "\n"))
		cur = nil
		curTokens = 0
	}
	for _, item := range items {
		itemText := strings.Join(item, "\n")
		t := estimateTokens(itemText)
		if t > budget {
			flush()
			parts = append(parts, splitTextBlock(itemText, budget)...)
			continue
		}
		if curTokens > 0 && curTokens+t > budget {
			flush()
		}
		cur = append(cur, itemText)
		curTokens += t
	}
	flush()
	if len(parts) == 0 {
		return []string{text}
	}
	return parts
}

// splitTableBlock preserves the header and separator row on every part and
// splits the remaining rows; an unrecognizable table (or one whose header
// alone exceeds budget) falls back to splitTextBlock.
func splitTableBlock(text string, budget int) []string {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 || !isTableLine(lines[0]) || !isTableLine(lines[1]) || !strings.Contains(lines[1], "-") {
		return splitTextBlock(text, budget)
	}
	header, sep := lines[0], lines[1]
	rows := lines[2:]

	overhead := estimateTokens(header) + estimateTokens(sep)
	if overhead >= budget {
		return splitTextBlock(text, budget)
	}

	var parts []string
	var cur []string
	curTokens := overhead
	flush := func() {
		if len(cur) == 0 {
			return
		}
		parts = append(parts, header+"\n"+sep+"\n"+strings.Join(cur, "\n"))
		cur = nil
		curTokens = overhead
	}
	for _, row := range rows {
		t := estimateTokens(row)
		if overhead+t > budget {
			flush()
			parts = append(parts, header+"\n"+sep+"\n"+row)
			continue
		}
		if curTokens+t > budget {
			flush()
		}
		cur = append(cur, row)
		curTokens += t
	}
	flush()
	if len(parts) == 0 {
		return []string{text}
	}
	return parts
}

func splitByKind(b domain.KeyBlock, budget int) []string {
	switch b.Kind {
	case domain.KindCode:
		return splitCodeBlock(b.Text, budget)
	case domain.KindList:
		return splitListBlock(b.Text, budget)
	case domain.KindTable:
		return splitTableBlock(b.Text, budget)
	default:
		return splitTextBlock(b.Text, budget)
	}
}

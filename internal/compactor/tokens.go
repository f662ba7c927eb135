package compactor

import (
	"math"
	"strings"
)

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

// estimateTokens is a reduced copy of internal/chunker's heuristic token
// model (§4.10): CJK runes count at 1.5 chars/token and all other text at
// 3.5. It has no code-like rate, so code counts at 3.5 here where the
// chunker uses 3.0.
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
	n := int(math.Ceil(float64(cjk)/1.5 + float64(other)/3.5))
	if n < 1 {
		n = 1
	}
	return n
}

var sentenceEnders = []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}

// truncateToTokens cuts text at a paragraph, sentence, or line boundary
// within 80-90% of the target character count for N tokens (§4.10/§4.11).
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
	return strings.TrimRight(text[:cut], "\n"), true
}

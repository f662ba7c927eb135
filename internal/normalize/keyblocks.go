package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

func atxHeadingPrefix(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	i := 0
	for i < len(trimmed) && i < 6 && trimmed[i] == '#' {
		i++
	}
	return i > 0 && i <= 6 && i < len(trimmed) && trimmed[i] == ' '
}

func isListItemLine(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "+ ") {
		return true
	}
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	return i > 0 && i < len(trimmed) && (trimmed[i] == '.' || trimmed[i] == ')')
}

func isQuoteLine(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " "), ">")
}

func isTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " "), "|")
}

func isFenceLine(line string) (char byte, length int, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return 0, 0, false
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return 0, 0, false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return 0, 0, false
	}
	return c, n, true
}

// splitKeyBlocks implements §4.9 step 6: a fence-aware state machine that
// groups markdown lines into semantically typed, contiguous key blocks.
func splitKeyBlocks(md string) []domain.KeyBlock {
	var blocks []domain.KeyBlock
	var current []string
	var currentKind domain.KeyBlockKind

	var inFence bool
	var fenceChar byte
	var fenceLen int
	var codeLines []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		text := strings.Join(current, "\n")
		blocks = append(blocks, newKeyBlock(currentKind, text, len(blocks)))
		current = nil
		currentKind = ""
	}

	lines := strings.Split(md, "\n")
	for _, line := range lines {
		if c, n, ok := isFenceLine(line); ok {
			if !inFence {
				flush()
				inFence = true
				fenceChar = c
				fenceLen = n
				codeLines = []string{line}
				continue
			}
			codeLines = append(codeLines, line)
			if c == fenceChar && n >= fenceLen {
				inFence = false
				blocks = append(blocks, newKeyBlock(domain.KindCode, strings.Join(codeLines, "\n"), len(blocks)))
				codeLines = nil
			}
			continue
		}
		if inFence {
			codeLines = append(codeLines, line)
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}

		switch {
		case atxHeadingPrefix(line):
			flush()
			blocks = append(blocks, newKeyBlock(domain.KindHeading, line, len(blocks)))
		case isListItemLine(line):
			if currentKind != domain.KindList {
				flush()
				currentKind = domain.KindList
			}
			current = append(current, line)
		case isQuoteLine(line):
			if currentKind != domain.KindQuote {
				flush()
				currentKind = domain.KindQuote
			}
			current = append(current, line)
		case isTableLine(line):
			if currentKind != domain.KindTable {
				flush()
				currentKind = domain.KindTable
			}
			current = append(current, line)
		default:
			if currentKind != domain.KindParagraph {
				flush()
				currentKind = domain.KindParagraph
			}
			current = append(current, line)
		}
	}
	if inFence && len(codeLines) > 0 {
		blocks = append(blocks, newKeyBlock(domain.KindCode, strings.Join(codeLines, "\n"), len(blocks)))
	}
	flush()

	return blocks
}

func newKeyBlock(kind domain.KeyBlockKind, text string, index int) domain.KeyBlock {
	return domain.KeyBlock{
		BlockID: blockID(index, text),
		Kind:    kind,
		Text:    text,
		CharLen: len(text),
	}
}

func blockID(index int, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "b" + hex.EncodeToString(sum[:4]) + "-" + strconv.Itoa(index)
}

package chunker

import (
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

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

func isHeadingLine(line string) bool {
	return headingLineRe.MatchString(line)
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

func isTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " "), "|")
}

// fallbackBlocksFromMarkdown implements §4.10's key-block-less path: a
// fence-aware line walk that yields heading and code blocks verbatim and
// groups the rest into paragraph blocks, breaking at blank lines only under
// the balanced strategy (headings_first keeps accumulating across paragraph
// breaks so only heading boundaries are candidate split points upstream).
func fallbackBlocksFromMarkdown(md string, strategy driven.ChunkStrategy) []domain.KeyBlock {
	var blocks []domain.KeyBlock
	var group []string

	flushGroup := func() {
		if len(group) == 0 {
			return
		}
		text := strings.Join(group, "\n")
		group = nil
		if strings.TrimSpace(text) == "" {
			return
		}
		blocks = append(blocks, domain.KeyBlock{Kind: domain.KindParagraph, Text: text, CharLen: len(text)})
	}

	var inFence bool
	var fenceChar byte
	var fenceLen int
	var fenceLines []string

	for _, line := range strings.Split(md, "\n") {
		if c, n, ok := isFenceLine(line); ok {
			if !inFence {
				flushGroup()
				inFence = true
				fenceChar = c
				fenceLen = n
				fenceLines = []string{line}
				continue
			}
			fenceLines = append(fenceLines, line)
			if c == fenceChar && n >= fenceLen {
				inFence = false
				text := strings.Join(fenceLines, "\n")
				blocks = append(blocks, domain.KeyBlock{Kind: domain.KindCode, Text: text, CharLen: len(text)})
				fenceLines = nil
			}
			continue
		}
		if inFence {
			fenceLines = append(fenceLines, line)
			continue
		}

		if isHeadingLine(line) {
			flushGroup()
			blocks = append(blocks, domain.KeyBlock{Kind: domain.KindHeading, Text: line, CharLen: len(line)})
			continue
		}

		if strings.TrimSpace(line) == "" {
			if strategy == driven.StrategyBalanced {
				flushGroup()
			} else {
				group = append(group, line)
			}
			continue
		}

		group = append(group, line)
	}
	if inFence && len(fenceLines) > 0 {
		text := strings.Join(fenceLines, "\n")
		blocks = append(blocks, domain.KeyBlock{Kind: domain.KindCode, Text: text, CharLen: len(text)})
	}
	flushGroup()

	return blocks
}

package compactor

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

// sentence is one unit of extractive summarization: either a natural
// sentence, or a heading/list line preserved verbatim (§4.11).
type sentence struct {
	Text  string
	Index int
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

var headingLineRe = regexp.MustCompile(`^#{1,6}\s+\S`)

func isHeadingLine(line string) bool {
	return headingLineRe.MatchString(strings.TrimLeft(line, " "))
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

// splitSentences implements §4.11's sentence split: fence-aware (code is
// excluded from extractive summarization entirely), with headings and list
// lines preserved as their own "sentence".
func splitSentences(md string) []sentence {
	var out []sentence
	var paragraph []string

	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		text := strings.Join(paragraph, " ")
		paragraph = nil
		for _, s := range splitParagraphSentences(text) {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, sentence{Text: s, Index: len(out)})
			}
		}
	}

	var inFence bool
	var fenceChar byte
	var fenceLen int

	for _, line := range strings.Split(md, "\n") {
		if c, n, ok := isFenceLine(line); ok {
			flushParagraph()
			if !inFence {
				inFence = true
				fenceChar = c
				fenceLen = n
			} else if c == fenceChar && n >= fenceLen {
				inFence = false
			}
			continue
		}
		if inFence {
			continue
		}
		if strings.TrimSpace(line) == "" {
			flushParagraph()
			continue
		}
		if isHeadingLine(line) {
			flushParagraph()
			out = append(out, sentence{Text: strings.TrimSpace(line), Index: len(out)})
			continue
		}
		if isListItemLine(line) {
			flushParagraph()
			out = append(out, sentence{Text: strings.TrimSpace(line), Index: len(out)})
			continue
		}
		paragraph = append(paragraph, strings.TrimSpace(line))
	}
	flushParagraph()

	return out
}

func splitParagraphSentences(text string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		if i+1 < len(text) && text[i+1] != ' ' {
			continue
		}
		parts = append(parts, text[start:i+1])
		start = i + 2
		if start > len(text) {
			start = len(text)
		}
		i = start - 1
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

var (
	numberRe   = regexp.MustCompile(`\d`)
	dateWordRe = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\b|\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
	nameRe     = regexp.MustCompile(`\b([A-Z][a-z]+\s+[A-Z][a-z]+)\b`)
	definesRe  = regexp.MustCompile(`(?i)\b(is|are|means|refers to)\b`)
	procRe     = regexp.MustCompile(`(?i)\b(first|then|next|finally|step \d+)\b`)
	accordingRe = regexp.MustCompile(`(?i)according to`)
)

// scoreSentenceSalience implements §4.11's salience scorer: length
// penalties, preserve-class bonuses, phrase/currency/percent bonuses, and a
// heading/list bonus.
func scoreSentenceSalience(s sentence, preserve []domain.PreserveClass) float64 {
	score := 1.0
	words := strings.Fields(s.Text)
	wc := len(words)

	switch {
	case wc < 4:
		score -= 1.0
	case wc > 40:
		score -= 1.0
	case wc >= 8 && wc <= 25:
		score += 0.5
	}

	has := func(c domain.PreserveClass) bool {
		for _, p := range preserve {
			if p == c {
				return true
			}
		}
		return false
	}

	if has(domain.PreserveNumbers) && numberRe.MatchString(s.Text) {
		score += 1
	}
	if has(domain.PreserveDates) && dateWordRe.MatchString(s.Text) {
		score += 1
	}
	if has(domain.PreserveNames) && nameRe.MatchString(s.Text) {
		score += 1
	}
	if has(domain.PreserveDefinitions) && definesRe.MatchString(s.Text) {
		score += 1
	}
	if has(domain.PreserveProcedures) && procRe.MatchString(s.Text) {
		score += 1
	}

	if accordingRe.MatchString(s.Text) {
		score += 1
	}
	if strings.ContainsAny(s.Text, "$%") {
		score += 0.5
	}

	if isHeadingLine(s.Text) || isListItemLine(s.Text) {
		score += 2
	}

	return score
}

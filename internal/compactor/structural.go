package compactor

import (
	"sort"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

// section is one heading-bounded slice of markdown for structural compaction.
type section struct {
	HeadingLine string
	Level       int
	Text        string
	Index       int
}

func headingLevelOf(line string) int {
	trimmed := strings.TrimLeft(line, " ")
	n := 0
	for n < len(trimmed) && n < 6 && trimmed[n] == '#' {
		n++
	}
	return n
}

// splitStructuralSections splits markdown into sections at `#` heading
// boundaries, fence-aware, per §4.11.
func splitStructuralSections(md string) []section {
	var out []section
	var cur []string
	var heading string
	var level int

	flush := func() {
		if len(cur) == 0 && heading == "" {
			return
		}
		text := strings.TrimSpace(strings.Join(cur, "\n"))
		out = append(out, section{HeadingLine: heading, Level: level, Text: text, Index: len(out)})
		cur = nil
	}

	var inFence bool
	var fenceChar byte
	var fenceLen int

	for _, line := range strings.Split(md, "\n") {
		if c, n, ok := isFenceLine(line); ok {
			cur = append(cur, line)
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
			cur = append(cur, line)
			continue
		}
		if isHeadingLine(line) {
			flush()
			heading = strings.TrimSpace(line)
			level = headingLevelOf(line)
			cur = []string{line}
			continue
		}
		cur = append(cur, line)
	}
	flush()

	return out
}

// scoreSection implements §4.11's structural scorer: heading bonus, a
// length-band bonus, preserved-element bonuses, and code/list bonuses.
func scoreSection(sec section, preserve []domain.PreserveClass) float64 {
	score := 0.0
	if sec.HeadingLine != "" {
		score += 2
	}
	length := len(sec.Text)
	if length >= 100 && length <= 2000 {
		score += 1
	}

	for _, s := range splitSentences(sec.Text) {
		if isHeadingLine(s.Text) {
			continue
		}
		score += scorePreserveOnly(s, preserve) * 0.1
	}

	if strings.Contains(sec.Text, "```") {
		score += 1
	}
	if strings.Contains(sec.Text, "\n- ") || strings.HasPrefix(sec.Text, "- ") {
		score += 0.5
	}

	return score
}

func scorePreserveOnly(s sentence, preserve []domain.PreserveClass) float64 {
	score := 0.0
	has := func(c domain.PreserveClass) bool {
		for _, p := range preserve {
			if p == c {
				return true
			}
		}
		return false
	}
	if has(domain.PreserveNumbers) && numberRe.MatchString(s.Text) {
		score++
	}
	if has(domain.PreserveDates) && dateWordRe.MatchString(s.Text) {
		score++
	}
	if has(domain.PreserveNames) && nameRe.MatchString(s.Text) {
		score++
	}
	return score
}

// structuralCompact implements the `structural` mode of §4.11.
func structuralCompact(md string, budget int, preserve []domain.PreserveClass) (string, []string) {
	sections := splitStructuralSections(md)
	if len(sections) == 0 {
		return "", nil
	}

	type scored struct {
		sec   section
		score float64
	}
	ranked := make([]scored, len(sections))
	for i, sec := range sections {
		ranked[i] = scored{sec: sec, score: scoreSection(sec, preserve)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	var included []section
	var omissions []string
	remaining := budget

	for _, r := range ranked {
		tokens := estimateTokens(r.sec.Text)
		if tokens <= remaining {
			included = append(included, r.sec)
			remaining -= tokens
			continue
		}
		if remaining >= 40 {
			summary := summarizeByScore(r.sec.Text, remaining, preserve)
			if r.sec.HeadingLine != "" && !strings.HasPrefix(summary, r.sec.HeadingLine) {
				summary = r.sec.HeadingLine + "\n" + summary
			}
			included = append(included, section{HeadingLine: r.sec.HeadingLine, Level: r.sec.Level, Text: summary, Index: r.sec.Index})
			remaining -= estimateTokens(summary)
			continue
		}
		label := r.sec.HeadingLine
		if label == "" {
			label = "untitled section"
		}
		omissions = append(omissions, label)
	}

	sort.SliceStable(included, func(i, j int) bool { return included[i].Index < included[j].Index })

	texts := make([]string, len(included))
	for i, s := range included {
		texts[i] = s.Text
	}
	return strings.Join(texts, "\n\n"), omissions
}

// summarizeByScore runs salience-style sentence scoring over a section body
// to produce a fit-within-budget summary while preserving its heading line.
func summarizeByScore(text string, budget int, preserve []domain.PreserveClass) string {
	sentences := splitSentences(text)
	return greedySentenceSummary(sentences, budget, preserve)
}

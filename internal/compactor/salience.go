package compactor

import (
	"sort"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

// greedySentenceSummary scores sentences by salience, greedily includes the
// highest scored within budget, then re-sorts by original index and dedupes
// before formatting — the shared core of §4.11's salience, map_reduce, and
// structural-overflow summarization.
func greedySentenceSummary(sentences []sentence, budget int, preserve []domain.PreserveClass) string {
	return greedySentenceSummaryScored(sentences, budget, func(s sentence) float64 {
		return scoreSentenceSalience(s, preserve)
	})
}

func greedySentenceSummaryScored(sentences []sentence, budget int, score func(sentence) float64) string {
	type scored struct {
		s     sentence
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		ranked[i] = scored{s: s, score: score(s)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	var included []sentence
	remaining := budget
	for _, r := range ranked {
		tokens := estimateTokens(r.s.Text)
		if tokens <= remaining {
			included = append(included, r.s)
			remaining -= tokens
		}
	}

	sort.SliceStable(included, func(i, j int) bool { return included[i].Index < included[j].Index })

	seen := make(map[string]bool)
	var out []string
	for _, s := range included {
		key := strings.ToLower(strings.TrimSpace(s.Text))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s.Text)
	}

	return strings.Join(out, "\n")
}

// salienceCompact implements the `salience` mode of §4.11.
func salienceCompact(md string, budget int, preserve []domain.PreserveClass) string {
	sentences := splitSentences(md)
	return greedySentenceSummary(sentences, budget, preserve)
}

// dropLowestScored20Percent removes the bottom fifth of sentences by
// salience score, stopping once at most 5 sentences remain (§4.11's
// map_reduce safety cutoff).
func dropLowestScored20Percent(sentences []sentence, preserve []domain.PreserveClass) []sentence {
	if len(sentences) <= 5 {
		return sentences
	}
	type scored struct {
		s     sentence
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		ranked[i] = scored{s: s, score: scoreSentenceSalience(s, preserve)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score < ranked[j].score })

	drop := len(ranked) / 5
	if drop < 1 {
		drop = 1
	}
	if len(ranked)-drop < 5 {
		drop = len(ranked) - 5
	}
	if drop <= 0 {
		return sentences
	}
	dropped := make(map[int]bool, drop)
	for _, r := range ranked[:drop] {
		dropped[r.s.Index] = true
	}

	var kept []sentence
	for _, s := range sentences {
		if !dropped[s.Index] {
			kept = append(kept, s)
		}
	}
	return kept
}

// mapReduceCompact implements the `map_reduce` mode of §4.11: each chunk
// gets an even token budget, is summarized independently, and the
// concatenation is iteratively pruned down to the overall budget.
func mapReduceCompact(chunkTexts []string, budget int, preserve []domain.PreserveClass) string {
	numChunks := len(chunkTexts)
	if numChunks == 0 {
		return ""
	}
	perChunk := budget / numChunks
	if perChunk < 1 {
		perChunk = 1
	}

	var summaries []string
	for _, text := range chunkTexts {
		s := greedySentenceSummary(splitSentences(text), perChunk, preserve)
		if s != "" {
			summaries = append(summaries, s)
		}
	}

	combined := strings.Join(summaries, "\n")
	sentences := splitSentences(combined)

	for estimateTokensOfSentences(sentences) > budget && len(sentences) > 5 {
		sentences = dropLowestScored20Percent(sentences, preserve)
	}

	sort.SliceStable(sentences, func(i, j int) bool { return sentences[i].Index < sentences[j].Index })
	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Text
	}
	return strings.Join(texts, "\n")
}

func estimateTokensOfSentences(sentences []sentence) int {
	total := 0
	for _, s := range sentences {
		total += estimateTokens(s.Text)
	}
	return total
}

package compactor

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "of": true, "in": true, "on": true, "at": true,
	"to": true, "for": true, "and": true, "or": true, "but": true, "with": true, "about": true,
	"what": true, "when": true, "where": true, "who": true, "why": true, "how": true,
	"does": true, "do": true, "did": true, "can": true, "could": true, "should": true,
	"would": true, "will": true, "it": true, "this": true, "that": true, "these": true,
	"those": true, "i": true, "you": true, "he": true, "she": true, "we": true, "they": true,
}

var termSuffixes = []string{"ations", "ation", "ments", "ment", "tions", "tion", "ings", "ing", "ers", "er", "ies", "ed", "es", "s"}

func stem(word string) string {
	for _, suf := range termSuffixes {
		if suf == "ies" {
			if strings.HasSuffix(word, "ies") && len(word) > 4 {
				return word[:len(word)-3] + "y"
			}
			continue
		}
		if strings.HasSuffix(word, suf) && len(word) > len(suf)+2 {
			return word[:len(word)-len(suf)]
		}
	}
	return word
}

var wordRe = regexp.MustCompile(`[A-Za-z]+`)

// buildQueryTerms extracts stemmed, stop-word-filtered query terms from a
// question per §4.11.
func buildQueryTerms(question string) []string {
	var terms []string
	seen := make(map[string]bool)
	for _, w := range wordRe.FindAllString(strings.ToLower(question), -1) {
		if stopWords[w] || len(w) < 3 {
			continue
		}
		s := stem(w)
		if seen[s] {
			continue
		}
		seen[s] = true
		terms = append(terms, s)
	}
	return terms
}

func countTermMatches(text string, terms []string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, t := range terms {
		if strings.Contains(lower, t) {
			count++
		}
	}
	return count
}

// questionFocusedCompact implements the `question_focused` mode of §4.11.
// fellBackToSalience indicates the caller should emit the associated warning.
func questionFocusedCompact(md, question string, budget int, preserve []domain.PreserveClass) (summary string, fellBackToSalience bool) {
	terms := buildQueryTerms(question)
	if question == "" || len(terms) == 0 {
		return salienceCompact(md, budget, preserve), true
	}

	sentences := splitSentences(md)
	matches := make([]int, len(sentences))
	anyMatch := false
	for i, s := range sentences {
		matches[i] = countTermMatches(s.Text, terms)
		if matches[i] > 0 {
			anyMatch = true
		}
	}
	if !anyMatch {
		return salienceCompact(md, budget, preserve), true
	}

	type scored struct {
		s        sentence
		score    float64
		termHits int
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		neighborHits := 0
		if i > 0 && matches[i-1] > 0 {
			neighborHits++
		}
		if i+1 < len(sentences) && matches[i+1] > 0 {
			neighborHits++
		}
		if neighborHits > 2 {
			neighborHits = 2
		}
		base := scoreSentenceSalience(s, preserve)
		score := base + 3*float64(matches[i])
		if neighborHits < 2 {
			score += float64(neighborHits)
		} else {
			score += 2
		}
		ranked[i] = scored{s: s, score: score, termHits: matches[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if ranked[i].termHits != ranked[j].termHits {
			return ranked[i].termHits > ranked[j].termHits
		}
		return ranked[i].s.Index < ranked[j].s.Index
	})

	var included []sentence
	includedIdx := make(map[int]bool)
	remaining := budget
	used := 0
	for _, r := range ranked {
		tokens := estimateTokens(r.s.Text)
		if tokens <= remaining {
			included = append(included, r.s)
			includedIdx[r.s.Index] = true
			remaining -= tokens
			used += tokens
		}
	}

	if budget > 0 && float64(used) < 0.7*float64(budget) {
		bySalience := make([]scored, len(sentences))
		for i, s := range sentences {
			bySalience[i] = scored{s: s, score: scoreSentenceSalience(s, preserve)}
		}
		sort.SliceStable(bySalience, func(i, j int) bool { return bySalience[i].score > bySalience[j].score })
		for _, r := range bySalience {
			if includedIdx[r.s.Index] {
				continue
			}
			tokens := estimateTokens(r.s.Text)
			if tokens <= remaining {
				included = append(included, r.s)
				includedIdx[r.s.Index] = true
				remaining -= tokens
			}
		}
	}

	sort.SliceStable(included, func(i, j int) bool { return included[i].Index < included[j].Index })
	texts := make([]string, len(included))
	for i, s := range included {
		texts[i] = s.Text
	}
	return strings.Join(texts, "\n"), false
}

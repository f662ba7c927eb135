package extractors

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// candidateTags are the block-level containers eligible to be scored as the
// main-content candidate.
var candidateTags = map[atom.Atom]bool{
	atom.Div: true, atom.Article: true, atom.Section: true, atom.Main: true,
}

// scoreCandidate approximates Readability's paragraph-density heuristic:
// reward nodes with many, long paragraphs; penalize nodes dominated by
// short, link-heavy text (nav/boilerplate debris that survived sanitize).
func scoreCandidate(n *html.Node) float64 {
	var score float64
	var pCount int
	var textLen int
	var linkTextLen int

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.P:
				pCount++
				l := len(strings.TrimSpace(textContent(n)))
				if l > 25 {
					score += 1 + float64(l)/100
				}
			case atom.A:
				linkTextLen += len(textContent(n))
			}
		}
		if n.Type == html.TextNode {
			textLen += len(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	if textLen > 0 && float64(linkTextLen)/float64(textLen) > 0.5 {
		score *= 0.3
	}
	return score
}

// findReadabilityCandidate returns the best-scoring candidate subtree under
// body, or body itself if nothing scores positively.
func findReadabilityCandidate(body *html.Node) *html.Node {
	var best *html.Node
	var bestScore float64

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && candidateTags[n.DataAtom] {
			s := scoreCandidate(n)
			if s > bestScore {
				bestScore = s
				best = n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(body)

	if best == nil {
		return body
	}
	return best
}

// findFallbackCandidate selects main, article, [role=main], or body, in
// that priority order.
func findFallbackCandidate(doc *html.Node) *html.Node {
	if n := findFirst(doc, atom.Main); n != nil {
		return n
	}
	if n := findFirst(doc, atom.Article); n != nil {
		return n
	}
	if n := findByAttr(doc, "role", "main"); n != nil {
		return n
	}
	if n := findFirst(doc, atom.Body); n != nil {
		return n
	}
	return doc
}

// chooseContent implements §4.6's readability-vs-fallback decision rule.
// readabilityNode may be nil if none scored positively.
func chooseContent(readabilityNode, fallbackNode *html.Node) *html.Node {
	fallbackWords := wordCount(textContent(fallbackNode))
	if readabilityNode == nil {
		return fallbackNode
	}
	readabilityWords := wordCount(textContent(readabilityNode))

	if readabilityWords == 0 {
		return fallbackNode
	}
	if fallbackWords >= 600 {
		ratio := float64(readabilityWords) / float64(fallbackWords)
		if ratio < 0.35 {
			return fallbackNode
		}
	}
	if fallbackWords >= 300 && readabilityWords < 120 {
		return fallbackNode
	}
	return readabilityNode
}

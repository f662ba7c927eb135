package extractors

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// denyListTags are removed outright, with their subtrees, during sanitization.
var denyListTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"frame": true, "object": true, "embed": true, "applet": true,
	"svg": true, "math": true, "canvas": true, "audio": true,
	"video": true, "source": true, "track": true, "map": true,
	"area": true, "template": true, "slot": true, "portal": true,
}

// boilerplateNeedles are matched (case-insensitively) against an element's
// id/class attribute to identify boilerplate regions to strip.
var boilerplateNeedles = []string{
	"nav", "footer", "cookie", "consent", "ads", "advert", "share",
	"comment", "popup", "modal",
}

var boilerplateRoles = map[string]bool{
	"banner": true, "navigation": true, "complementary": true, "contentinfo": true,
}

var dangerousSchemes = []string{"javascript:", "data:", "vbscript:", "file:"}

// Sanitize mutates doc in place, removing deny-listed elements, boilerplate
// regions, hidden elements, comments, event handlers, and inline styles,
// and stripping dangerous URI schemes from link/src/action attributes.
func Sanitize(doc *html.Node) {
	sanitizeChildren(doc)
}

func sanitizeChildren(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if shouldRemove(c) {
			n.RemoveChild(c)
			continue
		}
		if c.Type == html.ElementNode {
			stripAttributes(c)
		}
		sanitizeChildren(c)
	}
}

func shouldRemove(n *html.Node) bool {
	if n.Type == html.CommentNode {
		return true
	}
	if n.Type != html.ElementNode {
		return false
	}
	if denyListTags[n.Data] {
		return true
	}
	if attr(n, "aria-hidden") == "true" {
		return true
	}
	if boilerplateRoles[strings.ToLower(attr(n, "role"))] {
		return true
	}
	idClass := strings.ToLower(attr(n, "id") + " " + attr(n, "class"))
	for _, needle := range boilerplateNeedles {
		if strings.Contains(idClass, needle) {
			return true
		}
	}
	if isHiddenByStyle(attr(n, "style")) {
		return true
	}
	return false
}

func isHiddenByStyle(style string) bool {
	style = strings.ToLower(strings.ReplaceAll(style, " ", ""))
	return strings.Contains(style, "display:none") ||
		strings.Contains(style, "visibility:hidden") ||
		strings.Contains(style, "opacity:0")
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func stripAttributes(n *html.Node) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		lower := strings.ToLower(a.Key)
		if strings.HasPrefix(lower, "on") {
			continue
		}
		if lower == "style" {
			continue
		}
		if (lower == "href" || lower == "src" || lower == "action" || lower == "formaction") && hasDangerousScheme(a.Val) {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func hasDangerousScheme(val string) bool {
	lower := strings.ToLower(strings.TrimSpace(val))
	for _, s := range dangerousSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

// textContent returns the concatenated text of n's subtree.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// findFirst returns the first descendant of n matching any of the given
// tag atoms, or nil.
func findFirst(n *html.Node, tags ...atom.Atom) *html.Node {
	var result *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if result != nil {
			return
		}
		if n.Type == html.ElementNode {
			for _, t := range tags {
				if n.DataAtom == t {
					result = n
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return result
}

func findByAttr(n *html.Node, key, value string) *html.Node {
	var result *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if result != nil {
			return
		}
		if n.Type == html.ElementNode && strings.EqualFold(attr(n, key), value) {
			result = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return result
}

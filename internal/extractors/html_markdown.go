package extractors

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// renderMarkdown converts a sanitized HTML subtree into Markdown. It covers
// the block/inline elements articles actually use: headings, paragraphs,
// lists, blockquotes, code (fenced, with language-X class detection), links,
// emphasis, and GFM tables.
func renderMarkdown(n *html.Node) string {
	var b strings.Builder
	renderBlock(&b, n)
	return strings.TrimSpace(collapseBlankLines(b.String()))
}

func renderBlock(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c)
	}
}

func renderNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		// fallthrough to tag switch below
	default:
		renderBlock(b, n)
		return
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.DataAtom - atom.H1 + 1)
		b.WriteString("\n\n")
		b.WriteString(strings.Repeat("#", level))
		b.WriteString(" ")
		b.WriteString(strings.TrimSpace(inlineText(n)))
		b.WriteString("\n\n")
	case atom.P:
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(inlineText(n)))
		b.WriteString("\n\n")
	case atom.Br:
		b.WriteString("  \n")
	case atom.Strong, atom.B:
		b.WriteString("**")
		b.WriteString(inlineText(n))
		b.WriteString("**")
	case atom.Em, atom.I:
		b.WriteString("_")
		b.WriteString(inlineText(n))
		b.WriteString("_")
	case atom.Code:
		b.WriteString("`")
		b.WriteString(textContent(n))
		b.WriteString("`")
	case atom.A:
		href := attr(n, "href")
		text := strings.TrimSpace(inlineText(n))
		if href == "" {
			b.WriteString(text)
		} else {
			fmt.Fprintf(b, "[%s](%s)", text, href)
		}
	case atom.Img:
		alt := attr(n, "alt")
		src := attr(n, "src")
		fmt.Fprintf(b, "![%s](%s)", alt, src)
	case atom.Ul:
		b.WriteString("\n\n")
		renderListItems(b, n, false)
		b.WriteString("\n\n")
	case atom.Ol:
		b.WriteString("\n\n")
		renderListItems(b, n, true)
		b.WriteString("\n\n")
	case atom.Blockquote:
		b.WriteString("\n\n")
		inner := renderMarkdown(n)
		for _, line := range strings.Split(inner, "\n") {
			b.WriteString("> ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	case atom.Pre:
		b.WriteString("\n\n")
		renderCodeBlock(b, n)
		b.WriteString("\n\n")
	case atom.Hr:
		b.WriteString("\n\n---\n\n")
	case atom.Table:
		b.WriteString("\n\n")
		renderTable(b, n)
		b.WriteString("\n\n")
	case atom.Div, atom.Section, atom.Article, atom.Main, atom.Span,
		atom.Body, atom.Html, atom.Header, atom.Footer, atom.Aside, atom.Figure, atom.Figcaption:
		renderBlock(b, n)
	default:
		renderBlock(b, n)
	}
}

// inlineText renders n's children as inline markdown (no block wrapping),
// used inside headings/paragraphs/links so nested emphasis still works.
func inlineText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(&b, c)
	}
	return collapseSpaces(b.String())
}

func renderListItems(b *strings.Builder, list *html.Node, ordered bool) {
	i := 1
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		if ordered {
			fmt.Fprintf(b, "%d. %s\n", i, strings.TrimSpace(inlineText(c)))
			i++
		} else {
			fmt.Fprintf(b, "- %s\n", strings.TrimSpace(inlineText(c)))
		}
	}
}

// codeLanguageFromClass extracts X from a "language-X" (or "lang-X") class token.
func codeLanguageFromClass(class string) string {
	for _, tok := range strings.Fields(class) {
		if strings.HasPrefix(tok, "language-") {
			return strings.TrimPrefix(tok, "language-")
		}
		if strings.HasPrefix(tok, "lang-") {
			return strings.TrimPrefix(tok, "lang-")
		}
	}
	return ""
}

func renderCodeBlock(b *strings.Builder, pre *html.Node) {
	lang := codeLanguageFromClass(attr(pre, "class"))
	codeNode := findFirst(pre, atom.Code)
	if codeNode != nil && lang == "" {
		lang = codeLanguageFromClass(attr(codeNode, "class"))
	}
	var text string
	if codeNode != nil {
		text = textContent(codeNode)
	} else {
		text = textContent(pre)
	}
	text = strings.Trim(text, "\n")

	fence := "```"
	for strings.Contains(text, fence) {
		fence += "`"
	}
	b.WriteString(fence)
	b.WriteString(lang)
	b.WriteString("\n")
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(fence)
}

func renderTable(b *strings.Builder, table *html.Node) {
	rows := tableRows(table)
	if len(rows) == 0 {
		return
	}
	for i, row := range rows {
		b.WriteString("|")
		for _, cell := range row {
			b.WriteString(" ")
			b.WriteString(escapeTableCell(strings.TrimSpace(inlineText(cell))))
			b.WriteString(" |")
		}
		b.WriteString("\n")
		if i == 0 {
			b.WriteString("|")
			for range row {
				b.WriteString(" --- |")
			}
			b.WriteString("\n")
		}
	}
}

func tableRows(table *html.Node) [][]*html.Node {
	var rows [][]*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			var cells []*html.Node
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
					cells = append(cells, c)
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func escapeTableCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func collapseSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " ")
		if strings.TrimSpace(trimmed) == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}

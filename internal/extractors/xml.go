package extractors

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

var _ driven.Extractor = (*XMLExtractor)(nil)

const (
	xmlMaxFeedItems      = 20
	xmlMaxTreeDepth      = 4
	xmlMaxChildrenPerTag = 10
)

// XMLExtractor implements driven.Extractor for application/xml, text/xml,
// and RSS/Atom feed bodies: feed-aware items-as-Markdown rendering when the
// root looks like a feed, a generic bounded tree summary otherwise.
type XMLExtractor struct{}

// NewXMLExtractor constructs an XMLExtractor.
func NewXMLExtractor() *XMLExtractor {
	return &XMLExtractor{}
}

// Kind implements driven.Extractor.
func (e *XMLExtractor) Kind() domain.ContentKind {
	return domain.KindXML
}

// Extract implements driven.Extractor.
func (e *XMLExtractor) Extract(input domain.ExtractInput) (*domain.ExtractedContent, error) {
	var node xmlNode
	if err := xml.Unmarshal([]byte(input.Text), &node); err != nil {
		return &domain.ExtractedContent{
			Content:     input.Text,
			TextContent: input.Text,
			Markdown:    "```xml\n" + input.Text + "\n```",
			Warnings: []domain.Warning{{
				Type:    domain.WarningExtractionFallback,
				Message: "body declared XML but failed to parse; treating it as opaque text",
			}},
		}, nil
	}

	if items, title := rssItems(&node); items != nil {
		return feedContent(title, items), nil
	}
	if items, title := atomEntries(&node); items != nil {
		return feedContent(title, items), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", node.XMLName.Local)
	summarizeXMLNode(&b, &node, 0)
	md := b.String()

	return &domain.ExtractedContent{
		Title:       node.XMLName.Local,
		Content:     md,
		TextContent: md,
		Markdown:    md,
	}, nil
}

// xmlNode is a generic, order-preserving XML tree used both for feed
// detection and the fallback tree summary.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

type feedItem struct {
	Title   string
	Link    string
	Date    string
	Summary string
}

func rssItems(root *xmlNode) ([]feedItem, string) {
	if !strings.EqualFold(root.XMLName.Local, "rss") {
		return nil, ""
	}
	channel := findChild(root, "channel")
	if channel == nil {
		return nil, ""
	}
	title := childText(channel, "title")
	var items []feedItem
	for _, c := range channel.Children {
		if !strings.EqualFold(c.XMLName.Local, "item") {
			continue
		}
		items = append(items, feedItem{
			Title:   childText(&c, "title"),
			Link:    childText(&c, "link"),
			Date:    childText(&c, "pubDate"),
			Summary: childText(&c, "description"),
		})
		if len(items) >= xmlMaxFeedItems {
			break
		}
	}
	return items, title
}

func atomEntries(root *xmlNode) ([]feedItem, string) {
	if !strings.EqualFold(root.XMLName.Local, "feed") {
		return nil, ""
	}
	title := childText(root, "title")
	var items []feedItem
	for _, c := range root.Children {
		if !strings.EqualFold(c.XMLName.Local, "entry") {
			continue
		}
		link := ""
		for _, lc := range c.Children {
			if strings.EqualFold(lc.XMLName.Local, "link") {
				for _, a := range lc.Attrs {
					if strings.EqualFold(a.Name.Local, "href") {
						link = a.Value
					}
				}
			}
		}
		items = append(items, feedItem{
			Title:   childText(&c, "title"),
			Link:    link,
			Date:    childText(&c, "updated"),
			Summary: childText(&c, "summary"),
		})
		if len(items) >= xmlMaxFeedItems {
			break
		}
	}
	return items, title
}

func findChild(n *xmlNode, name string) *xmlNode {
	for i := range n.Children {
		if strings.EqualFold(n.Children[i].XMLName.Local, name) {
			return &n.Children[i]
		}
	}
	return nil
}

func childText(n *xmlNode, name string) string {
	c := findChild(n, name)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Content)
}

func feedContent(title string, items []feedItem) *domain.ExtractedContent {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	for _, item := range items {
		fmt.Fprintf(&b, "## %s\n\n", item.Title)
		if item.Date != "" {
			fmt.Fprintf(&b, "_%s_\n\n", item.Date)
		}
		if item.Summary != "" {
			fmt.Fprintf(&b, "%s\n\n", item.Summary)
		}
		if item.Link != "" {
			fmt.Fprintf(&b, "[%s](%s)\n\n", item.Link, item.Link)
		}
	}
	md := strings.TrimSpace(b.String())
	return &domain.ExtractedContent{
		Title:       title,
		Content:     md,
		TextContent: md,
		Markdown:    md,
	}
}

func summarizeXMLNode(b *strings.Builder, n *xmlNode, depth int) {
	if depth >= xmlMaxTreeDepth {
		return
	}
	indent := strings.Repeat("  ", depth)

	byTag := make(map[string][]xmlNode)
	var order []string
	for _, c := range n.Children {
		if _, seen := byTag[c.XMLName.Local]; !seen {
			order = append(order, c.XMLName.Local)
		}
		byTag[c.XMLName.Local] = append(byTag[c.XMLName.Local], c)
	}

	for _, tag := range order {
		children := byTag[tag]
		shown := children
		truncated := false
		if len(shown) > xmlMaxChildrenPerTag {
			shown = shown[:xmlMaxChildrenPerTag]
			truncated = true
		}
		for _, c := range shown {
			text := strings.TrimSpace(c.Content)
			if text != "" && len(c.Children) == 0 {
				fmt.Fprintf(b, "%s- **%s**: %s\n", indent, tag, text)
			} else {
				fmt.Fprintf(b, "%s- **%s**\n", indent, tag)
				summarizeXMLNode(b, &c, depth+1)
			}
		}
		if truncated {
			fmt.Fprintf(b, "%s- ... (%d more <%s>)\n", indent, len(children)-xmlMaxChildrenPerTag, tag)
		}
	}
}

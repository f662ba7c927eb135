package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

func TestXMLExtractor_RendersRSSItems(t *testing.T) {
	body := `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>Example Feed</title>
<item>
  <title>First Post</title>
  <link>https://example.com/first</link>
  <pubDate>Mon, 01 Jan 2024 00:00:00 GMT</pubDate>
  <description>Summary of the first post.</description>
</item>
</channel></rss>`

	e := NewXMLExtractor()
	out, err := e.Extract(domain.ExtractInput{Text: body})
	require.NoError(t, err)

	assert.Equal(t, "Example Feed", out.Title)
	assert.Contains(t, out.Markdown, "First Post")
	assert.Contains(t, out.Markdown, "Summary of the first post.")
}

func TestXMLExtractor_RendersAtomEntries(t *testing.T) {
	body := `<feed xmlns="http://www.w3.org/2005/Atom">
<title>Atom Feed</title>
<entry>
  <title>Entry One</title>
  <link href="https://example.com/entry-one"/>
  <updated>2024-01-01T00:00:00Z</updated>
  <summary>Entry summary.</summary>
</entry>
</feed>`

	e := NewXMLExtractor()
	out, err := e.Extract(domain.ExtractInput{Text: body})
	require.NoError(t, err)

	assert.Contains(t, out.Markdown, "Entry One")
	assert.Contains(t, out.Markdown, "https://example.com/entry-one")
}

func TestXMLExtractor_SummarizesGenericTree(t *testing.T) {
	body := `<catalog><book id="1"><title>Go in Action</title></book><book id="2"><title>The Go Programming Language</title></book></catalog>`

	e := NewXMLExtractor()
	out, err := e.Extract(domain.ExtractInput{Text: body})
	require.NoError(t, err)

	assert.Contains(t, out.Markdown, "book")
	assert.Contains(t, out.Markdown, "Go in Action")
}

func TestXMLExtractor_FallsBackOnMalformedXML(t *testing.T) {
	e := NewXMLExtractor()
	out, err := e.Extract(domain.ExtractInput{Text: "<unclosed>"})
	require.NoError(t, err)

	found := false
	for _, w := range out.Warnings {
		if w.Type == domain.WarningExtractionFallback {
			found = true
		}
	}
	assert.True(t, found)
}

package robots

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDoer struct {
	status int
	body   string
}

func (d staticDoer) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: d.status,
		Body:       io.NopCloser(strings.NewReader(d.body)),
	}, nil
}

func TestIsAllowed_UASpecificityWinsOverWildcard(t *testing.T) {
	body := "User-agent: SpecialBot\nDisallow: /blocked\n\nUser-agent: *\nAllow: /\n"
	p := New(Config{Client: staticDoer{status: 200, body: body}})

	allowed, err := p.IsAllowed(context.Background(), "https://example.com", "SpecialBot/2.0", "/blocked")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = p.IsAllowed(context.Background(), "https://example.com", "OtherBot/1.0", "/open")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestIsAllowed_LongestMatchWins(t *testing.T) {
	body := "User-agent: *\nDisallow: /a\nAllow: /a/b\n"
	p := New(Config{Client: staticDoer{status: 200, body: body}})

	allowed, err := p.IsAllowed(context.Background(), "https://example.com", "bot", "/a/b/c")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = p.IsAllowed(context.Background(), "https://example.com", "bot", "/a/x")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestIsAllowed_TieBreaksTowardAllow(t *testing.T) {
	body := "User-agent: *\nDisallow: /x\nAllow: /x\n"
	p := New(Config{Client: staticDoer{status: 200, body: body}})

	allowed, err := p.IsAllowed(context.Background(), "https://example.com", "bot", "/x")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestIsAllowed_NoUABlockPermitsAll(t *testing.T) {
	p := New(Config{Client: staticDoer{status: 200, body: "# empty robots file\n"}})
	allowed, err := p.IsAllowed(context.Background(), "https://example.com", "bot", "/anything")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestIsAllowed_NonOKStatusPermitsAll(t *testing.T) {
	p := New(Config{Client: staticDoer{status: 404, body: ""}})
	allowed, err := p.IsAllowed(context.Background(), "https://example.com", "bot", "/anything")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCrawlDelay_ParsedFromMatchingGroup(t *testing.T) {
	body := "User-agent: *\nCrawl-delay: 2\n"
	p := New(Config{Client: staticDoer{status: 200, body: body}})

	delay, ok, err := p.CrawlDelay(context.Background(), "https://example.com", "bot")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2e9, float64(delay))
}

func TestPatternMatches_WildcardAndEndAnchor(t *testing.T) {
	assert.True(t, patternMatches("/private*", "/private/area"))
	assert.True(t, patternMatches("/*.pdf$", "/doc.pdf"))
	assert.False(t, patternMatches("/*.pdf$", "/doc.pdf?x=1"))
}

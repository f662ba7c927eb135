package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_StripsTrackingParams(t *testing.T) {
	got := Normalize("https://Example.com/path/?utm_source=x&gclid=y&keep=1")
	assert.Equal(t, "https://example.com/path?keep=1", got)
}

func TestNormalize_SortsQueryKeys(t *testing.T) {
	got := Normalize("https://example.com/?b=2&a=1")
	assert.Equal(t, "https://example.com/?a=1&b=2", got)
}

func TestNormalize_StripsDefaultPort(t *testing.T) {
	assert.Equal(t, "https://example.com", Normalize("https://example.com:443"))
	assert.Equal(t, "http://example.com", Normalize("http://example.com:80"))
}

func TestNormalize_KeepsNonDefaultPort(t *testing.T) {
	assert.Equal(t, "https://example.com:8443", Normalize("https://example.com:8443"))
}

func TestNormalize_TrimsTrailingSlashExceptRoot(t *testing.T) {
	assert.Equal(t, "https://example.com/a/b", Normalize("https://example.com/a/b/"))
	assert.Equal(t, "https://example.com/", Normalize("https://example.com/"))
}

func TestNormalize_IsIdempotent(t *testing.T) {
	u := "https://Example.com:443/path/?utm_source=x&b=2&a=1"
	once := Normalize(u)
	twice := Normalize(once)
	assert.Equal(t, once, twice)
}

func TestNormalize_InvalidURLReturnedUnchanged(t *testing.T) {
	bad := "://not a url"
	assert.Equal(t, bad, Normalize(bad))
}

func TestIsAllowedProtocol(t *testing.T) {
	assert.True(t, IsAllowedProtocol("http://example.com"))
	assert.True(t, IsAllowedProtocol("https://example.com"))
	assert.False(t, IsAllowedProtocol("ftp://example.com"))
	assert.False(t, IsAllowedProtocol("javascript:alert(1)"))
}

func TestHostname(t *testing.T) {
	host, ok := Hostname("https://Example.COM:8443/x")
	assert.True(t, ok)
	assert.Equal(t, "example.com", host)

	_, ok = Hostname("not a url at all \x00")
	assert.False(t, ok)
}

func TestOrigin(t *testing.T) {
	origin, ok := Origin("HTTPS://Example.com/a/b?q=1")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", origin)
}

package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

func TestRegistry_GetReturnsRegisteredExtractor(t *testing.T) {
	r := NewDefaultRegistry()

	e, ok := r.Get(domain.KindHTML)
	require.True(t, ok)
	assert.Equal(t, domain.KindHTML, e.Kind())
}

func TestRegistry_GetMissingKindReturnsFalse(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get(domain.KindHTML)
	assert.False(t, ok)
}

func TestRegistry_SniffPrefersDeclaredContentType(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Equal(t, domain.KindJSON, r.Sniff("application/json; charset=utf-8", nil))
	assert.Equal(t, domain.KindHTML, r.Sniff("text/html", nil))
}

func TestRegistry_SniffFallsBackToBodySniffForUnknownType(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Equal(t, domain.KindPDF, r.Sniff("application/octet-stream", []byte("%PDF-1.4\n...")))
	assert.Equal(t, domain.KindJSON, r.Sniff("application/octet-stream", []byte(`{"a": 1}`)))
	assert.Equal(t, domain.KindHTML, r.Sniff("application/octet-stream", []byte("<!DOCTYPE html><html></html>")))
}

func TestRegistry_SniffDetectsMarkdownFrontmatter(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Equal(t, domain.KindMarkdown, r.Sniff("text/plain", []byte("---\ntitle: x\n---\nbody")))
}

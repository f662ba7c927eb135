package resourcestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

func TestParseResourceURI_ValidKinds(t *testing.T) {
	for _, kind := range []domain.ResourceKind{
		domain.ResourceKindPacket,
		domain.ResourceKindContent,
		domain.ResourceKindNormalized,
		domain.ResourceKindScreenshot,
	} {
		k, id, err := ParseResourceURI(BuildResourceURI(kind, "src-1"))
		require.NoError(t, err)
		assert.Equal(t, kind, k)
		assert.Equal(t, "src-1", id)
	}
}

func TestParseResourceURI_RejectsWrongScheme(t *testing.T) {
	_, _, err := ParseResourceURI("https://content/src-1")
	assert.ErrorIs(t, err, domain.ErrInvalidResourceURI)
}

func TestParseResourceURI_RejectsUnknownKind(t *testing.T) {
	_, _, err := ParseResourceURI("webfetch://bogus/src-1")
	assert.ErrorIs(t, err, domain.ErrInvalidResourceURI)
}

func TestParseResourceURI_RejectsUserinfo(t *testing.T) {
	_, _, err := ParseResourceURI("webfetch://user@content/src-1")
	assert.ErrorIs(t, err, domain.ErrInvalidResourceURI)
}

func TestParseResourceURI_RejectsPort(t *testing.T) {
	_, _, err := ParseResourceURI("webfetch://content:8080/src-1")
	assert.ErrorIs(t, err, domain.ErrInvalidResourceURI)
}

func TestParseResourceURI_RejectsQuery(t *testing.T) {
	_, _, err := ParseResourceURI("webfetch://content/src-1?x=1")
	assert.ErrorIs(t, err, domain.ErrInvalidResourceURI)
}

func TestParseResourceURI_RejectsFragment(t *testing.T) {
	_, _, err := ParseResourceURI("webfetch://content/src-1#frag")
	assert.ErrorIs(t, err, domain.ErrInvalidResourceURI)
}

func TestParseResourceURI_RejectsMultiplePathSegments(t *testing.T) {
	_, _, err := ParseResourceURI("webfetch://content/src-1/extra")
	assert.ErrorIs(t, err, domain.ErrInvalidResourceURI)
}

func TestParseResourceURI_RejectsEmptySourceID(t *testing.T) {
	_, _, err := ParseResourceURI("webfetch://content/")
	assert.ErrorIs(t, err, domain.ErrInvalidResourceURI)
}

func TestBuildResourceURI_RoundTrips(t *testing.T) {
	uri := BuildResourceURI(domain.ResourceKindPacket, "abc123")
	assert.Equal(t, "webfetch://packet/abc123", uri)
}

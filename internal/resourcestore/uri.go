package resourcestore

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

const scheme = "webfetch"

var validKinds = map[domain.ResourceKind]bool{
	domain.ResourceKindPacket:     true,
	domain.ResourceKindContent:    true,
	domain.ResourceKindNormalized: true,
	domain.ResourceKindScreenshot: true,
}

// ParseResourceURI parses a webfetch://{kind}/{source_id} resource URI.
// Parsing is strict: only the webfetch scheme, no userinfo, no explicit
// port, no query string, no fragment, exactly one path segment, and kind
// drawn from the closed ResourceKind set. Any violation returns
// domain.ErrInvalidResourceURI.
func ParseResourceURI(raw string) (domain.ResourceKind, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", domain.ErrInvalidResourceURI
	}
	if u.Scheme != scheme {
		return "", "", domain.ErrInvalidResourceURI
	}
	if u.User != nil {
		return "", "", domain.ErrInvalidResourceURI
	}
	if u.Port() != "" {
		return "", "", domain.ErrInvalidResourceURI
	}
	if u.RawQuery != "" || u.ForceQuery {
		return "", "", domain.ErrInvalidResourceURI
	}
	if u.Fragment != "" {
		return "", "", domain.ErrInvalidResourceURI
	}
	if u.Host == "" {
		return "", "", domain.ErrInvalidResourceURI
	}

	path := strings.Trim(u.Path, "/")
	if path == "" || strings.Contains(path, "/") {
		return "", "", domain.ErrInvalidResourceURI
	}

	kind := domain.ResourceKind(u.Host)
	if !validKinds[kind] {
		return "", "", domain.ErrInvalidResourceURI
	}

	return kind, path, nil
}

// BuildResourceURI formats a webfetch:// resource URI for kind and sourceID.
func BuildResourceURI(kind domain.ResourceKind, sourceID string) string {
	return fmt.Sprintf("%s://%s/%s", scheme, kind, sourceID)
}

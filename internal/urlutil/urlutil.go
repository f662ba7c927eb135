// Package urlutil normalizes URLs for cache keys, source ids, and SSRF
// checks: tracking-parameter stripping, query sorting, host canonicalization.
package urlutil

import (
	"net/url"
	"sort"
	"strings"
)

// trackingPrefixes are matched case-insensitively against the start of a
// query key.
var trackingPrefixes = []string{"utm_", "mc_"}

// trackingKeys are matched case-insensitively as exact query keys.
var trackingKeys = map[string]bool{
	"fbclid":   true,
	"gclid":    true,
	"_ga":      true,
	"ref":      true,
	"click_id": true,
}

func isTrackingParam(key string) bool {
	lower := strings.ToLower(key)
	if trackingKeys[lower] {
		return true
	}
	for _, p := range trackingPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Normalize strips tracking query parameters, sorts the remaining keys,
// lowercases the host, strips the scheme's default port, and trims a
// trailing slash unless the path is the root. Invalid input is returned
// unchanged, satisfying Normalize(Normalize(u)) == Normalize(u).
func Normalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	u.Host = strings.ToLower(u.Host)
	if host, port, ok := strings.Cut(u.Host, ":"); ok {
		if defaultPorts[strings.ToLower(u.Scheme)] == port {
			u.Host = host
		}
	}
	u.Scheme = strings.ToLower(u.Scheme)

	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if isTrackingParam(key) {
				q.Del(key)
			}
		}
		u.RawQuery = sortedEncode(q)
	}

	u.Fragment = ""
	u.RawFragment = ""

	return u.String()
}

// sortedEncode re-implements url.Values.Encode with deterministic key order
// guaranteed (Encode already sorts, but we keep this explicit and local so
// the sort key and value order are both pinned).
func sortedEncode(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		vs := q[k]
		sort.Strings(vs)
		for j, v := range vs {
			if i > 0 || j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// IsAllowedProtocol reports whether rawURL uses http or https.
func IsAllowedProtocol(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// Hostname returns the lowercased host of rawURL, without port.
func Hostname(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	return strings.ToLower(u.Hostname()), true
}

// Origin returns scheme://host[:port] for rawURL.
func Origin(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), true
}

package driven

// URLNormalizer strips tracking parameters, sorts queries, and canonicalizes
// host/port/path per the rules in §4.1. Invalid input is returned unchanged
// by Normalize; parsed views return ok=false instead of erroring.
type URLNormalizer interface {
	// Normalize returns the canonical form of rawURL. Idempotent:
	// Normalize(Normalize(u)) == Normalize(u).
	Normalize(rawURL string) string

	// IsAllowedProtocol reports whether rawURL uses http or https.
	IsAllowedProtocol(rawURL string) bool

	// Hostname returns the lowercased host of rawURL, or ok=false if unparsable.
	Hostname(rawURL string) (host string, ok bool)

	// Origin returns the scheme://host[:port] of rawURL, or ok=false if unparsable.
	Origin(rawURL string) (origin string, ok bool)
}

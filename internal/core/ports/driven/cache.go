package driven

import "time"

// Cache is a TTL, capacity-bounded key-value store (§2 C5), used for the
// robots cache (fetch results go through FetchCache instead). Values are
// opaque bytes; callers own (de)serialization.
type Cache interface {
	// Get returns the cached value for key, or ok=false on miss or expiry.
	Get(key string) (value []byte, ok bool)

	// Set stores value under key for ttl. ttl<=0 disables caching (no-op).
	Set(key string, value []byte, ttl time.Duration)

	// Delete removes key, if present.
	Delete(key string)

	// Len returns the number of live (non-expired) entries.
	Len() int
}

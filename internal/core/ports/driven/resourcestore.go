package driven

import "github.com/custodia-labs/web-fetch-core/internal/core/domain"

// ResourceStore is an in-process TTL cache of packets keyed by source id,
// listable in newest-first order, firing a best-effort notification on
// first insertion of a given id (§4.12, C13).
type ResourceStore interface {
	// Set stores packet under its SourceID, refreshing its TTL. Returns
	// true if this source id was not previously present.
	Set(packet domain.Packet) bool

	// Get returns the entry for sourceID, or ok=false if absent or expired.
	Get(sourceID string) (domain.ResourceEntry, bool)

	// List returns live entries ordered by retrieved_at desc, source_id asc.
	List() []domain.ResourceEntry

	// OnListChanged registers a best-effort callback invoked after Set adds
	// a new entry. Only one callback is retained; re-registering replaces it.
	OnListChanged(fn func())
}

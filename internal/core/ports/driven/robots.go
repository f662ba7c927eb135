package driven

import (
	"context"
	"time"
)

// RobotsPolicy fetches, parses, caches, and evaluates robots.txt per origin
// and user agent (§4.4).
type RobotsPolicy interface {
	// IsAllowed reports whether ua may fetch path on origin, fetching and
	// parsing robots.txt on cache miss. A non-200 response or network error
	// permits everything.
	IsAllowed(ctx context.Context, origin, ua, path string) (bool, error)

	// CrawlDelay returns the crawl-delay directive applicable to ua on
	// origin, if any was parsed from robots.txt.
	CrawlDelay(ctx context.Context, origin, ua string) (time.Duration, bool, error)

	// ApplyCrawlDelay blocks the caller until the per-(origin,ua) monotonic
	// clock allows the next request, then advances it.
	ApplyCrawlDelay(origin, ua string, delay time.Duration)
}

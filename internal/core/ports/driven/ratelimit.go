package driven

import (
	"context"
	"time"
)

// RateLimiter admits requests per host using a sliding window of recent
// timestamps plus an exponential-backoff deadline on errors (§4.3).
type RateLimiter interface {
	// Admit reports whether a request to host may proceed now.
	Admit(host string) bool

	// RecordRequest appends now to host's window after pruning entries
	// older than 60s.
	RecordRequest(host string)

	// RecordError sets host's backoff deadline. retryAfter, when non-nil,
	// is honored verbatim; otherwise the deadline follows the capped
	// exponential schedule keyed by the host's recent error count.
	RecordError(host string, retryAfter *time.Duration)

	// WaitFor sleeps for the wait host currently needs and returns ok=true.
	// It returns ok=false ("cannot proceed") without sleeping when that wait
	// exceeds maxWait, and ok=false when ctx is done during the sleep.
	WaitFor(ctx context.Context, host string, maxWait time.Duration) (waited time.Duration, ok bool)
}

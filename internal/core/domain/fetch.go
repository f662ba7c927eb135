package domain

import "time"

// FetchOptions configures a single fetch call. Zero values are replaced by
// the caller's resolved configuration defaults (spec §6) before use.
type FetchOptions struct {
	Headers          map[string]string
	MaxBytes         int64
	TimeoutMS        int
	MaxRedirects     int
	UserAgent        string
	RespectRobots    bool
	BlockPrivateIP   bool
	AllowlistDomains []string
	RawExcerpt       bool
}

// FetchResult is the raw shape returned by the HTTP fetcher, before
// normalization: {status, headers, body, final_url, content_type}.
type FetchResult struct {
	Status      int
	Headers     map[string]string
	Body        []byte
	FinalURL    string
	ContentType string
	Truncated   bool
}

// RetryPolicy bounds the fetch-with-retry wrapper.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy matches spec §4.5: maxRetries=3, backoff min(10s, 2^attempt*1s).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}
}

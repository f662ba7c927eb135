// Package services implements the driving ports (§6's tool surface) by
// composing the driven ports built in internal/{urlutil,ssrf,ratelimit,
// robots,fetchcache,fetch,extractors,injection,outline,normalize,chunker,
// compactor,resourcestore}.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driving"
	"github.com/custodia-labs/web-fetch-core/internal/fetch"
	"github.com/custodia-labs/web-fetch-core/internal/metrics"
)

var _ driving.FetchService = (*FetchService)(nil)

// FetchServiceConfig holds the driven-port collaborators a FetchService
// composes, plus the process-wide knobs (§5 "shared state") that are not
// part of any single request's FetchOptions.
type FetchServiceConfig struct {
	URLNormalizer driven.URLNormalizer
	SSRFGuard     driven.SSRFGuard
	RateLimiter   driven.RateLimiter
	Robots        driven.RobotsPolicy
	Fetcher       driven.HTTPFetcher
	Cache         driven.FetchCache // optional; nil disables the fetch cache
	Normalizer    driven.Normalizer
	Resources     driven.ResourceStore // optional; nil disables resource storage
	CacheTTL      time.Duration        // 0 disables the fetch cache even if Cache is set
	Retry         domain.RetryPolicy
	Logger        *slog.Logger
	Metrics       *metrics.Metrics // optional; nil disables instrumentation
}

// FetchService implements driving.FetchService: the per-hop SSRF/robots/
// rate-limit/fetch loop, followed by normalization and resource storage.
type FetchService struct {
	urlNorm     driven.URLNormalizer
	ssrf        driven.SSRFGuard
	rateLimiter driven.RateLimiter
	robots      driven.RobotsPolicy
	fetcher     driven.HTTPFetcher
	cache       driven.FetchCache
	normalizer  driven.Normalizer
	resources   driven.ResourceStore
	cacheTTL    time.Duration
	retry       domain.RetryPolicy
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewFetchService builds a FetchService from its collaborators.
func NewFetchService(cfg FetchServiceConfig) *FetchService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retry := cfg.Retry
	if retry.MaxRetries == 0 && retry.BaseDelay == 0 {
		retry = domain.DefaultRetryPolicy()
	}
	return &FetchService{
		urlNorm:     cfg.URLNormalizer,
		ssrf:        cfg.SSRFGuard,
		rateLimiter: cfg.RateLimiter,
		robots:      cfg.Robots,
		fetcher:     cfg.Fetcher,
		cache:       cfg.Cache,
		normalizer:  cfg.Normalizer,
		resources:   cfg.Resources,
		cacheTTL:    cfg.CacheTTL,
		retry:       retry,
		logger:      logger,
		metrics:     cfg.Metrics,
		now:         time.Now,
	}
}

// Fetch implements the `fetch(url, opts)` tool operation (§4.5, §4.9): the
// hop loop, then normalization into a Packet, then resource storage.
func (s *FetchService) Fetch(ctx context.Context, rawURL string, opts domain.FetchOptions) (*driving.FetchOutput, error) {
	start := s.now()
	opts = withOptionDefaults(opts)

	out, err := s.fetch(ctx, rawURL, opts)
	s.recordFetchOutcome(start, err)
	return out, err
}

func (s *FetchService) fetch(ctx context.Context, rawURL string, opts domain.FetchOptions) (*driving.FetchOutput, error) {
	if !s.urlNorm.IsAllowedProtocol(rawURL) {
		return nil, domain.NewFetchError(domain.CodeInvalidProtocol, "only http and https are supported")
	}

	result, err := s.fetchResult(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}

	return s.normalizeAndStore(ctx, rawURL, result, opts)
}

// recordFetchOutcome reports the terminal outcome of a Fetch call: "ok" or
// the FetchError code on failure.
func (s *FetchService) recordFetchOutcome(start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			outcome = string(fe.Code)
		} else {
			outcome = string(domain.CodeUnexpectedError)
		}
	}
	s.metrics.FetchRequestsTotal.WithLabelValues(outcome).Inc()
	s.metrics.FetchDurationSeconds.WithLabelValues(outcome).Observe(s.now().Sub(start).Seconds())
}

// fetchResult runs the cache-or-hop-loop path shared by Fetch and
// ExtractService's URL variant, returning the final (post-redirect,
// decoded) FetchResult without normalizing it.
func (s *FetchService) fetchResult(ctx context.Context, rawURL string, opts domain.FetchOptions) (*domain.FetchResult, error) {
	cacheKey := s.cacheKey(rawURL, opts)
	if s.cache != nil && s.cacheTTL > 0 && cacheKey != "" {
		if cached, ok := s.cache.Get(cacheKey); ok {
			s.logger.Debug("fetch cache hit", "url", rawURL)
			if s.metrics != nil {
				s.metrics.CacheHitsTotal.Inc()
			}
			return cached, nil
		}
		if s.metrics != nil {
			s.metrics.CacheMissesTotal.Inc()
		}
	}

	result, err := s.fetchWithRedirects(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cacheTTL > 0 && cacheKey != "" {
		s.cache.Set(cacheKey, result)
	}
	return result, nil
}

// normalizeAndStore runs the normalizer over result and, if a resource
// store is configured, saves the resulting packet.
func (s *FetchService) normalizeAndStore(ctx context.Context, originalURL string, result *domain.FetchResult, opts domain.FetchOptions) (*driving.FetchOutput, error) {
	canonicalURL := s.urlNorm.Normalize(result.FinalURL)
	packet, err := s.normalizer.Normalize(ctx, driven.NormalizeInput{
		FetchResult:  *result,
		OriginalURL:  originalURL,
		CanonicalURL: canonicalURL,
		RetrievedAt:  s.now().UTC(),
		WantExcerpt:  opts.RawExcerpt,
	})
	if err != nil {
		return nil, err
	}

	if s.resources != nil {
		s.resources.Set(*packet)
	}

	return &driving.FetchOutput{Packet: packet}, nil
}

// fetchWithRedirects implements §4.5 step 2: the manual redirect loop with
// loop detection, per-hop SSRF/robots re-checks, and crawl-delay application.
func (s *FetchService) fetchWithRedirects(ctx context.Context, startURL string, opts domain.FetchOptions) (*domain.FetchResult, error) {
	current := startURL
	visited := make(map[string]bool)

	for hop := 0; ; hop++ {
		if hop > opts.MaxRedirects {
			return nil, domain.NewFetchError(domain.CodeTooManyRedirects, fmt.Sprintf("exceeded max_redirects=%d", opts.MaxRedirects))
		}
		if visited[current] {
			return nil, domain.NewFetchError(domain.CodeRedirectLoop, "redirect loop detected at "+current)
		}
		visited[current] = true

		if err := s.guardHop(ctx, current, opts); err != nil {
			return nil, err
		}

		result, err := s.fetchOnce(ctx, current, opts)
		if err != nil {
			return nil, err
		}

		if result.Status < 300 || result.Status >= 400 {
			return result, nil
		}

		location := result.Headers["location"]
		if location == "" {
			return nil, domain.NewFetchError(domain.CodeInvalidRedirect, "redirect response carried no Location header")
		}
		next, err := resolveRedirect(current, location)
		if err != nil {
			return nil, domain.NewFetchError(domain.CodeInvalidRedirect, err.Error())
		}
		current = next
	}
}

// guardHop applies the SSRF, allowlist, and robots checks §4.5 step 1
// requires before every hop (not just the first).
func (s *FetchService) guardHop(ctx context.Context, rawURL string, opts domain.FetchOptions) error {
	host, ok := s.urlNorm.Hostname(rawURL)
	if !ok {
		return domain.NewFetchError(domain.CodeInvalidURL, "could not parse hostname from "+rawURL)
	}

	if len(opts.AllowlistDomains) > 0 && !hostAllowlisted(host, opts.AllowlistDomains) {
		return domain.NewFetchError(domain.CodeSSRFBlocked, "host not in per-request allowlist")
	}

	if opts.BlockPrivateIP {
		if err := s.ssrf.Check(ctx, host); err != nil {
			return domain.NewFetchError(domain.CodeSSRFBlocked, err.Error())
		}
	}

	if !opts.RespectRobots {
		return nil
	}
	origin, ok := s.urlNorm.Origin(rawURL)
	if !ok {
		return nil
	}
	path := requestPath(rawURL)

	allowed, err := s.robots.IsAllowed(ctx, origin, opts.UserAgent, path)
	if err != nil {
		// §4.4: network/parse failure on robots.txt permits all.
		return nil
	}
	if !allowed {
		return domain.NewFetchError(domain.CodeRobotsBlocked, "disallowed by robots.txt for "+path)
	}

	if delay, hasDelay, err := s.robots.CrawlDelay(ctx, origin, opts.UserAgent); err == nil && hasDelay {
		s.robots.ApplyCrawlDelay(origin, opts.UserAgent, delay)
	}
	return nil
}

// fetchOnce admits against the rate limiter, then issues the single-hop
// request with the retry wrapper from §4.5's "Retry wrapper" paragraph.
func (s *FetchService) fetchOnce(ctx context.Context, rawURL string, opts domain.FetchOptions) (*domain.FetchResult, error) {
	host, _ := s.urlNorm.Hostname(rawURL)
	timeout := time.Duration(opts.TimeoutMS) * time.Millisecond

	if !s.rateLimiter.Admit(host) {
		waitStart := s.now()
		_, ok := s.rateLimiter.WaitFor(ctx, host, timeout)
		if s.metrics != nil {
			s.metrics.RateLimiterBackoffSeconds.Observe(s.now().Sub(waitStart).Seconds())
		}
		if !ok {
			if s.metrics != nil {
				s.metrics.RateLimiterRejectedTotal.WithLabelValues(host).Inc()
			}
			return nil, domain.NewFetchError(domain.CodeRateLimited, "rate limited for host "+host)
		}
	}
	if s.metrics != nil {
		s.metrics.RateLimiterAdmittedTotal.WithLabelValues(host).Inc()
	}

	var lastErr error
	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		s.rateLimiter.RecordRequest(host)

		hopCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := s.fetcher.Do(hopCtx, rawURL, opts)
		cancel()

		if err == nil {
			return result, nil
		}

		var fe *domain.FetchError
		if !errors.As(err, &fe) {
			return nil, err
		}

		s.recordFetchError(host, fe, result)
		lastErr = err
		if !fe.Retryable || attempt == s.retry.MaxRetries {
			return nil, err
		}

		select {
		case <-time.After(retryBackoff(attempt, s.retry)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (s *FetchService) recordFetchError(host string, fe *domain.FetchError, result *domain.FetchResult) {
	if fe.Code == domain.HTTPStatusCode(429) && result != nil {
		if secs, ok := fetch.ParseRetryAfter(result.Headers["retry-after"]); ok {
			d := time.Duration(secs) * time.Second
			s.rateLimiter.RecordError(host, &d)
			return
		}
	}
	s.rateLimiter.RecordError(host, nil)
}

// cacheKey implements §4.5's fetch-cache key:
// (normalized_url, UA, sorted-lowercased-headers, max_bytes, max_redirects).
func (s *FetchService) cacheKey(rawURL string, opts domain.FetchOptions) string {
	normalized := s.urlNorm.Normalize(rawURL)

	headerKeys := make([]string, 0, len(opts.Headers))
	for k := range opts.Headers {
		headerKeys = append(headerKeys, strings.ToLower(k))
	}
	sort.Strings(headerKeys)
	var headerParts []string
	for _, k := range headerKeys {
		headerParts = append(headerParts, k+"="+opts.Headers[mapKeyFor(opts.Headers, k)])
	}

	raw := strings.Join([]string{
		normalized,
		opts.UserAgent,
		strings.Join(headerParts, "&"),
		strconv.FormatInt(opts.MaxBytes, 10),
		strconv.Itoa(opts.MaxRedirects),
	}, "|")

	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// mapKeyFor finds the original-case header key matching a lowercased one;
// the headers map is small and request-scoped, so a linear scan is fine.
func mapKeyFor(headers map[string]string, lower string) string {
	for k := range headers {
		if strings.ToLower(k) == lower {
			return k
		}
	}
	return lower
}

func hostAllowlisted(host string, allowlist []string) bool {
	host = strings.ToLower(host)
	for _, entry := range allowlist {
		entry = strings.ToLower(entry)
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}

func requestPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "/"
	}
	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}

func resolveRedirect(currentURL, location string) (string, error) {
	base, err := url.Parse(currentURL)
	if err != nil {
		return "", fmt.Errorf("parse current url: %w", err)
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse location header: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// retryBackoff implements §4.5's `min(10s, 2^attempt * 1s)` schedule,
// generalized to the configured RetryPolicy's base/max delay.
func retryBackoff(attempt int, policy domain.RetryPolicy) time.Duration {
	d := policy.BaseDelay << attempt
	if d > policy.MaxDelay || d <= 0 {
		d = policy.MaxDelay
	}
	return d
}

// withOptionDefaults fills zero-valued request options with the bounds
// documented in §6's configuration table. A driving adapter normally
// supplies these from config.Config before calling in, but the service
// defends against a caller that passes a zero-value FetchOptions directly.
func withOptionDefaults(opts domain.FetchOptions) domain.FetchOptions {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10 << 20
	}
	if opts.TimeoutMS <= 0 {
		opts.TimeoutMS = 30_000
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "webfetch-core/1.0 (+https://github.com/custodia-labs/web-fetch-core)"
	}
	return opts
}

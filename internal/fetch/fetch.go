// Package fetch implements the single-hop HTTP GET with decoding and
// truncation semantics (§4.5). Redirect following, SSRF/robots checks per
// hop, and rate-limit admission are orchestrated one layer up by
// FetchService; this package performs exactly one request.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
)

const defaultUserAgent = "webfetch-core/1.0 (+https://github.com/custodia-labs/web-fetch-core)"

// Doer is the minimal HTTP client surface the fetcher needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher implements driven.HTTPFetcher.
type Fetcher struct {
	client Doer
}

// New builds a Fetcher. A nil client falls back to http.DefaultClient.
func New(client Doer) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client}
}

// Do issues a single GET against url with the options' headers, standard
// Accept/Accept-Language defaults, Accept-Encoding, and configured UA. It
// streams the body bounded by MaxBytes and decodes any Content-Encoding.
func (f *Fetcher) Do(ctx context.Context, url string, opts domain.FetchOptions) (*domain.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NewFetchError(domain.CodeFetchError, fmt.Sprintf("build request: %v", err))
	}

	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.NewRetryableFetchError(domain.CodeFetchError, err.Error())
	}
	defer resp.Body.Close()

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}

	rawBody, truncated, err := readBounded(resp.Body, maxBytes)
	if err != nil {
		return nil, domain.NewRetryableFetchError(domain.CodeFetchError, err.Error())
	}

	headers := flattenHeaders(resp.Header)
	contentType := firstContentType(resp.Header.Get("Content-Type"))

	if resp.StatusCode >= 400 {
		// Retry-After (on 429) is surfaced via Headers; feeding it to the
		// rate limiter's error path is the caller's responsibility.
		code := domain.HTTPStatusCode(resp.StatusCode)
		return &domain.FetchResult{
				Status:      resp.StatusCode,
				Headers:     headers,
				Body:        rawBody,
				FinalURL:    url,
				ContentType: contentType,
				Truncated:   truncated,
			}, &domain.FetchError{
				Code:      code,
				Message:   fmt.Sprintf("http status %d", resp.StatusCode),
				Retryable: domain.IsRetryableStatus(resp.StatusCode),
			}
	}

	if truncated {
		return nil, domain.NewFetchError(domain.CodeContentTooLarge, "response body exceeded max_bytes")
	}

	codecs := parseContentEncoding(resp.Header.Get("Content-Encoding"))
	body := rawBody
	if len(codecs) > 0 {
		for _, c := range codecs {
			if !isSupportedCodec(c) {
				return nil, domain.NewFetchError(domain.CodeUnsupportedEncoding, "unsupported content-encoding: "+c)
			}
		}
		decoded, decTruncated, err := decodeBody(rawBody, codecs, maxBytes)
		if err != nil {
			return nil, domain.NewFetchError(domain.CodeDecompressionFailed, err.Error())
		}
		if decTruncated {
			return nil, domain.NewFetchError(domain.CodeContentTooLarge, "decoded body exceeded max_bytes")
		}
		body = decoded
		delete(headers, "content-encoding")
		delete(headers, "content-length")
	}

	return &domain.FetchResult{
		Status:      resp.StatusCode,
		Headers:     headers,
		Body:        body,
		FinalURL:    url,
		ContentType: contentType,
	}, nil
}

func isSupportedCodec(c string) bool {
	switch c {
	case "gzip", "x-gzip", "deflate", "x-deflate", "br":
		return true
	default:
		return false
	}
}

// readBounded reads up to maxBytes+1 bytes, reporting truncated=true if the
// body was longer than maxBytes.
func readBounded(r io.Reader, maxBytes int64) ([]byte, bool, error) {
	limited := io.LimitReader(r, maxBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, false, err
	}
	if int64(len(body)) > maxBytes {
		return body[:maxBytes], true, nil
	}
	return body, false, nil
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[strings.ToLower(k)] = v[0]
		}
	}
	return out
}

func firstContentType(raw string) string {
	ct, _, _ := strings.Cut(raw, ";")
	return strings.TrimSpace(ct)
}

// ParseRetryAfter parses a Retry-After header (seconds form only, per
// §4.5's "parse Retry-After (seconds)").
func ParseRetryAfter(header string) (int, bool) {
	if header == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

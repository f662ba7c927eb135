package features

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
	"github.com/custodia-labs/web-fetch-core/internal/core/services"
	"github.com/custodia-labs/web-fetch-core/internal/extractors"
	"github.com/custodia-labs/web-fetch-core/internal/fetch"
	"github.com/custodia-labs/web-fetch-core/internal/injection"
	"github.com/custodia-labs/web-fetch-core/internal/normalize"
	"github.com/custodia-labs/web-fetch-core/internal/outline"
	"github.com/custodia-labs/web-fetch-core/internal/ratelimit"
	"github.com/custodia-labs/web-fetch-core/internal/resourcestore"
	"github.com/custodia-labs/web-fetch-core/internal/robots"
	"github.com/custodia-labs/web-fetch-core/internal/ssrf"
	"github.com/custodia-labs/web-fetch-core/internal/urlutil"
)

// cannedResponse and fakeDoer mirror internal/core/services/fetch_test.go's
// own test double: a canned-by-URL http.Client stand-in shared by the
// fetcher and the robots policy.
type cannedResponse struct {
	status  int
	headers map[string]string
	body    []byte
}

type fakeDoer struct {
	byURL map[string]cannedResponse
	calls []string
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.calls = append(f.calls, req.URL.String())
	c, ok := f.byURL[req.URL.String()]
	if !ok {
		c = cannedResponse{status: 404}
	}
	h := http.Header{}
	for k, v := range c.headers {
		h.Set(k, v)
	}
	return &http.Response{
		StatusCode: c.status,
		Header:     h,
		Body:       io.NopCloser(bytes.NewReader(c.body)),
	}, nil
}

type fakeResolver struct {
	ips []net.IPAddr
}

func (f fakeResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	return f.ips, nil
}

func publicResolver() fakeResolver {
	return fakeResolver{ips: []net.IPAddr{{IP: net.ParseIP("93.184.216.34")}}}
}

// fetchWorld holds the state one scenario builds up and asserts against.
type fetchWorld struct {
	fetchDoer  *fakeDoer
	robotsDoer *fakeDoer
	resolver   ssrf.Resolver
	svc        *services.FetchService

	lastErr error
}

func (w *fetchWorld) buildService() {
	w.svc = services.NewFetchService(services.FetchServiceConfig{
		URLNormalizer: urlutil.Adapter{},
		SSRFGuard:     &ssrf.Guard{Resolver: w.resolver},
		RateLimiter:   ratelimit.New(ratelimit.Config{MaxRequestsPerMinute: 1000}),
		Robots:        robots.New(robots.Config{Client: w.robotsDoer}),
		Fetcher:       fetch.New(w.fetchDoer),
		Normalizer:    normalize.New(extractors.NewDefaultRegistry(), injection.New(), outline.New()),
		Resources:     resourcestore.New(resourcestore.Config{}),
		Retry:         domain.RetryPolicy{MaxRetries: 0},
	})
}

func (w *fetchWorld) baseOpts() domain.FetchOptions {
	return domain.FetchOptions{
		MaxBytes:       1 << 20,
		TimeoutMS:      2000,
		MaxRedirects:   5,
		UserAgent:      "features-test-agent",
		RespectRobots:  true,
		BlockPrivateIP: true,
	}
}

func (w *fetchWorld) aFetchServiceWithAPublicDNSResolverStubbedToAPrivateAddress() error {
	w.fetchDoer = &fakeDoer{}
	w.robotsDoer = &fakeDoer{}
	w.resolver = fakeResolver{ips: []net.IPAddr{{IP: net.ParseIP("10.0.0.5")}}}
	w.buildService()
	return nil
}

func (w *fetchWorld) aFetchServiceWhoseResponsesRedirectFiveTimesBefore(final string) error {
	hops := []string{
		"https://example.com/start",
		"https://example.com/hop1",
		"https://example.com/hop2",
		"https://example.com/hop3",
		"https://example.com/hop4",
	}
	responses := map[string]cannedResponse{}
	for i, hop := range hops {
		next := final
		if i+1 < len(hops) {
			next = hops[i+1]
		}
		responses[hop] = cannedResponse{status: 302, headers: map[string]string{"Location": next}}
	}
	responses[final] = cannedResponse{status: 200, body: []byte("<html><body>done</body></html>"), headers: map[string]string{"Content-Type": "text/html"}}

	w.fetchDoer = &fakeDoer{byURL: responses}
	w.robotsDoer = &fakeDoer{}
	w.resolver = publicResolver()
	w.buildService()
	return nil
}

func (w *fetchWorld) aFetchServiceWhoseResponseAtIsGzipEncodedPastTheByteBudget(url string) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write(bytes.Repeat([]byte("x"), 1024))
	_ = gz.Close()

	w.fetchDoer = &fakeDoer{byURL: map[string]cannedResponse{
		url: {
			status:  200,
			headers: map[string]string{"Content-Type": "text/plain", "Content-Encoding": "gzip"},
			body:    buf.Bytes(),
		},
	}}
	w.robotsDoer = &fakeDoer{}
	w.resolver = publicResolver()
	w.buildService()
	return nil
}

func (w *fetchWorld) iFetchWithDefaultOptions(url string) error {
	opts := w.baseOpts()
	_, err := w.svc.Fetch(context.Background(), url, opts)
	w.lastErr = err
	return nil
}

func (w *fetchWorld) iFetchWithMaxRedirects(url string, maxRedirects int) error {
	opts := w.baseOpts()
	opts.MaxRedirects = maxRedirects
	_, err := w.svc.Fetch(context.Background(), url, opts)
	w.lastErr = err
	return nil
}

func (w *fetchWorld) iFetchWithMaxBytes(url string, maxBytes int) error {
	opts := w.baseOpts()
	opts.MaxBytes = int64(maxBytes)
	_, err := w.svc.Fetch(context.Background(), url, opts)
	w.lastErr = err
	return nil
}

func (w *fetchWorld) theFetchFailsWithErrorCode(code string) error {
	if w.lastErr == nil {
		return fmt.Errorf("expected a fetch error with code %q, got success", code)
	}
	fe, ok := w.lastErr.(*domain.FetchError)
	if !ok {
		return fmt.Errorf("expected a *domain.FetchError, got %T: %v", w.lastErr, w.lastErr)
	}
	if string(fe.Code) != code {
		return fmt.Errorf("expected error code %q, got %q (%s)", code, fe.Code, fe.Message)
	}
	return nil
}

func (w *fetchWorld) noUpstreamRequestWasMade() error {
	if len(w.fetchDoer.calls) != 0 {
		return fmt.Errorf("expected no upstream calls, got %v", w.fetchDoer.calls)
	}
	return nil
}

// aSiteWhoseRobotsTxtDisallows and iFetchAsUserAgent cover the
// user-agent-specificity scenario, reusing fetchWorld's lastErr/
// theFetchFailsWithErrorCode so the step text doesn't collide with
// fetch.feature's identically worded assertion.
func (w *fetchWorld) aSiteWhoseRobotsTxtDisallows(path, ua string) error {
	w.robotsDoer = &fakeDoer{byURL: map[string]cannedResponse{
		"https://example.com/robots.txt": {
			status: 200,
			body:   []byte(fmt.Sprintf("User-agent: %s\nDisallow: %s\n\nUser-agent: *\nAllow: /\n", ua, path)),
		},
	}}
	w.fetchDoer = &fakeDoer{byURL: map[string]cannedResponse{
		"https://example.com" + path: {status: 200, headers: map[string]string{"Content-Type": "text/html"}, body: []byte("<html><body>x</body></html>")},
		"https://example.com/open":    {status: 200, headers: map[string]string{"Content-Type": "text/html"}, body: []byte("<html><body>open</body></html>")},
	}}
	w.svc = services.NewFetchService(services.FetchServiceConfig{
		URLNormalizer: urlutil.Adapter{},
		SSRFGuard:     &ssrf.Guard{Resolver: publicResolver()},
		RateLimiter:   ratelimit.New(ratelimit.Config{MaxRequestsPerMinute: 1000}),
		Robots:        robots.New(robots.Config{Client: w.robotsDoer}),
		Fetcher:       fetch.New(w.fetchDoer),
		Normalizer:    normalize.New(extractors.NewDefaultRegistry(), injection.New(), outline.New()),
		Resources:     resourcestore.New(resourcestore.Config{}),
	})
	return nil
}

func (w *fetchWorld) iFetchAsUserAgent(url, ua string) error {
	opts := domain.FetchOptions{
		MaxBytes: 1 << 20, TimeoutMS: 2000, MaxRedirects: 5,
		UserAgent: ua, RespectRobots: true, BlockPrivateIP: true,
	}
	_, err := w.svc.Fetch(context.Background(), url, opts)
	w.lastErr = err
	return nil
}

func (w *fetchWorld) theFetchSucceeds() error {
	if w.lastErr != nil {
		return fmt.Errorf("expected success, got error: %v", w.lastErr)
	}
	return nil
}

// outlineWorld covers the heading-in-code-fence scenario.
type outlineWorld struct {
	markdown string
	entries  []domain.OutlineEntry
}

func (w *outlineWorld) theMarkdownDocument(doc *godog.DocString) error {
	w.markdown = doc.Content
	return nil
}

func (w *outlineWorld) iGenerateTheOutlineForThatDocument() error {
	w.entries = outline.New().Generate(w.markdown)
	return nil
}

func (w *outlineWorld) theOutlineIsExactly(table *godog.Table) error {
	rows := table.Rows[1:]
	if len(rows) != len(w.entries) {
		return fmt.Errorf("expected %d outline entries, got %d (%+v)", len(rows), len(w.entries), w.entries)
	}
	for i, row := range rows {
		level := row.Cells[0].Value
		text := row.Cells[1].Value
		got := w.entries[i]
		if fmt.Sprint(got.Level) != level || got.Text != text {
			return fmt.Errorf("entry %d: expected {%s, %s}, got {%d, %s}", i, level, text, got.Level, got.Text)
		}
	}
	return nil
}

// injectionWorld covers the prompt-injection detection scenario, exercised
// through the full normalizer so the warning surfaces on the packet.
type injectionWorld struct {
	content  string
	packet   *domain.Packet
	warnings []domain.Warning
}

func (w *injectionWorld) aPacketWhoseContentIs(content string) error {
	w.content = content
	return nil
}

func (w *injectionWorld) iRunInjectionDetectionOnThatPacketsContent() error {
	n := normalize.New(extractors.NewDefaultRegistry(), injection.New(), outline.New())
	packet, err := n.Normalize(context.Background(), driven.NormalizeInput{
		FetchResult: domain.FetchResult{
			Body:        []byte(w.content),
			ContentType: "text/plain",
		},
		OriginalURL:  "https://example.com/doc",
		CanonicalURL: "https://example.com/doc",
		RetrievedAt:  time.Now(),
	})
	if err != nil {
		return err
	}
	w.packet = packet
	w.warnings = packet.Warnings
	return nil
}

func (w *injectionWorld) atLeastOneUnsafeInstructionIsDetectedWithAReasonMentioning(substr string) error {
	for _, u := range w.packet.UnsafeInstructions {
		if strings.Contains(u.Reason, substr) {
			return nil
		}
	}
	return fmt.Errorf("no unsafe instruction with reason containing %q, got %+v", substr, w.packet.UnsafeInstructions)
}

func (w *injectionWorld) aWarningOfTypeIsPresent(warningType string) error {
	for _, warning := range w.warnings {
		if string(warning.Type) == warningType {
			return nil
		}
	}
	return fmt.Errorf("no warning of type %q, got %+v", warningType, w.warnings)
}

// Package robots fetches, parses, caches, and evaluates robots.txt per
// origin and user agent (§4.4).
package robots

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
)

const (
	cacheTTL       = 15 * time.Minute
	fetchTimeout   = 5 * time.Second
	maxRobotsBytes = 512 * 1024
)

// rule is one Allow/Disallow pattern with its originating directive.
type rule struct {
	pattern string
	allow   bool
}

// group is one User-agent block.
type group struct {
	agents     []string
	rules      []rule
	crawlDelay time.Duration
	hasDelay   bool
}

func (g group) matches(ua string) bool {
	for _, a := range g.agents {
		if a == "*" {
			return true
		}
		if strings.EqualFold(a, ua) {
			return true
		}
	}
	return false
}

// parsed is the outcome of parsing one robots.txt body.
type parsed struct {
	groups    []group
	fetchedAt time.Time
}

// wireRule/wireGroup/wireParsed are parsed's JSON-serializable shadow, used
// only when a shared driven.Cache is configured so a parsed robots.txt can
// cross the byte-oriented cache boundary.
type wireRule struct {
	Pattern string `json:"pattern"`
	Allow   bool   `json:"allow"`
}

type wireGroup struct {
	Agents     []string `json:"agents"`
	Rules      []wireRule `json:"rules"`
	CrawlDelay time.Duration `json:"crawl_delay"`
	HasDelay   bool `json:"has_delay"`
}

type wireParsed struct {
	Groups    []wireGroup `json:"groups"`
	FetchedAt time.Time   `json:"fetched_at"`
}

func (p parsed) toWire() wireParsed {
	w := wireParsed{FetchedAt: p.fetchedAt, Groups: make([]wireGroup, len(p.groups))}
	for i, g := range p.groups {
		wg := wireGroup{Agents: g.agents, CrawlDelay: g.crawlDelay, HasDelay: g.hasDelay, Rules: make([]wireRule, len(g.rules))}
		for j, r := range g.rules {
			wg.Rules[j] = wireRule{Pattern: r.pattern, Allow: r.allow}
		}
		w.Groups[i] = wg
	}
	return w
}

func (w wireParsed) toParsed() parsed {
	p := parsed{fetchedAt: w.FetchedAt, groups: make([]group, len(w.Groups))}
	for i, wg := range w.Groups {
		g := group{agents: wg.Agents, crawlDelay: wg.CrawlDelay, hasDelay: wg.HasDelay, rules: make([]rule, len(wg.Rules))}
		for j, wr := range wg.Rules {
			g.rules[j] = rule{pattern: wr.Pattern, allow: wr.Allow}
		}
		p.groups[i] = g
	}
	return p
}

// Doer is the minimal HTTP client surface robots.txt fetching needs,
// satisfied by *http.Client or any SSRF/rate-limit-aware wrapper.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Policy implements driven.RobotsPolicy.
type Policy struct {
	client Doer
	logger *slog.Logger

	// shared is an optional byte-oriented cache (driven.Cache) that lets
	// parsed robots.txt groups be shared across instances; when nil, the
	// in-process mu/cache map below is used instead.
	shared   driven.Cache
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry // key: origin + "|" + normalized UA

	clockMu sync.Mutex
	clocks  map[string]time.Time // key: origin + "|" + ua, value: earliest-next timestamp
}

type cacheEntry struct {
	result    parsed
	expiresAt time.Time
}

// Config configures a Policy.
type Config struct {
	Client Doer
	Logger *slog.Logger

	// Cache, when set, backs the robots.txt group cache with a shared
	// driven.Cache (e.g. internal/cache.Store or the Redis adapter) instead
	// of Policy's private in-process map, so multiple instances agree on
	// an origin's robots.txt without each refetching it independently.
	Cache    driven.Cache
	CacheTTL time.Duration // defaults to 15 minutes when Cache is set
}

// New builds a Policy. A nil Client falls back to http.DefaultClient.
func New(cfg Config) *Policy {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = cacheTTL
	}
	return &Policy{
		client:   client,
		logger:   logger,
		shared:   cfg.Cache,
		cacheTTL: ttl,
		cache:    make(map[string]cacheEntry),
		clocks:   make(map[string]time.Time),
	}
}

func normalizedUA(ua string) string {
	if idx := strings.IndexByte(ua, '/'); idx >= 0 {
		return ua[:idx]
	}
	return ua
}

func (p *Policy) fetch(ctx context.Context, origin string) (parsed, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return parsed{}, nil // malformed origin behaves like fetch failure: permit all
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("robots fetch failed, permitting all", "origin", origin, "error", err)
		return parsed{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parsed{}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return parsed{}, nil
	}
	return parseRobotsTxt(string(body)), nil
}

func (p *Policy) resolve(ctx context.Context, origin, ua string) (parsed, error) {
	key := origin + "|" + normalizedUA(ua)

	if p.shared != nil {
		return p.resolveShared(ctx, origin, key)
	}

	p.mu.RLock()
	entry, ok := p.cache[key]
	p.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.result, nil
	}

	result, err := p.fetch(ctx, origin)
	if err != nil {
		return parsed{}, err
	}

	p.mu.Lock()
	p.cache[key] = cacheEntry{result: result, expiresAt: time.Now().Add(cacheTTL)}
	p.mu.Unlock()

	return result, nil
}

// resolveShared is resolve's variant when a driven.Cache was configured:
// the parsed robots.txt crosses the cache boundary JSON-encoded instead of
// living in Policy's private map.
func (p *Policy) resolveShared(ctx context.Context, origin, key string) (parsed, error) {
	if raw, ok := p.shared.Get("robots:" + key); ok {
		var w wireParsed
		if err := json.Unmarshal(raw, &w); err == nil {
			return w.toParsed(), nil
		}
		p.logger.Debug("robots cache entry corrupt, refetching", "key", key)
	}

	result, err := p.fetch(ctx, origin)
	if err != nil {
		return parsed{}, err
	}

	if raw, err := json.Marshal(result.toWire()); err == nil {
		p.shared.Set("robots:"+key, raw, p.cacheTTL)
	}
	return result, nil
}

// IsAllowed reports whether ua may fetch path on origin.
func (p *Policy) IsAllowed(ctx context.Context, origin, ua, path string) (bool, error) {
	result, err := p.resolve(ctx, origin, ua)
	if err != nil {
		return false, err
	}
	return evaluate(result, ua, path), nil
}

// CrawlDelay returns the crawl-delay directive applicable to ua on origin.
func (p *Policy) CrawlDelay(ctx context.Context, origin, ua string) (time.Duration, bool, error) {
	result, err := p.resolve(ctx, origin, ua)
	if err != nil {
		return 0, false, err
	}
	g, ok := bestGroup(result, ua)
	if !ok || !g.hasDelay {
		return 0, false, nil
	}
	return g.crawlDelay, true, nil
}

// ApplyCrawlDelay blocks until the per-(origin,ua) monotonic clock allows
// the next request, then advances it by delay.
func (p *Policy) ApplyCrawlDelay(origin, ua string, delay time.Duration) {
	if delay <= 0 {
		return
	}
	key := origin + "|" + ua

	p.clockMu.Lock()
	next, ok := p.clocks[key]
	now := time.Now()
	var wait time.Duration
	if ok && next.After(now) {
		wait = next.Sub(now)
	}
	base := now
	if wait > 0 {
		base = next
	}
	p.clocks[key] = base.Add(delay)
	p.clockMu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
}

func bestGroup(result parsed, ua string) (group, bool) {
	normalized := normalizedUA(ua)
	var best *group
	var bestSpecificity int
	for i := range result.groups {
		g := result.groups[i]
		spec := groupSpecificity(g, ua, normalized)
		if spec < 0 {
			continue
		}
		if best == nil || spec > bestSpecificity {
			gCopy := g
			best = &gCopy
			bestSpecificity = spec
		}
	}
	if best == nil {
		return group{}, false
	}
	return *best, true
}

// groupSpecificity returns -1 if the group does not apply, else a rank:
// 2 for an exact UA token/full-string match, 1 for "*", matching §4.4's
// "matches our normalized token, our full UA, or *" rule.
func groupSpecificity(g group, ua, normalized string) int {
	best := -1
	for _, a := range g.agents {
		switch {
		case a == "*":
			if best < 1 {
				best = 1
			}
		case strings.EqualFold(a, ua), strings.EqualFold(a, normalized):
			if best < 2 {
				best = 2
			}
		}
	}
	return best
}

func evaluate(result parsed, ua, path string) bool {
	g, ok := bestGroup(result, ua)
	if !ok {
		return true // no UA block exists at all: default to permit
	}

	bestLen := -1
	allowWins := true
	for _, r := range g.rules {
		if !patternMatches(r.pattern, path) {
			continue
		}
		l := len(r.pattern)
		if l > bestLen || (l == bestLen && r.allow && !allowWins) {
			bestLen = l
			allowWins = r.allow
		}
	}
	if bestLen < 0 {
		return true
	}
	return allowWins
}

// patternMatches implements robots.txt path matching with "*" wildcard and
// "$" end anchor.
func patternMatches(pattern, path string) bool {
	if pattern == "" {
		return false // empty Disallow means "allow everything"; handled by caller skipping it
	}
	anchored := strings.HasSuffix(pattern, "$")
	pattern = strings.TrimSuffix(pattern, "$")

	segments := strings.Split(pattern, "*")
	rest := path
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		idx := strings.Index(rest, seg)
		if idx < 0 {
			return false
		}
		if i == 0 && idx != 0 {
			return false
		}
		rest = rest[idx+len(seg):]
	}
	if anchored {
		return rest == ""
	}
	return true
}

func parseRobotsTxt(body string) parsed {
	var result parsed
	var current *group

	flush := func() {
		if current != nil && len(current.agents) > 0 {
			result.groups = append(result.groups, *current)
		}
		current = nil
	}

	lines := strings.Split(body, "\n")
	sawRuleSinceAgent := false
	for _, raw := range lines {
		line := raw
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			if current != nil && sawRuleSinceAgent {
				flush()
			}
			if current == nil {
				current = &group{}
			}
			current.agents = append(current.agents, value)
		case "allow":
			sawRuleSinceAgent = true
			if current != nil && value != "" {
				current.rules = append(current.rules, rule{pattern: value, allow: true})
			}
		case "disallow":
			sawRuleSinceAgent = true
			if current != nil && value != "" {
				current.rules = append(current.rules, rule{pattern: value, allow: false})
			}
		case "crawl-delay":
			sawRuleSinceAgent = true
			if current != nil {
				if secs, err := time.ParseDuration(value + "s"); err == nil {
					current.crawlDelay = secs
					current.hasDelay = true
				}
			}
		}
	}
	flush()
	return result
}

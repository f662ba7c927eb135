package commands

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/web-fetch-core/internal/adapters/driven/redis"
	"github.com/custodia-labs/web-fetch-core/internal/cache"
	"github.com/custodia-labs/web-fetch-core/internal/chunker"
	"github.com/custodia-labs/web-fetch-core/internal/compactor"
	"github.com/custodia-labs/web-fetch-core/internal/config"
	"github.com/custodia-labs/web-fetch-core/internal/core/domain"
	"github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"
	"github.com/custodia-labs/web-fetch-core/internal/core/services"
	"github.com/custodia-labs/web-fetch-core/internal/extractors"
	"github.com/custodia-labs/web-fetch-core/internal/fetch"
	"github.com/custodia-labs/web-fetch-core/internal/fetchcache"
	"github.com/custodia-labs/web-fetch-core/internal/injection"
	"github.com/custodia-labs/web-fetch-core/internal/metrics"
	"github.com/custodia-labs/web-fetch-core/internal/normalize"
	"github.com/custodia-labs/web-fetch-core/internal/outline"
	"github.com/custodia-labs/web-fetch-core/internal/ratelimit"
	"github.com/custodia-labs/web-fetch-core/internal/resourcestore"
	"github.com/custodia-labs/web-fetch-core/internal/robots"
	"github.com/custodia-labs/web-fetch-core/internal/ssrf"
	"github.com/custodia-labs/web-fetch-core/internal/urlutil"
)

// pipeline bundles every driving service the CLI needs, plus the Prometheus
// registry they report into so `serve` can expose /metrics.
type pipeline struct {
	cfg      config.Config
	registry *prometheus.Registry

	fetch    *services.FetchService
	extract  *services.ExtractService
	chunk    *services.ChunkService
	compact  *services.CompactService
	resource *services.ResourceService
}

// buildPipeline wires the driven adapters built across internal/{urlutil,
// ssrf,ratelimit,robots,fetch,fetchcache,extractors,injection,outline,
// normalize,chunker,compactor,resourcestore} into the five driving
// services, exactly the dependency graph cmd/sercha-core/main.go assembles
// for its own services, reduced to this module's narrower port set.
func buildPipeline(logger *slog.Logger) *pipeline {
	cfg := config.Load()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	registry := normalize.New(extractors.NewDefaultRegistry(), injection.New(), outline.New())
	resources := resourcestore.New(resourcestore.Config{TTL: cfg.CacheTTL})

	fetchSvc := services.NewFetchService(services.FetchServiceConfig{
		URLNormalizer: urlutil.Adapter{},
		SSRFGuard:     ssrf.New(cfg.AllowlistDomains),
		RateLimiter: ratelimit.New(ratelimit.Config{
			MaxRequestsPerMinute: cfg.RateLimitPerHost,
			Logger:               logger,
		}),
		Robots: robots.New(robots.Config{
			Client: http.DefaultClient,
			Logger: logger,
			Cache:  robotsCache(logger),
		}),
		Fetcher:    fetch.New(http.DefaultClient),
		Cache:      fetchcache.New(fetchcache.Config{TTL: cfg.CacheTTL}),
		Normalizer: registry,
		Resources:  resources,
		CacheTTL:   cfg.CacheTTL,
		Retry:      domain.DefaultRetryPolicy(),
		Logger:     logger,
		Metrics:    m,
	})

	return &pipeline{
		cfg:      cfg,
		registry: reg,
		fetch:    fetchSvc,
		extract: services.NewExtractService(services.ExtractServiceConfig{
			Fetch:      fetchSvc,
			Normalizer: registry,
			Resources:  resources,
		}),
		chunk:    services.NewChunkService(chunker.New()),
		compact:  services.NewCompactService(compactor.New()),
		resource: services.NewResourceService(resources),
	}
}

// robotsCache picks the robots.txt group cache backend: Redis when REDIS_URL
// is set, so multiple instances agree on an origin's robots.txt, otherwise
// the in-process cache.Store (single-instance; spec §6 has no
// configuration entry for this, so it is read directly rather than through
// config.Load).
func robotsCache(logger *slog.Logger) driven.Cache {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		return cache.New(cache.Config{})
	}
	opts, err := goredis.ParseURL(url)
	if err != nil {
		logger.Warn("invalid REDIS_URL, falling back to in-process cache", "error", err)
		return cache.New(cache.Config{})
	}
	return redis.NewCache(goredis.NewClient(opts))
}

// defaultFetchOptions materializes the spec §6 defaults a CLI invocation
// does not override via flags.
func defaultFetchOptions(cfg config.Config) domain.FetchOptions {
	return domain.FetchOptions{
		MaxBytes:         cfg.MaxBytes,
		TimeoutMS:        cfg.TimeoutMS,
		MaxRedirects:     cfg.MaxRedirects,
		UserAgent:        cfg.UserAgent,
		RespectRobots:    cfg.RespectRobots,
		BlockPrivateIP:   cfg.BlockPrivateIP,
		AllowlistDomains: cfg.AllowlistDomains,
	}
}

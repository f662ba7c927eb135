// Package config loads process configuration from environment variables.
// Loading from the environment is explicitly out of scope for the core
// packages (spec §1 lists "configuration loading from environment" as an
// external collaborator), so this package is a thin, untested convenience:
// every core package still takes an explicit option struct and never reads
// the environment itself.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the recognized options, defaults, and bounds from spec §6.
type Config struct {
	MaxBytes         int64
	TimeoutMS        int
	MaxRedirects     int
	RateLimitPerHost int
	BlockPrivateIP   bool
	AllowlistDomains []string
	RespectRobots    bool
	UserAgent        string
	DefaultMaxTokens int
	ChunkMarginRatio float64
	CacheTTL         time.Duration
	PDFEnabled       bool

	HTTPHost string
	HTTPPort int
}

// Load builds a Config from environment variables, applying spec §6's
// defaults and clamping every bounded field to its documented range.
func Load() Config {
	cfg := Config{
		MaxBytes:         getEnvInt64("MAX_BYTES", 10<<20),
		TimeoutMS:        getEnvInt("TIMEOUT_MS", 30_000),
		MaxRedirects:     getEnvInt("MAX_REDIRECTS", 5),
		RateLimitPerHost: getEnvInt("RATE_LIMIT_PER_HOST", 60),
		BlockPrivateIP:   getEnvBool("BLOCK_PRIVATE_IP", true),
		AllowlistDomains: getEnvList("ALLOWLIST_DOMAINS", nil),
		RespectRobots:    getEnvBool("RESPECT_ROBOTS", true),
		UserAgent:        getEnv("USER_AGENT", "webfetch-core/1.0 (+https://github.com/custodia-labs/web-fetch-core)"),
		DefaultMaxTokens: getEnvInt("DEFAULT_MAX_TOKENS", 4000),
		ChunkMarginRatio: getEnvFloat("CHUNK_MARGIN_RATIO", 0.10),
		CacheTTL:         time.Duration(getEnvInt("CACHE_TTL_S", 300)) * time.Second,
		PDFEnabled:       getEnvBool("PDF_ENABLED", true),
		HTTPHost:         getEnv("HTTP_HOST", "0.0.0.0"),
		HTTPPort:         getEnvInt("HTTP_PORT", 8080),
	}

	cfg.MaxBytes = clampInt64(cfg.MaxBytes, 1<<10, 100<<20)
	cfg.TimeoutMS = clampInt(cfg.TimeoutMS, 1000, 5*60*1000)
	cfg.MaxRedirects = clampInt(cfg.MaxRedirects, 0, 20)
	cfg.RateLimitPerHost = clampInt(cfg.RateLimitPerHost, 1, 1000)
	cfg.DefaultMaxTokens = maxInt(cfg.DefaultMaxTokens, 100)
	cfg.ChunkMarginRatio = clampFloat(cfg.ChunkMarginRatio, 0, 0.5)

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseInt(value, 10, 64); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseFloat(value, 64); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}

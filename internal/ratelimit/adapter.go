package ratelimit

import "github.com/custodia-labs/web-fetch-core/internal/core/ports/driven"

var _ driven.RateLimiter = (*Limiter)(nil)

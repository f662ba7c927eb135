// Package ratelimit implements a per-host sliding-window admission limiter
// with exponential backoff on errors (§4.3). It deliberately does not use
// golang.org/x/time/rate: that package models a token bucket that refills
// continuously, while §4.3 specifies an exact sliding window of recent
// request timestamps plus a separate backoff_until deadline driven by the
// count of recent errors — two pieces of state a token bucket cannot
// represent without reintroducing the same bookkeeping by hand.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	windowDuration  = 60 * time.Second
	maxBackoff      = 5 * time.Minute
	maxErrorBackoff = 6 // 2^6 * 1s caps the exponent before maxBackoff clamps it
)

type hostState struct {
	mu           sync.Mutex
	timestamps   []time.Time
	backoffUntil time.Time
	recentErrors int
}

// Config configures a Limiter.
type Config struct {
	MaxRequestsPerMinute int
	Logger               *slog.Logger
	Now                  func() time.Time // overridable for tests
}

// Limiter is a process-wide, host-sharded rate limiter.
type Limiter struct {
	maxPerMinute int
	logger       *slog.Logger
	now          func() time.Time

	mu    sync.RWMutex
	hosts map[string]*hostState
}

// New builds a Limiter admitting up to maxRequestsPerMinute requests per
// host in any trailing 60s window.
func New(cfg Config) *Limiter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	maxPerMinute := cfg.MaxRequestsPerMinute
	if maxPerMinute <= 0 {
		maxPerMinute = 60
	}
	return &Limiter{
		maxPerMinute: maxPerMinute,
		logger:       logger,
		now:          now,
		hosts:        make(map[string]*hostState),
	}
}

func (l *Limiter) stateFor(host string) *hostState {
	l.mu.RLock()
	st, ok := l.hosts[host]
	l.mu.RUnlock()
	if ok {
		return st
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok := l.hosts[host]; ok {
		return st
	}
	st = &hostState{}
	l.hosts[host] = st
	return st
}

func (st *hostState) prune(now time.Time) {
	cutoff := now.Add(-windowDuration)
	i := 0
	for i < len(st.timestamps) && st.timestamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		st.timestamps = st.timestamps[i:]
	}
}

// Admit reports whether a request to host may proceed now: the sliding
// window has room and the backoff deadline has passed.
func (l *Limiter) Admit(host string) bool {
	st := l.stateFor(host)
	now := l.now()

	st.mu.Lock()
	defer st.mu.Unlock()
	st.prune(now)
	return len(st.timestamps) < l.maxPerMinute && !now.Before(st.backoffUntil)
}

// RecordRequest appends now to host's window, after pruning stale entries.
func (l *Limiter) RecordRequest(host string) {
	st := l.stateFor(host)
	now := l.now()

	st.mu.Lock()
	defer st.mu.Unlock()
	st.prune(now)
	st.timestamps = append(st.timestamps, now)
}

// RecordError advances host's backoff deadline. When retryAfter is
// supplied, it is honored verbatim; otherwise the deadline follows
// min(5min, 2^min(recentErrors,6) * 1s).
func (l *Limiter) RecordError(host string, retryAfter *time.Duration) {
	st := l.stateFor(host)
	now := l.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	st.recentErrors++
	var wait time.Duration
	if retryAfter != nil {
		wait = *retryAfter
	} else {
		exp := st.recentErrors
		if exp > maxErrorBackoff {
			exp = maxErrorBackoff
		}
		wait = time.Duration(1<<uint(exp)) * time.Second
		if wait > maxBackoff {
			wait = maxBackoff
		}
	}
	st.backoffUntil = now.Add(wait)
	l.logger.Debug("rate limiter backoff set", "host", host, "wait", wait, "recent_errors", st.recentErrors)
}

// WaitFor sleeps until host's window or backoff wait has passed. It returns
// ok=false ("cannot proceed") without sleeping if the required wait exceeds
// maxWait, and ok=false if ctx is done while sleeping.
func (l *Limiter) WaitFor(ctx context.Context, host string, maxWait time.Duration) (time.Duration, bool) {
	st := l.stateFor(host)
	now := l.now()

	st.mu.Lock()
	st.prune(now)
	var wait time.Duration
	if len(st.timestamps) >= l.maxPerMinute && len(st.timestamps) > 0 {
		oldest := st.timestamps[0]
		wait = oldest.Add(windowDuration).Sub(now)
	}
	if now.Before(st.backoffUntil) {
		if d := st.backoffUntil.Sub(now); d > wait {
			wait = d
		}
	}
	st.mu.Unlock()

	if wait <= 0 {
		return 0, true
	}
	if wait > maxWait {
		return wait, false
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return wait, true
	case <-ctx.Done():
		return wait, false
	}
}

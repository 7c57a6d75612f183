package auth

import (
	"sync"
	"time"
)

// Rate-limit defaults for the login endpoint.
const (
	DefaultLoginLimit      = 5
	DefaultLoginWindow     = time.Minute
	DefaultLoginBlock      = 15 * time.Minute
	DefaultLimiterCapacity = 10_000
)

// RateDecision is the outcome of a single admission check.
type RateDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type rateEntry struct {
	windowStart  time.Time
	count        int
	blockedUntil time.Time
}

// RateLimiter is a fixed-window counter per key with overflow escalating to
// an explicit block interval. The table is owned by one process and guarded
// by a mutex; counters are NOT shared across instances. A multi-instance
// deployment that needs globally consistent limiting must back this with a
// shared counter store, which is out of scope here.
//
// Misconfigured limits (non-positive limit or window) degrade to always
// allow rather than failing closed, so a bad config cannot lock out all
// traffic.
type RateLimiter struct {
	mu       sync.Mutex
	entries  map[string]*rateEntry
	limit    int
	window   time.Duration
	block    time.Duration
	capacity int
	clock    Clock
}

// RateLimiterOption customizes a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithBlockDuration sets the explicit block applied once the attempt count
// exceeds the limit. Zero means "remainder of the current window".
func WithBlockDuration(d time.Duration) RateLimiterOption {
	return func(l *RateLimiter) {
		l.block = d
	}
}

// WithLimiterCapacity bounds the table size before expired entries are swept.
func WithLimiterCapacity(n int) RateLimiterOption {
	return func(l *RateLimiter) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithLimiterClock injects a clock for tests.
func WithLimiterClock(clock Clock) RateLimiterOption {
	return func(l *RateLimiter) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// NewRateLimiter creates a limiter allowing `limit` attempts per `window`
// for each key.
func NewRateLimiter(limit int, window time.Duration, opts ...RateLimiterOption) *RateLimiter {
	l := &RateLimiter{
		entries:  make(map[string]*rateEntry),
		limit:    limit,
		window:   window,
		block:    DefaultLoginBlock,
		capacity: DefaultLimiterCapacity,
		clock:    systemClock{},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoginRateKey builds the canonical limiter key for a login attempt.
func LoginRateKey(sourceAddress, username string) string {
	return sourceAddress + "|" + NormalizeUsername(username)
}

// Attempt records one attempt for key and reports whether it is admitted.
// A blocked key stays denied for the full block duration even if the
// underlying window would have reset; window starts never regress.
func (l *RateLimiter) Attempt(key string) RateDecision {
	if l.limit <= 0 || l.window <= 0 {
		return RateDecision{Allowed: true, Remaining: -1}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	entry := l.entries[key]

	if entry != nil && entry.blockedUntil.After(now) {
		return RateDecision{RetryAfter: entry.blockedUntil.Sub(now)}
	}

	if entry == nil || now.Sub(entry.windowStart) >= l.window {
		l.sweep(now)
		l.entries[key] = &rateEntry{windowStart: now, count: 1}
		return RateDecision{Allowed: true, Remaining: l.limit - 1}
	}

	entry.count++
	if entry.count > l.limit {
		block := l.block
		if block <= 0 {
			block = l.window - now.Sub(entry.windowStart)
		}
		entry.blockedUntil = now.Add(block)
		return RateDecision{RetryAfter: block}
	}

	return RateDecision{Allowed: true, Remaining: l.limit - entry.count}
}

// Reset forgets a key, typically after a successful login.
func (l *RateLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// Size returns the number of tracked keys.
func (l *RateLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// sweep drops entries whose window and block have both expired. Called with
// the mutex held, and only once the table outgrows its capacity bound.
func (l *RateLimiter) sweep(now time.Time) {
	if len(l.entries) <= l.capacity {
		return
	}

	for key, entry := range l.entries {
		if now.Sub(entry.windowStart) >= l.window && !entry.blockedUntil.After(now) {
			delete(l.entries, key)
		}
	}
}

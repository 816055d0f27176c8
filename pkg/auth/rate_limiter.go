package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter decides whether the caller identified by key may proceed
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// KeyedLimiter is an in-process token bucket per key. The rate can be
// changed at runtime; existing buckets pick up the new rate.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyedEntry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

type keyedEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter allows perSecond events per key with the given burst.
// A non-positive perSecond disables limiting.
func NewKeyedLimiter(perSecond float64, burst int) *KeyedLimiter {
	l := &KeyedLimiter{
		limiters: make(map[string]*keyedEntry),
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
	l.SetLimit(perSecond, burst)
	return l
}

// SetLimit changes the rate for every key
func (l *KeyedLimiter) SetLimit(perSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if perSecond <= 0 {
		l.limit = rate.Inf
	} else {
		l.limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	l.burst = burst

	now := l.now()
	for _, e := range l.limiters {
		e.limiter.SetLimitAt(now, l.limit)
		e.limiter.SetBurstAt(now, l.burst)
	}
}

// Allow consumes one token from key's bucket
func (l *KeyedLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	now := l.now()
	e, ok := l.limiters[key]
	if !ok {
		e = &keyedEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1), nil
}

// Prune drops buckets idle for longer than the idle TTL
func (l *KeyedLimiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	removed := 0
	for key, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

// Run prunes idle buckets every interval until ctx is done
func (l *KeyedLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune()
		}
	}
}

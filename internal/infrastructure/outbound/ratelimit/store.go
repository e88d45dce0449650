// Package ratelimit keeps one token bucket per client key.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
)

var _ ports.RateLimiter = (*TokenBucketStore)(nil)

const defaultTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	rate     float64
	burst    int
	lastUsed time.Time
}

// TokenBucketStore provides per-key rate limiters using token bucket algorithm.
// Buckets are refilled against the injected clock.
type TokenBucketStore struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	ttl      time.Duration
	clock    ports.Clock
	stop     chan struct{}
	stopOnce sync.Once
}

// NewTokenBucketStore creates a new store with the given TTL for inactive limiters.
// It starts a background goroutine that evicts stale entries every TTL interval.
// Call Stop to terminate the eviction goroutine.
func NewTokenBucketStore(ttl time.Duration, clock ports.Clock) *TokenBucketStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	s := &TokenBucketStore{
		limiters: make(map[string]*limiterEntry),
		ttl:      ttl,
		clock:    clock,
		stop:     make(chan struct{}),
	}
	go s.evictLoop()
	return s
}

// Stop terminates the background eviction goroutine. Safe to call twice.
func (s *TokenBucketStore) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *TokenBucketStore) evictLoop() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Evict()
		case <-s.stop:
			return
		}
	}
}

// Allow checks if a request for the given key is within limits. A
// non-positive rate disables limiting.
func (s *TokenBucketStore) Allow(_ context.Context, key string, r float64, burst int) bool {
	if r <= 0 {
		return true
	}
	if burst < 1 {
		burst = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(r), burst),
			rate:    r,
			burst:   burst,
		}
		s.limiters[key] = entry
	} else if entry.rate != r || entry.burst != burst {
		entry.limiter.SetLimitAt(now, rate.Limit(r))
		entry.limiter.SetBurstAt(now, burst)
		entry.rate = r
		entry.burst = burst
	}

	entry.lastUsed = now
	return entry.limiter.AllowN(now, 1)
}

// Evict removes inactive entries older than the TTL.
func (s *TokenBucketStore) Evict() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock.Now().Add(-s.ttl)
	for key, entry := range s.limiters {
		if entry.lastUsed.Before(cutoff) {
			delete(s.limiters, key)
		}
	}
}

// Len returns the number of active limiters.
func (s *TokenBucketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

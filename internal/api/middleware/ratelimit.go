package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/eventconnect/server/internal/config"
	"golang.org/x/time/rate"
)

// RateLimitTier selects which per-minute budget applies to a route.
type RateLimitTier string

const (
	TierPublic RateLimitTier = "public"
	TierWrite  RateLimitTier = "write"
)

// RateLimiter hands out per-route limiting middleware. All routes wrapped
// with the same tier share that tier's per-client token buckets; routes left
// unwrapped (health, metrics) are not limited.
type RateLimiter struct {
	store *limiterStore
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{store: newLimiterStore(cfg)}
}

// Tier wraps a handler with the tier's budget.
func (l *RateLimiter) Tier(tier RateLimitTier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := l.store.limiter(tier, clientKey(r))
			if limiter != nil && !limiter.Allow() {
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	perMinute map[RateLimitTier]int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(cfg config.RateLimitConfig) *limiterStore {
	return &limiterStore{
		limiters: make(map[string]*limiterEntry),
		perMinute: map[RateLimitTier]int{
			TierPublic: cfg.PublicPerMinute,
			TierWrite:  cfg.WritePerMinute,
		},
	}
}

// limiter returns the token bucket for a tier/client pair, or nil when the
// tier is unlimited (non-positive configuration).
func (s *limiterStore) limiter(tier RateLimitTier, client string) *rate.Limiter {
	perMinute := s.perMinute[tier]
	if perMinute <= 0 {
		return nil
	}

	key := string(tier) + ":" + client

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
		}
		s.limiters[key] = entry
	}
	entry.lastSeen = time.Now()

	s.evictStale()
	return entry.limiter
}

// evictStale drops buckets idle for over an hour. Called with the lock held.
func (s *limiterStore) evictStale() {
	cutoff := time.Now().Add(-time.Hour)
	for key, entry := range s.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(s.limiters, key)
		}
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

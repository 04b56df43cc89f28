package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/api/shared"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures per-user throttling.
type RateLimitConfig struct {
	PerMinute float64
	Burst     int

	// EntryTTL is how long an idle user's limiter is kept.
	EntryTTL time.Duration
}

// RateLimitObserver is told about rejected requests.
type RateLimitObserver interface {
	RateLimited(route string)
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per authenticated user, falling back to the
// remote address for anonymous requests.
type RateLimiter struct {
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	ttl         time.Duration
	entries     map[string]*limiterEntry
	lastCleanup time.Time
	observer    RateLimitObserver
	now         func() time.Time
}

// NewRateLimiter creates a RateLimiter. observer may be nil.
func NewRateLimiter(cfg RateLimitConfig, observer RateLimitObserver) *RateLimiter {
	ttl := cfg.EntryTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RateLimiter{
		limit:       rate.Limit(cfg.PerMinute / 60),
		burst:       max(cfg.Burst, 1),
		ttl:         ttl,
		entries:     make(map[string]*limiterEntry),
		lastCleanup: time.Now(),
		observer:    observer,
		now:         time.Now,
	}
}

// Allow reports whether key may make another request now.
func (l *RateLimiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) >= l.ttl {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > l.ttl {
				delete(l.entries, k)
			}
		}
		l.lastCleanup = now
	}

	entry, ok := l.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(rateLimitKey(r)) {
			if l.observer != nil {
				l.observer.RateLimited(routePattern(r))
			}
			w.Header().Set("Retry-After", "60")
			shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func rateLimitKey(r *http.Request) string {
	if userID, ok := shared.UserIDFromContext(r.Context()); ok {
		return "user:" + userID.String()
	}
	return "ip:" + r.RemoteAddr
}

// routePattern returns the matched chi route, or the raw path outside chi.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

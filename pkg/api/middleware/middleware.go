package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cardwall/scramble/pkg/log"
	"github.com/gorilla/mux"
)

const (
	// DefaultRateLimit is the number of requests a client may make per window
	DefaultRateLimit = 10
	// DefaultRateWindow is the sliding window the rate limit applies over
	DefaultRateWindow = time.Second
)

// NewLoggingMiddleware returns a middleware that logs each request with its
// duration.
func NewLoggingMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
		})
	}
}

// RateLimiter tracks request timestamps per client over a sliding window.
type RateLimiter struct {
	limit  int
	window time.Duration

	lock     sync.Mutex
	requests map[string][]time.Time
}

type NewRateLimiterOptions struct {
	Limit  int
	Window time.Duration
}

func NewRateLimiter(opts NewRateLimiterOptions) *RateLimiter {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	window := opts.Window
	if window <= 0 {
		window = DefaultRateWindow
	}
	return &RateLimiter{
		limit:    limit,
		window:   window,
		requests: make(map[string][]time.Time),
	}
}

// Allow records a request for client and reports whether it is within the
// rate limit. Requests older than the window are dropped from the record.
func (rl *RateLimiter) Allow(client string) bool {
	rl.lock.Lock()
	defer rl.lock.Unlock()

	now := time.Now()
	times := rl.requests[client]
	for len(times) > 0 && now.Sub(times[0]) > rl.window {
		times = times[1:]
	}

	if len(times) >= rl.limit {
		rl.requests[client] = times
		return false
	}

	rl.requests[client] = append(times, now)
	return true
}

// NewRateLimitMiddleware returns a middleware that rejects clients exceeding
// the limiter's per-client request rate with 429.
func NewRateLimitMiddleware(limiter *RateLimiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				client = r.RemoteAddr
			}

			if !limiter.Allow(client) {
				log.Warn("Rate limit exceeded for %s", client)
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AccessCounter counts requests per resource path.
type AccessCounter struct {
	lock   sync.Mutex
	counts map[string]int
}

func NewAccessCounter() *AccessCounter {
	return &AccessCounter{
		counts: make(map[string]int),
	}
}

// Increment adds one access for path.
func (ac *AccessCounter) Increment(path string) {
	ac.lock.Lock()
	defer ac.lock.Unlock()
	ac.counts[path]++
}

// Snapshot returns a copy of the per-path access counts.
func (ac *AccessCounter) Snapshot() map[string]int {
	ac.lock.Lock()
	defer ac.lock.Unlock()
	counts := make(map[string]int, len(ac.counts))
	for path, count := range ac.counts {
		counts[path] = count
	}
	return counts
}

// NewAccessCounterMiddleware returns a middleware that counts each request
// against its resource path.
func NewAccessCounterMiddleware(counter *AccessCounter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			counter.Increment(r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}

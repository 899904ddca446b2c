package httpx

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	msgTooManyAttempts = "Too many attempts. Please try again later."
	limiterIdleSweep   = 5 * time.Minute
)

// RateLimitOptions configures RateLimit.
type RateLimitOptions struct {
	// Requests allowed per Window. Zero or less disables limiting.
	Requests int
	Window   time.Duration
	Burst    int
	// TrustProxyHeaders keys clients by forwarding headers instead of RemoteAddr.
	TrustProxyHeaders bool
	// Optional: renders the HTML response for browser clients.
	Renderer *TemplateRenderer
	Logger   *slog.Logger
}

// clientLimiters holds one token bucket per client address.
type clientLimiters struct {
	limiters  sync.Map // map[string]*rate.Limiter
	limit     rate.Limit
	burst     int
	mu        sync.Mutex
	lastSweep time.Time
}

func (c *clientLimiters) get(key string) *rate.Limiter {
	if l, ok := c.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}
	actual, _ := c.limiters.LoadOrStore(key, rate.NewLimiter(c.limit, c.burst))
	c.maybeSweep()
	return actual.(*rate.Limiter)
}

// maybeSweep drops buckets that have refilled completely, i.e. idle clients.
func (c *clientLimiters) maybeSweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastSweep) < limiterIdleSweep {
		return
	}
	c.lastSweep = time.Now()
	c.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(c.burst) {
			c.limiters.Delete(key)
		}
		return true
	})
}

// RateLimit throttles requests per client address with a token bucket.
// Rejected requests get 429 with Retry-After.
func RateLimit(opts RateLimitOptions) func(http.Handler) http.Handler {
	if opts.Requests <= 0 || opts.Window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = opts.Requests
	}
	cl := &clientLimiters{
		limit:     rate.Limit(float64(opts.Requests) / opts.Window.Seconds()),
		burst:     burst,
		lastSweep: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientAddr(r, opts.TrustProxyHeaders)
			l := cl.get(key)
			if l.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			res := l.Reserve()
			delay := res.Delay()
			res.Cancel()
			retryAfter := max(int(delay.Seconds()), 1)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			logger.WarnContext(r.Context(), "auth rate limit exceeded",
				"client", key, "path", r.URL.Path, "retry_after", retryAfter)

			if wantsJSON(r) || opts.Renderer == nil {
				WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":   "rate_limited",
					"message": msgTooManyAttempts,
				})
				return
			}
			opts.Renderer.RenderError(w, http.StatusTooManyRequests, msgTooManyAttempts)
		})
	}
}

// clientAddr returns the RemoteAddr host. With trustProxy it prefers the first
// X-Forwarded-For hop, then X-Real-IP.
func clientAddr(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

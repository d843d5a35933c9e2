package middlewares

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter is a fixed-window limiter local to the process.
type MemoryLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	clients map[string]*clientBucket
	now     func() time.Time
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]

	if !ok || now.After(b.windowEnd) {
		rl.clients[key] = &clientBucket{
			count:     1,
			windowEnd: now.Add(rl.window),
		}
		rl.sweep(now)

		return Decision{Allowed: true, Remaining: rl.limit - 1}, nil
	}

	if b.count >= rl.limit {
		retryAfter := b.windowEnd.Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}

		return Decision{Allowed: false, RetryAfter: retryAfter}, nil
	}

	b.count++

	return Decision{Allowed: true, Remaining: rl.limit - b.count}, nil
}

// sweep drops expired buckets so idle clients do not pile up. Caller holds rl.mu.
func (rl *MemoryLimiter) sweep(now time.Time) {
	if len(rl.clients) < 1024 {
		return
	}

	for k, b := range rl.clients {
		if now.After(b.windowEnd) {
			delete(rl.clients, k)
		}
	}
}

// RateLimit enforces l for the key derived by keyFn. Limiter errors fail open.
// onLimited may be nil.
func RateLimit(l Limiter, name string, keyFn func(*gin.Context) string, onLimited func(route string)) gin.HandlerFunc {
	if keyFn == nil {
		keyFn = KeyByIP
	}

	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}
		key = name + ":" + key
		c.Set(CtxRateKey, key)

		d, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			slog.Default().WarnContext(c.Request.Context(), "rate limiter unavailable, allowing request", "err", err)
			c.Next()
			return
		}

		if !d.Allowed {
			if onLimited != nil {
				onLimited(name)
			}

			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(d.RetryAfter)))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "Too many requests. Please try again shortly.",
				},
			})

			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Next()
	}
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}

// rounds up so clients never retry early
func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}

	return int((d + time.Second - 1) / time.Second)
}

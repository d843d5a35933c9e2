package middlewares

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter shared by every process using the
// same Redis. Each window is one counter key that expires with the window.
type RedisLimiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(rdb redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		prefix: "userhub:rl:",
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := l.prefix + key

	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("incr %s: %w", k, err)
	}

	ttl, err := l.rdb.PTTL(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("pttl %s: %w", k, err)
	}

	// first hit of a window, or a counter left without expiry
	if n == 1 || ttl < 0 {
		if err := l.rdb.PExpire(ctx, k, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("pexpire %s: %w", k, err)
		}
		ttl = l.window
	}

	if int(n) > l.limit {
		return Decision{Allowed: false, RetryAfter: ttl}, nil
	}

	return Decision{Allowed: true, Remaining: l.limit - int(n)}, nil
}

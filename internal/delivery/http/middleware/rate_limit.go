package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"talent-hub-backend/internal/delivery/http/response"
	"talent-hub-backend/internal/domain"
	"talent-hub-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

type RateLimitConfig struct {
	// Requests per window
	Limit  int
	Window time.Duration
	// KeyFunc defaults to the client IP.
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// Redis is optional; without it counters are kept per process.
	Redis goredis.Scripter
}

// INCR with the TTL set on first hit. Returns {count, ttl_seconds}.
var fixedWindowScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`)

type windowCounter struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// memoryWindows is the per-process fallback used when Redis is absent or failing.
type memoryWindows struct {
	entries sync.Map
}

func (m *memoryWindows) hit(key string, window time.Duration, now time.Time) (int, time.Time) {
	v, _ := m.entries.LoadOrStore(key, &windowCounter{resetAt: now.Add(window)})
	w := v.(*windowCounter)

	w.mu.Lock()
	defer w.mu.Unlock()
	if now.After(w.resetAt) {
		w.count = 0
		w.resetAt = now.Add(window)
	}
	w.count++
	return w.count, w.resetAt
}

func (m *memoryWindows) sweep(now time.Time) {
	m.entries.Range(func(key, value any) bool {
		w := value.(*windowCounter)
		w.mu.Lock()
		if now.After(w.resetAt) {
			m.entries.Delete(key)
		}
		w.mu.Unlock()
		return true
	})
}

// APIRateLimitConfig is the default budget for authenticated API traffic.
func APIRateLimitConfig(perMinute int, client goredis.Scripter) RateLimitConfig {
	if perMinute <= 0 {
		perMinute = 120
	}
	return RateLimitConfig{
		Limit:     perMinute,
		Window:    time.Minute,
		KeyPrefix: "ratelimit:api:ip:",
		Redis:     client,
	}
}

// RateLimitMiddleware rejects requests beyond Limit per Window with 429. Redis errors fall back
// to the in-process counter rather than rejecting traffic.
func RateLimitMiddleware(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	mem := &memoryWindows{}
	var hits int64
	var hitsMu sync.Mutex

	return func(c *gin.Context) {
		key := cfg.KeyPrefix + cfg.KeyFunc(c)
		now := time.Now()

		var count int
		var resetAt time.Time
		var err error
		if cfg.Redis != nil {
			count, resetAt, err = redisWindow(c.Request.Context(), cfg.Redis, key, cfg.Window)
			if err != nil {
				logger.Log.Warn("Rate limit falling back to memory", "error", err)
			}
		}
		if cfg.Redis == nil || err != nil {
			count, resetAt = mem.hit(key, cfg.Window, now)

			hitsMu.Lock()
			hits++
			if hits%1000 == 0 {
				mem.sweep(now)
			}
			hitsMu.Unlock()
		}

		remaining := cfg.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > cfg.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			logger.Log.Warn("Rate limit exceeded", "ip", c.ClientIP(), "path", c.FullPath(), "request_id", c.GetString(string(domain.KeyRequestID)))
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func redisWindow(ctx context.Context, client goredis.Scripter, key string, window time.Duration) (int, time.Time, error) {
	result, err := fixedWindowScript.Run(ctx, client, []string{key}, int(window.Seconds())).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit script: %w", err)
	}
	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("rate limit script: unexpected result %T", result)
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)
	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

package security

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Lua script for sliding window rate limiting
// KEYS[1] = rate limit key
// ARGV[1] = max count allowed
// ARGV[2] = window size in milliseconds
// ARGV[3] = current timestamp in milliseconds
// ARGV[4] = unique member for this attempt
// Returns: 1 if allowed, 0 if rate limited
const slidingWindowScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

if redis.call('ZCARD', key) >= limit then
    return 0
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`

var slidingWindow = goredis.NewScript(slidingWindowScript)

// AnalysisLimiter caps CV analyses per operator in a sliding window.
type AnalysisLimiter struct {
	client goredis.Scripter
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewAnalysisLimiter(client goredis.Scripter, perHour int) *AnalysisLimiter {
	if perHour <= 0 {
		perHour = 30
	}
	return &AnalysisLimiter{client: client, limit: perHour, window: time.Hour, now: time.Now}
}

// Allow records an attempt for operatorID. On Redis errors it allows the attempt and
// returns the error so the caller can log it. A nil limiter allows everything.
func (l *AnalysisLimiter) Allow(ctx context.Context, operatorID string) (bool, error) {
	if l == nil {
		return true, nil
	}
	now := l.now()
	key := fmt.Sprintf("ratelimit:cv_analysis:user:%s", operatorID)
	member := uuid.NewString()

	result, err := slidingWindow.Run(ctx, l.client, []string{key},
		l.limit, l.window.Milliseconds(), now.UnixMilli(), member).Int64()
	if err != nil {
		return true, fmt.Errorf("analysis rate limit check failed: %w", err)
	}
	return result == 1, nil
}

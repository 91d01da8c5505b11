package limiter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "portal:article-create:"

// slidingWindow prunes, counts and conditionally records a hit in one step.
// Scores are unix milliseconds. Returns {allowed, count, oldest_score}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	return {0, count, tonumber(oldest[2])}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1, 0}
`)

// RedisLimiter keeps the window in a sorted set per key so every server
// instance sees the same counts.
type RedisLimiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(client redis.UniversalClient, limit int, window time.Duration, now func() time.Time) *RedisLimiter {
	if now == nil {
		now = time.Now
	}
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: DefaultKeyPrefix,
		now:    now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now().UnixMilli()
	windowMs := l.window.Milliseconds()
	token := strconv.FormatInt(now, 10) + "-" + uuid.NewString()

	result, err := slidingWindow.Run(ctx, l.client,
		[]string{l.prefix + key},
		now, windowMs, l.limit, token,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("creation limiter: %w", err)
	}
	if len(result) != 3 {
		return Decision{}, fmt.Errorf("creation limiter: unexpected script reply %v", result)
	}

	if result[0] == 0 {
		retryAfter := time.Duration(result[2]+windowMs-now) * time.Millisecond
		return Decision{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			RetryAfter: retryAfter,
		}, nil
	}

	return Decision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - int(result[1]),
		Token:     token,
	}, nil
}

func (l *RedisLimiter) Release(ctx context.Context, key, token string) error {
	if err := l.client.ZRem(ctx, l.prefix+key, token).Err(); err != nil {
		return fmt.Errorf("creation limiter: release: %w", err)
	}
	return nil
}

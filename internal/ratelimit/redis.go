package ratelimit

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces limiter counters in a shared Redis.
const KeyPrefix = "ratelimit:login:"

// fixedWindowScript increments the window counter and returns the new count.
// The first increment starts the window; a counter that somehow lost its TTL
// gets one again so it cannot block a client forever.
var fixedWindowScript = redis.NewScript(`
-- KEYS[1] = counter key
-- ARGV[1] = window_ms (int)
local current = redis.call('INCR', KEYS[1])
if current == 1 or redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter counts attempts in Redis so every API instance shares one ceiling.
type RedisLimiter struct {
	rdb    redis.Scripter
	policy Policy
}

func NewRedisLimiter(rdb redis.Scripter, p Policy) (*RedisLimiter, error) {
	if rdb == nil {
		return nil, errors.New("redis client is nil")
	}
	return &RedisLimiter{rdb: rdb, policy: p.withDefaults()}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := fixedWindowScript.Run(ctx, l.rdb, []string{KeyPrefix + key}, l.policy.Window.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	return count <= l.policy.MaxAttempts, nil
}

package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Fixed-window counter. Refusals never increment, so the counter can not
// run past the limit within a window.
const fixedWindowScript = `
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current >= limit then
  local ttl = redis.call("PTTL", KEYS[1])
  if ttl < 0 then ttl = window end
  return {0, 0, ttl}
end

current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], window)
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then ttl = window end
return {1, limit - current, ttl}
`

// RedisStore counts windows in redis so horizontally scaled replicas share
// limits. Expiry rides on key TTLs; no sweep is needed.
type RedisStore struct {
	client *redis.Client
	script *redis.Script
}

// NewRedisStore builds a store over the given client.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		return nil
	}
	return &RedisStore{
		client: client,
		script: redis.NewScript(fixedWindowScript),
	}
}

// Take implements Store.
func (s *RedisStore) Take(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	if s == nil || s.client == nil {
		return Result{}, fmt.Errorf("%w: redis client not configured", ErrLimiterUnavailable)
	}

	res, err := s.script.Run(
		ctx,
		s.client,
		[]string{"ratelimit:" + key},
		limit,
		int64(window/time.Millisecond),
	).Slice()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if len(res) < 3 {
		return Result{}, fmt.Errorf("%w: unexpected script response", ErrLimiterUnavailable)
	}

	return Result{
		Allowed:   castToInt(res[0]) == 1,
		Remaining: int(castToInt(res[1])),
		ResetIn:   time.Duration(castToInt(res[2])) * time.Millisecond,
	}, nil
}

func castToInt(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	default:
		return 0
	}
}

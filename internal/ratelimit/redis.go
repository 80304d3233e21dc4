package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Redis: скользящий журнал в sorted set: score = время попытки в мс.
// Подходит для нескольких инстансов за балансировщиком.
type Redis struct {
	rdb    goredis.UniversalClient
	cfg    Config
	prefix string
	now    func() time.Time
	seq    atomic.Uint64
}

func NewRedis(rdb goredis.UniversalClient, cfg Config) *Redis {
	return &Redis{rdb: rdb, cfg: cfg.normalized(), prefix: "rl:login:", now: time.Now}
}

// Lua: чистим старые отметки, считаем, добавляем только если есть место.
// Возвращает {allowed, count, oldest_ms}.
var slidingWindowScript = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local count = redis.call("ZCARD", key)
if count >= limit then
  local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
  return {0, count, tonumber(oldest[2])}
end
redis.call("ZADD", key, now, member)
redis.call("PEXPIRE", key, window)
local first = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
return {1, count + 1, tonumber(first[2])}
`)

func (l *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	if l.cfg.Limit <= 0 || l.rdb == nil {
		return Decision{Allowed: true, Limit: l.cfg.Limit, Remaining: l.cfg.Limit}, nil
	}

	now := l.now()
	nowMs := now.UnixMilli()
	windowMs := l.cfg.Window.Milliseconds()
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + strconv.FormatUint(l.seq.Add(1), 10)

	res, err := slidingWindowScript.Run(ctx, l.rdb, []string{l.prefix + key},
		nowMs, windowMs, l.cfg.Limit, member).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit redis: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("ratelimit redis: unexpected result %v", res)
	}

	allowed := res[0] == 1
	count := int(res[1])
	resetAt := time.UnixMilli(res[2] + windowMs)

	d := Decision{
		Allowed:   allowed,
		Limit:     l.cfg.Limit,
		Remaining: max(0, l.cfg.Limit-count),
		ResetAt:   resetAt,
	}
	if !allowed {
		d.RetryAfter = max(resetAt.Sub(now), time.Second)
	}
	return d, nil
}

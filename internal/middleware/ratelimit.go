package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
)

// RateLimitConfig tunes the token bucket applied to the auth endpoints.
type RateLimitConfig struct {
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	KeyTTL         time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Capacity:       10,
		RefillTokens:   1,
		RefillInterval: 6 * time.Second,
		KeyTTL:         10 * time.Minute,
	}
}

var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + (intervals * refill_tokens))
		last_refill = last_refill + (intervals * interval_ms)
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	local until_next = interval_ms - (now_ms - last_refill)
	if until_next < 0 then until_next = 0 end
	retry_after_ms = until_next
end

redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return {allowed, retry_after_ms}
`)

// RateLimit applies a per-client-IP token bucket backed by Redis. With no
// Redis client it degrades to a pass-through, and so does any Redis error:
// availability beats strictness for a login throttle.
func RateLimit(log *logger.Logger, rdb *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	if rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}
	limLog := log.With("middleware", "RateLimit")
	return func(c *gin.Context) {
		key := "ratelimit:auth:" + c.ClientIP()
		res, err := tokenBucketScript.Run(c.Request.Context(), rdb,
			[]string{key},
			time.Now().UnixMilli(),
			cfg.Capacity,
			cfg.RefillTokens,
			cfg.RefillInterval.Milliseconds(),
			int(cfg.KeyTTL.Seconds()),
		).Int64Slice()
		if err != nil {
			limLog.Warn("Rate limit check failed, allowing request", "error", err)
			c.Next()
			return
		}
		if len(res) == 2 && res[0] == 0 {
			retryAfter := time.Duration(res[1]) * time.Millisecond
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

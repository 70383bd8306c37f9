package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gylounge/internal/models"
	"github.com/redis/go-redis/v9"
)

type RateLimitConfig struct {
	Prefix   string
	Capacity int
	// Interval is the time it takes to earn back one token.
	Interval time.Duration
	TTL      time.Duration
}

// tokenBucket refills whole tokens per elapsed interval, takes one if it can,
// and returns {allowed, tokens_left, retry_after_ms}.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + intervals)
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// RateLimit throttles a route per client IP with a token bucket kept in
// Redis. With no client, or when Redis errors, requests pass through.
func RateLimit(rdb *redis.Client, cfg RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if rdb == nil || cfg.Capacity <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "gyl:rl"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Duration(cfg.Capacity+1) * cfg.Interval
	}
	ttlSeconds := int64(math.Ceil(cfg.TTL.Seconds()))

	return func(c *gin.Context) {
		key := strings.Join([]string{cfg.Prefix, c.FullPath(), clientIP(c)}, ":")

		vals, err := tokenBucket.Run(c.Request.Context(), rdb, []string{key},
			time.Now().UnixMilli(),
			cfg.Capacity,
			cfg.Interval.Milliseconds(),
			ttlSeconds,
		).Int64Slice()
		if err != nil || len(vals) != 3 {
			logger.Warn("rate limit check skipped", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(vals[1], 10))

		if vals[0] != 1 {
			secs := int64(math.Ceil(float64(vals[2]) / 1000.0))
			c.Header("Retry-After", strconv.FormatInt(secs, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				models.ErrorResponse(fmt.Sprintf("rate limit exceeded, retry in %ds", secs)))
			return
		}
		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

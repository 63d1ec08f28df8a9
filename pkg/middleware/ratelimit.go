package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"bookmyseat/pkg/clock"
	"bookmyseat/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rateKeyPrefix = "ratelimit"

// tokenBucket refills one token every interval up to capacity and takes one
// per request. Returns {allowed, remaining, retry_after_ms}.
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

// RateLimit throttles each holder (or client IP before a holder is known)
// with a Redis token bucket. Redis failures let the request through.
func RateLimit(rdb *redis.Client, config utils.RedisConfig, clk clock.Clock, logger *zap.Logger) func(http.Handler) http.Handler {
	if rdb == nil || !config.RateLimitEnabled || config.RateCapacity <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	ttl := bucketTTL(config.RateCapacity, config.RateRefillEvery)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateKey(r)

			vals, err := tokenBucket.Run(r.Context(), rdb, []string{key},
				clk.Now().UnixMilli(),
				config.RateCapacity,
				config.RateRefillEvery.Milliseconds(),
				ttl,
			).Int64Slice()
			if err != nil || len(vals) != 3 {
				logger.Warn("Rate limiter unavailable", zap.Error(err), zap.String("key", key))
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining, retryMs := vals[0] == 1, vals[1], vals[2]

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RateCapacity))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				secs := int64(math.Ceil(float64(retryMs) / 1000.0))
				w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
				logger.Info("Rate limit exceeded", zap.String("key", key), zap.Int64("retry_after_ms", retryMs))
				utils.ResponseTooManyRequests(w, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateKey(r *http.Request) string {
	if holder, ok := utils.GetHolderFromContext(r.Context()); ok {
		return rateKeyPrefix + ":holder:" + holder
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || ip == "" {
		ip = r.RemoteAddr
	}
	return rateKeyPrefix + ":ip:" + ip
}

// bucketTTL is how long an idle bucket takes to refill completely.
func bucketTTL(capacity int, refillEvery time.Duration) int64 {
	secs := int64(math.Ceil((time.Duration(capacity) * refillEvery).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

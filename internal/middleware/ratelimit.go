package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/raffle-ticket-sales/internal/config"
)

// takeScript refills the bucket in KEYS[1] for the elapsed time and takes one
// token.  ARGV: now_ms, capacity, tokens_per_ms, ttl_seconds.
// Returns {allowed (0|1), remaining, retry_after_ms}.
var takeScript = redis.NewScript(`
local cap = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local now = tonumber(ARGV[1])

local cur = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(cur[1]) or cap
local ts = tonumber(cur[2]) or now

tokens = math.min(cap, tokens + math.max(0, now - ts) * rate)

local allowed, wait = 0, 0
if tokens >= 1 then
	allowed = 1
	tokens = tokens - 1
elseif rate > 0 then
	wait = math.ceil((1 - tokens) / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'ts', now)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[4]))
return {allowed, math.floor(tokens), wait}
`)

type verdict struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

type bucket struct {
	rdb  *redis.Client
	cfg  config.RateLimitConfig
	rate float64 // tokens per millisecond
}

func (b *bucket) take(ctx context.Context, key string) (verdict, error) {
	res, err := takeScript.Run(ctx, b.rdb, []string{key},
		time.Now().UnixMilli(), b.cfg.Capacity, b.rate, int64(b.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return verdict{}, err
	}
	if len(res) != 3 {
		return verdict{}, redis.Nil
	}
	return verdict{
		allowed:   res[0] == 1,
		remaining: res[1],
		retry:     time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// NewTokenBucket limits requests per key with a token bucket kept in Redis.
// When Redis is absent or failing, requests pass through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.RefillInterval < time.Millisecond {
		cfg.RefillInterval = time.Second
	}
	if cfg.TTL < time.Second {
		cfg.TTL = time.Minute
	}
	b := &bucket{
		rdb:  rdb,
		cfg:  cfg,
		rate: float64(cfg.RefillTokens) / float64(cfg.RefillInterval.Milliseconds()),
	}
	limit := strconv.Itoa(cfg.Capacity)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			v, err := b.take(c.Request().Context(), key)
			if err != nil {
				if cfg.Debug {
					zap.L().Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
				}
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
			if v.allowed {
				return next(c)
			}

			secs := int((v.retry + time.Second - 1) / time.Second)
			h.Set("Retry-After", strconv.Itoa(secs))
			if cfg.Debug {
				zap.L().Info("rate limited", zap.String("key", key), zap.Duration("retry", v.retry))
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"success":     false,
				"error":       "too many requests",
				"retry_after": secs,
			})
		}
	}
}

// buildRateKey joins the prefix with the parts named by the key strategy.
// A strategy is an underscore separated list of ip, user and route;
// anything unrecognised falls back to all three.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := map[string]func() string{
		"ip": func() string {
			if ip := c.RealIP(); ip != "" {
				return ip
			}
			return "unknown"
		},
		"user":  func() string { return userKey(c) },
		"route": func() string { return c.Request().Method + " " + c.Path() },
	}

	names := strings.Split(strings.ToLower(cfg.KeyStrategy), "_")
	for _, n := range names {
		if parts[n] == nil {
			names = []string{"ip", "user", "route"}
			break
		}
	}

	key := []string{cfg.Prefix}
	for _, n := range names {
		key = append(key, n, parts[n]())
	}
	return strings.Join(key, ":")
}

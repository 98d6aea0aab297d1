package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RequestTimeout attaches a default deadline to requests that arrive
// without one. The engine itself defines no timeouts; the storage
// rollback on context cancellation is the abort mechanism.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if _, ok := req.Context().Deadline(); ok {
				return next(c)
			}
			ctx, cancel := context.WithTimeout(req.Context(), timeout)
			defer cancel()
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// RedisRateLimiter is a fixed-window per-client limiter backed by Redis,
// safe across multiple server instances.
type RedisRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	log    *slog.Logger
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

func NewRedisRateLimiter(rdb *redis.Client, limitPerMinute int, log *slog.Logger) *RedisRateLimiter {
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}
	if log == nil {
		log = slog.Default()
	}
	return &RedisRateLimiter{
		rdb:    rdb,
		limit:  limitPerMinute,
		window: time.Minute,
		log:    log.With(slog.String("component", "http.ratelimit")),
	}
}

// Middleware fails open: if Redis is unreachable the request proceeds.
func (rl *RedisRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "rl:" + c.RealIP()
			count, err := rl.incr(c.Request().Context(), key)
			if err != nil {
				rl.log.Warn("rate limiter unavailable", slog.Any("err", err))
				return next(c)
			}
			if count > int64(rl.limit) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

func (rl *RedisRateLimiter) incr(ctx context.Context, key string) (int64, error) {
	res, err := fixedWindowScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Result()
	if err != nil {
		return 0, err
	}
	switch v := res.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected redis script result type %T", res)
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-kot/internal/config"
)

// RateLimit returns a fixed-window request limiter backed by Redis.  The
// window key combines client IP, authenticated user and route, so one
// misbehaving terminal cannot starve the others.  INCR plus a first-hit
// EXPIRE is enough here; the ticket endpoints see human-scale traffic and
// do not need a token bucket.  With no Redis client the middleware is a
// pass-through.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			user := "guest"
			if v := c.Get("user_id"); v != nil {
				user = fmt.Sprint(v)
			}
			key := fmt.Sprintf("%s:%s:%s:%s", cfg.Prefix, c.RealIP(), user, c.Path())

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				// Redis trouble must not take the API down.
				return next(c)
			}
			if n == 1 {
				_ = rdb.Expire(ctx, key, cfg.Window).Err()
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}

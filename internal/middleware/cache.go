package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-kot/internal/config"
)

// bodyCapture duplicates the response body into a buffer while forwarding
// it to the client, so a cacheable response can be stored after the handler
// has run.
type bodyCapture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int
	limit  int
}

func (w *bodyCapture) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	if w.limit <= 0 || w.size+len(b) <= w.limit {
		w.buf.Write(b)
	}
	w.size += len(b)
	return w.ResponseWriter.Write(b)
}

// cacheKey hashes route and query into a stable Redis key.
func cacheKey(prefix string, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// MenuCache returns a middleware that caches successful GET responses of
// the menu lookup routes in Redis.  The catalog changes rarely, so a short
// TTL keeps terminals fast without an explicit invalidation path.  All
// cached routes return JSON, so only status and body are stored; a hit is
// marked with an X-Cache: HIT header.  With no Redis client the middleware
// is a pass-through.
func MenuCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !strings.EqualFold(c.Request().Method, http.MethodGet) {
				return next(c)
			}

			ctx := c.Request().Context()
			key := cacheKey(cfg.Prefix, c)

			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			}

			cw := &bodyCapture{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && (cfg.MaxBodyBytes <= 0 || cw.size <= cfg.MaxBodyBytes) {
				// The request context may be done once the response is
				// written; store with a fresh one.
				_ = rdb.SetEx(context.Background(), key, cw.buf.Bytes(), cfg.TTL).Err()
			}
			return nil
		}
	}
}

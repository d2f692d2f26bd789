package middleware

import (
	"net/http"
	"strconv"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig config for the Redis-based fixed-window RPS limiter.
type RateLimitConfig struct {
	Redis          *redis.Client
	RPS            int
	KeyPrefix      string                    // e.g. "rl:ip:" or "rl:user:"
	Window         time.Duration             // usually 1s
	Key            func(echo.Context) string // empty result skips limiting
	RetryAfterHint bool                      // set Retry-After header when limited
}

// KeyByIP keys the window on the caller's address, for unauthenticated routes.
func KeyByIP(c echo.Context) string {
	return c.RealIP()
}

// KeyByUser keys the window on the authenticated user id set by TokenMiddleware.
func KeyByUser(c echo.Context) string {
	id, ok := UserIDFromCtx(c)
	if !ok || id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// RateLimitMiddleware applies a simple fixed-window RPS limit per key.
func RateLimitMiddleware(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Window <= 0 {
		cfg.Window = time.Second
	}
	if cfg.Key == nil {
		cfg.Key = KeyByIP
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.RPS <= 0 || cfg.Redis == nil {
				// no limit configured or redis missing (dev): allow
				return next(c)
			}

			key := cfg.Key(c)
			if key == "" {
				return next(c)
			}

			// fixed-window key: rl:<kind>:{key}:{unix_sec}
			now := time.Now()
			windowKey := cfg.KeyPrefix + key + ":" + strconv.FormatInt(now.Unix(), 10)

			// INCR and set expiry 2*window (safety)
			pipe := cfg.Redis.Pipeline()
			cnt := pipe.Incr(c.Request().Context(), windowKey)
			pipe.Expire(c.Request().Context(), windowKey, cfg.Window*2)
			_, err := pipe.Exec(c.Request().Context())
			if err != nil {
				return next(c)
			}

			if cnt.Val() > int64(cfg.RPS) {
				if cfg.RetryAfterHint {
					// seconds until next window
					remain := cfg.Window - time.Duration(now.UnixNano()%int64(cfg.Window))
					if remain > 0 {
						c.Response().Header().Set("Retry-After", strconv.Itoa(int(remain.Round(time.Second)/time.Second)))
					}
				}
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
			}
			return next(c)
		}
	}
}

package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// CacheHeader reports whether a response was served from the cache.
const CacheHeader = "X-Cache"

// SetCacheStatus marks the response as a cache HIT or MISS.
func SetCacheStatus(c echo.Context, hit bool) {
	v := "MISS"
	if hit {
		v = "HIT"
	}
	c.Response().Header().Set(CacheHeader, v)
}

func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			// Let echo's error handler set the final status before logging.
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			evt := logger.Info()
			switch {
			case res.Status >= 500:
				evt = logger.Error().Err(err)
			case res.Status >= 400:
				evt = logger.Warn().Err(err)
			}

			evt.
				Str("request_id", GetRequestID(c)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Int64("bytes_out", res.Size).
				Str("cache", res.Header().Get(CacheHeader)).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			return nil
		}
	}
}

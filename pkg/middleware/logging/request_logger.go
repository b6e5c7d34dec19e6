package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecom/pkg/logging"
)

type Config struct {
	// Skipper suppresses the completion line, the request still gets a logger.
	Skipper func(c echo.Context) bool
	// UserKey is the echo context key holding the authenticated principal.
	UserKey string
}

// SkipPrefixes skips requests whose path starts with any of the prefixes.
func SkipPrefixes(prefixes ...string) func(echo.Context) bool {
	return func(c echo.Context) bool {
		p := c.Request().URL.Path
		for _, pre := range prefixes {
			if strings.HasPrefix(p, pre) {
				return true
			}
		}
		return false
	}
}

func RequestLoggerWithConfig(base *slog.Logger, cfg Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = res.Header().Get(echo.HeaderXRequestID)
			}

			l := base.With("method", req.Method, "route", c.Path(), "remote_ip", c.RealIP())
			if rid != "" {
				l = l.With("request_id", rid)
				res.Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				// commit the response so the status below is final
				c.Error(err)
			}
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return nil
			}

			attrs := []any{
				"url", req.URL.Path,
				"status", res.Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"bytes_in", req.ContentLength,
				"bytes_out", res.Size,
			}
			if cfg.UserKey != "" {
				if user, ok := c.Get(cfg.UserKey).(string); ok && user != "" {
					attrs = append(attrs, "user", user)
				}
			}

			switch {
			case res.Status >= 500:
				if err != nil {
					attrs = append(attrs, "error", err.Error())
				}
				l.Error("http_request", attrs...)
			case res.Status >= 400:
				l.Warn("http_request", attrs...)
			default:
				l.Info("http_request", attrs...)
			}
			return nil
		}
	}
}

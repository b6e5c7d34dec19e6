// Package csrf implements a double-submit cookie check for requests that
// authenticate with the access-token cookie. Bearer-token requests are never
// challenged.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type Config struct {
	CookieName string
	HeaderName string
	// AuthCookie is the cookie whose presence makes a request CSRF-sensitive.
	AuthCookie string

	CookiePath string
	Secure     bool
	SameSite   http.SameSite
	MaxAge     time.Duration

	SkipPaths []string
}

func DefaultConfig() Config {
	return Config{
		CookieName: "XSRF-TOKEN",
		HeaderName: "X-CSRF-Token",
		AuthCookie: "accessToken",
		CookiePath: "/",
		SameSite:   http.SameSiteLaxMode,
		MaxAge:     24 * time.Hour,
	}
}

func Middleware(cfg Config) echo.MiddlewareFunc {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.AuthCookie == "" {
		cfg.AuthCookie = def.AuthCookie
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = def.CookiePath
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if _, ok := skip[req.URL.Path]; ok {
				return next(c)
			}

			token := readCookie(req, cfg.CookieName)
			if token == "" {
				var err error
				if token, err = newToken(32); err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "failed to create CSRF token")
				}
				setCookie(c, cfg, token)
			}

			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				c.Response().Header().Set(cfg.HeaderName, token)
				return next(c)
			}

			if !cookieAuthenticated(req, cfg.AuthCookie) {
				return next(c)
			}

			provided := req.Header.Get(cfg.HeaderName)
			if provided == "" || subtle.ConstantTimeCompare([]byte(token), []byte(provided)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "invalid CSRF token")
			}
			return next(c)
		}
	}
}

func cookieAuthenticated(req *http.Request, authCookie string) bool {
	if strings.TrimSpace(req.Header.Get(echo.HeaderAuthorization)) != "" {
		return false
	}
	return readCookie(req, authCookie) != ""
}

func newToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func setCookie(c echo.Context, cfg Config, token string) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     cfg.CookiePath,
		Secure:   cfg.Secure,
		HttpOnly: false,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		SameSite: cfg.SameSite,
	})
}

func readCookie(req *http.Request, name string) string {
	c, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

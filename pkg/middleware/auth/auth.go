package middleware

import (
	"net/http"
	"strings"

	"github.com/Skotchmaster/ecom/pkg/logging"
	"github.com/Skotchmaster/ecom/pkg/tokens"
	"github.com/labstack/echo/v4"
)

const AccessCookieName = "accessToken"

// Authorizer decides whether role may call method on path.
type Authorizer interface {
	Allow(role, path, method string) (bool, error)
}

type JWTAuth struct {
	JWTSecret []byte
	Authz     Authorizer
}

func NewJWTAuth(secret []byte, authz Authorizer) *JWTAuth {
	return &JWTAuth{JWTSecret: secret, Authz: authz}
}

type ValidatorFunc func(c echo.Context, claims *tokens.AccessClaims) error

func (m *JWTAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

// RequireAdmin authenticates and then asks the authorizer about the request path.
func (m *JWTAuth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(c echo.Context, claims *tokens.AccessClaims) error {
		l := logging.FromContext(c.Request().Context())
		if m.Authz == nil {
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		}
		ok, err := m.Authz.Allow(claims.Role, c.Request().URL.Path, c.Request().Method)
		if err != nil {
			l.Error("authorization_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "authorization failed")
		}
		if !ok {
			l.Warn("authorization_denied", "status", 403, "subject", claims.Subject, "role", claims.Role)
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		}
		return nil
	})
}

func (m *JWTAuth) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := tokenFromRequest(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil || claims == nil || claims.Subject == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		if validator != nil {
			if err := validator(c, claims); err != nil {
				return err
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

// tokenFromRequest prefers the Authorization header and falls back to the access cookie.
func tokenFromRequest(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(AccessCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

package middleware

import (
	"net/http"

	"github.com/Skotchmaster/ecom/pkg/tokens"
	"github.com/labstack/echo/v4"
)

// UserEmailKey is the echo context key under which RequireAuth stores the principal.
const UserEmailKey = "user_email"

const ctxRole = "role"

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(UserEmailKey, claims.Subject)
	c.Set(ctxRole, claims.Role)
}

// UserEmail returns the authenticated principal set by RequireAuth.
func UserEmail(c echo.Context) (string, error) {
	email, ok := c.Get(UserEmailKey).(string)
	if !ok || email == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return email, nil
}

func Role(c echo.Context) string {
	role, _ := c.Get(ctxRole).(string)
	return role
}

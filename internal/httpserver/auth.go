package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/ecom/internal/service"
	"github.com/Skotchmaster/ecom/internal/transport"
	"github.com/Skotchmaster/ecom/pkg/logging"
	middleware "github.com/Skotchmaster/ecom/pkg/middleware/auth"
	"github.com/labstack/echo/v4"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	SecureCookie bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "register_error", err)
	}

	res, err := h.Svc.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success")
	return h.respond(c, res)
}

func (h *AuthHTTP) Authenticate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.authenticate")

	var req transport.AuthenticateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("authenticate_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "authenticate_error", err)
	}

	res, err := h.Svc.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "authenticate_error", err)
	}

	l.Info("authenticate_success")
	return h.respond(c, res)
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	c.SetCookie(middleware.DeleteCookie(middleware.AccessCookieName, "/", h.SecureCookie))
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) respond(c echo.Context, res *service.LoginResult) error {
	c.SetCookie(middleware.CreateCookie(middleware.AccessCookieName, res.AccessToken, "/", res.AccessExp, h.SecureCookie))
	return c.JSON(http.StatusOK, transport.AuthResponse{
		Token:     res.AccessToken,
		Role:      res.Role,
		ExpiresAt: res.AccessExp.Unix(),
	})
}

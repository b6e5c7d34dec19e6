package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Skotchmaster/ecom/internal/service"
	"github.com/labstack/echo/v4"
)

// statusFor maps service error kinds onto HTTP status codes.
// The check order matters: a missing cart is NotFound, not EmptyCart.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func fail(l *slog.Logger, event string, err error) error {
	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", code, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return uint(id), nil
}

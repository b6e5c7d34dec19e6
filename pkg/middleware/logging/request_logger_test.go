package loggingmw

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ecom/pkg/logging"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var out map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestRequestLogger_InjectsLoggerAndLogsStatus(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewWithWriter(logging.Options{}, &buf)

	e := echo.New()
	e.Use(RequestLoggerWithConfig(base, Config{UserKey: "user_email"}))
	e.GET("/cart", func(c echo.Context) error {
		c.Set("user_email", "jane@example.com")
		logging.FromContext(c.Request().Context()).Info("inside_handler")
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/products/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("db gone")
	})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var inner map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	assert.Equal(t, "inside_handler", inner["msg"])
	assert.Equal(t, "rid-1", inner["request_id"])
	done := lastLine(t, &buf)
	assert.Equal(t, "http_request", done["msg"])
	assert.Equal(t, "jane@example.com", done["user"])

	buf.Reset()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/7", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	done = lastLine(t, &buf)
	assert.Equal(t, "WARN", done["level"])
	assert.Equal(t, "/products/:id", done["route"])
	assert.EqualValues(t, 404, done["status"])
	assert.NotContains(t, done, "user")

	buf.Reset()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	done = lastLine(t, &buf)
	assert.Equal(t, "ERROR", done["level"])
	assert.Equal(t, "db gone", done["error"])
}

func TestRequestLogger_Skipper(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLoggerWithConfig(logging.NewWithWriter(logging.Options{}, &buf), Config{
		Skipper: SkipPrefixes("/health/"),
	}))
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, buf.Bytes())
}

package csrf

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(cfg Config, req *http.Request) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := Middleware(cfg)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, err
}

func code(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	return he.Code
}

func TestSafeMethodIssuesToken(t *testing.T) {
	rec, err := serve(Config{}, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	require.NoError(t, err)
	token := rec.Header().Get("X-CSRF-Token")
	assert.NotEmpty(t, token)

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "XSRF-TOKEN" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, token, cookie.Value)
	assert.False(t, cookie.HttpOnly)
}

func TestCookieAuthRequiresMatchingHeader(t *testing.T) {
	newReq := func(header string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/place", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: "jwt"})
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		return req
	}

	_, err := serve(Config{}, newReq(""))
	assert.Equal(t, http.StatusForbidden, code(t, err))

	_, err = serve(Config{}, newReq("other"))
	assert.Equal(t, http.StatusForbidden, code(t, err))

	_, err = serve(Config{}, newReq("tok"))
	require.NoError(t, err)
}

func TestBearerAndAnonymousRequestsPass(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/place", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer jwt")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "jwt"})
	_, err := serve(Config{}, req)
	require.NoError(t, err)

	_, err = serve(Config{}, httptest.NewRequest(http.MethodPost, "/api/v1/products", nil))
	require.NoError(t, err)
}

func TestSkipPaths(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "jwt"})
	_, err := serve(Config{SkipPaths: []string{"/api/v1/auth/logout"}}, req)
	require.NoError(t, err)
}

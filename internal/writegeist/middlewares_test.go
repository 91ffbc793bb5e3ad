package writegeist

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func callWithAuth(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, mw(okHandler)(c))
	return rec
}

func TestTokenAuthMiddleware(t *testing.T) {
	mw := TokenAuthMiddleware("secret-token")

	rec := callWithAuth(t, mw, "Bearer secret-token")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = callWithAuth(t, mw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = callWithAuth(t, mw, "Bearer wrong-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Токен без префикса Bearer тоже принимается
	rec = callWithAuth(t, mw, "secret-token")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func callWithToken(t *testing.T, mw echo.MiddlewareFunc, token string) *httptest.ResponseRecorder {
	e := echo.New()
	target := "/"
	if token != "" {
		target = "/?token=" + token
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, mw(okHandler)(c))
	return rec
}

func TestDownloadTokenMiddleware(t *testing.T) {
	secret := []byte("0123456789abcdef")
	mw := DownloadTokenMiddleware(secret, "download-db")

	token, err := GenDownloadToken(secret, "download-db")
	require.NoError(t, err)

	rec := callWithToken(t, mw, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = callWithToken(t, mw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = callWithToken(t, mw, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Токен с чужим субъектом не подходит
	other, err := GenDownloadToken(secret, "something-else")
	require.NoError(t, err)
	rec = callWithToken(t, mw, other)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Токен под другим секретом не подходит
	foreign, err := GenDownloadToken([]byte("another-secret-key"), "download-db")
	require.NoError(t, err)
	rec = callWithToken(t, mw, foreign)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

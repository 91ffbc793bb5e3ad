// Middleware авторизации API.
//
// Основные возможности:
//   - Проверка bearer-токена доступа к API.
//   - Выпуск и проверка коротких JWT токенов для ссылок на скачивание.
package writegeist

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/writegeist/writegeist.go/internal/writegeist/apierrors"
)

const downloadTokenTTL = time.Minute * 5

// TokenAuthMiddleware проверяет заголовок Authorization: Bearer <token>
// против токена из конфигурации.
func TokenAuthMiddleware(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return EErrorDefined(c, apierrors.ErrTokenRequired)
			}

			provided := strings.TrimPrefix(header, "Bearer ")
			if provided != token {
				return EErrorDefined(c, apierrors.ErrTokenInvalid)
			}
			return next(c)
		}
	}
}

// GenDownloadToken выпускает короткий токен для ссылки на скачивание.
// Такой токен удобно вставлять в URL, где заголовок авторизации недоступен.
func GenDownloadToken(secret []byte, subject string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(downloadTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// DownloadTokenMiddleware проверяет токен скачивания из query-параметра token.
func DownloadTokenMiddleware(secret []byte, subject string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.QueryParam("token")
			if raw == "" {
				return EErrorDefined(c, apierrors.ErrDownloadToken)
			}

			token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				return EErrorDefined(c, apierrors.ErrDownloadToken)
			}

			claims, ok := token.Claims.(*jwt.RegisteredClaims)
			if !ok || claims.Subject != subject {
				return EErrorDefined(c, apierrors.ErrDownloadToken)
			}
			return next(c)
		}
	}
}

package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// Context keys set by the middleware for downstream handlers.
const (
	ContextKeyUserID   = "auth.userID"
	ContextKeyUsername = "auth.username"
)

// Middleware returns an echo middleware that requires a valid bearer token.
func Middleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			claims, err := ValidateAccessToken(token, []byte(secret))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}

			userID, err := strconv.ParseInt(claims.Subject, 10, 32)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "malformed token subject")
			}

			c.Set(ContextKeyUserID, int32(userID))
			c.Set(ContextKeyUsername, claims.Name)
			return next(c)
		}
	}
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ContextUserID is the echo context key holding the authenticated user id
// (uint64).
const ContextUserID = "user_id"

// TokenVerifier validates an access token and returns its user id.
type TokenVerifier interface {
	Verify(raw string) (uint64, error)
}

// BearerAuth rejects requests without a valid "Authorization: Bearer" access
// token and stores the token's user id in the context for the handlers.
func BearerAuth(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "missing bearer token"})
			}
			uid, err := tokens.Verify(strings.TrimSpace(raw))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid or expired token"})
			}
			c.Set(ContextUserID, uid)
			return next(c)
		}
	}
}

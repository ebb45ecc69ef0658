package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the id stored by BearerAuth.
func UserID(c echo.Context) (uint64, bool) {
	uid, ok := c.Get(ContextUserID).(uint64)
	return uid, ok && uid != 0
}

// userKey identifies the caller for rate-limit keys: the user id when
// authenticated, "anon" otherwise.
func userKey(c echo.Context) string {
	if uid, ok := UserID(c); ok {
		return strconv.FormatUint(uid, 10)
	}
	return "anon"
}

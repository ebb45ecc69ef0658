package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Sessions lists the caller's sessions, newest first.
func (h *AuthHandler) Sessions(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	sessions, err := h.Auth.Sessions(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "", echo.Map{"sessions": sessions, "total": len(sessions)})
}

// LogoutAll revokes every session of the caller.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	n, err := h.Auth.LogoutAll(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "all sessions closed", echo.Map{"sessionsClosed": n})
}

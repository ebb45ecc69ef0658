package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raffle-ticket-sales/internal/handler"
)

// RegisterAuth mounts account and session routes.  Register and login are
// open; everything else requires a bearer token.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, bearer echo.MiddlewareFunc) {
	auth := api.Group("/auth")
	auth.POST("/register", a.Register)
	auth.POST("/login", a.Login)
	auth.POST("/logout", a.Logout, bearer)

	api.GET("/users/profile", a.Profile, bearer)

	sessions := api.Group("/sessions", bearer)
	sessions.GET("", a.Sessions)
	sessions.POST("/logout-all", a.LogoutAll)
}

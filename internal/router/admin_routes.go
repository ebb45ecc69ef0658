package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raffle-ticket-sales/internal/handler"
)

// RegisterAdmin mounts the protected maintenance and configuration routes.
func RegisterAdmin(api *echo.Group, a *handler.AdminHandler, cfg *handler.ConfigHandler, bearer echo.MiddlewareFunc) {
	admin := api.Group("/admin", bearer)
	admin.POST("/reset", a.Reset)
	admin.POST("/numbers/:numeroId/release", a.ReleaseTicket)
	admin.DELETE("/buyers/:compradorId", a.DeleteBuyer)

	api.PUT("/config", cfg.Update, bearer)
	api.PUT("/config/:campo", cfg.UpdateField, bearer)
}

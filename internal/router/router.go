// Package router wires handlers and middleware onto the echo instance.
// Every route lives under /api.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raffle-ticket-sales/internal/handler"
	"github.com/iliyamo/raffle-ticket-sales/internal/middleware"
)

// Deps are the handlers and middleware the routes need.  Cache may be nil
// when response caching is off.
type Deps struct {
	Tickets *handler.TicketHandler
	Buyers  *handler.BuyerHandler
	Auth    *handler.AuthHandler
	Admin   *handler.AdminHandler
	Config  *handler.ConfigHandler
	Tokens  middleware.TokenVerifier
	Cache   echo.MiddlewareFunc
}

// Register mounts the whole API and returns the /api group.
func Register(e *echo.Echo, d Deps) *echo.Group {
	api := e.Group("/api")
	bearer := middleware.BearerAuth(d.Tokens)

	RegisterPublic(api, d.Tickets, d.Buyers, d.Config, d.Cache)
	RegisterAuth(api, d.Auth, bearer)
	RegisterAdmin(api, d.Admin, d.Config, bearer)
	return api
}

// RegisterPublic mounts the unauthenticated ledger routes.  Read routes go
// through the response cache; writes purge it in their handlers.
func RegisterPublic(api *echo.Group, t *handler.TicketHandler, b *handler.BuyerHandler, cfg *handler.ConfigHandler, cache echo.MiddlewareFunc) {
	var cached []echo.MiddlewareFunc
	if cache != nil {
		cached = append(cached, cache)
	}

	api.GET("/health", handler.Health)

	api.GET("/numbers", t.List, cached...)
	api.GET("/numbers/:id", t.Get, cached...)
	api.GET("/stats", t.Stats, cached...)
	api.POST("/purchase/:id", t.Purchase)

	api.GET("/buyers", b.List, cached...)
	api.PUT("/buyers/:compradorId/payment", b.SetPayment)
	api.GET("/payment-stats", b.PaymentStats, cached...)

	api.GET("/config", cfg.Get, cached...)
}

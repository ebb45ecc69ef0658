package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminHandler serves the protected ledger maintenance endpoints.
type AdminHandler struct {
	Raffle RaffleService
	Cache  CacheInvalidator
}

func NewAdminHandler(r RaffleService, cache CacheInvalidator) *AdminHandler {
	return &AdminHandler{Raffle: r, Cache: orNoop(cache)}
}

// Reset deletes every buyer and frees every ticket.
func (h *AdminHandler) Reset(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	removed, err := h.Raffle.ResetAll(ctx)
	if err != nil {
		return fail(c, err)
	}
	h.Cache.Purge(ctx)
	return ok(c, http.StatusOK, "raffle reset, all tickets released", echo.Map{"compradoresEliminados": removed})
}

// ReleaseTicket frees one ticket and deletes its buyer.
func (h *AdminHandler) ReleaseTicket(c echo.Context) error {
	id, valid := pathID(c, "numeroId")
	if !valid {
		return badRequest(c, "invalid ticket id")
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	number, err := h.Raffle.ReleaseTicket(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	h.Cache.Purge(ctx)
	return ok(c, http.StatusOK, fmt.Sprintf("ticket %02d released", number),
		echo.Map{"numeroId": id, "numero": number})
}

// DeleteBuyer removes one buyer and frees its ticket.
func (h *AdminHandler) DeleteBuyer(c echo.Context) error {
	id, valid := pathID(c, "compradorId")
	if !valid {
		return badRequest(c, "invalid buyer id")
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	number, err := h.Raffle.DeleteBuyer(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	h.Cache.Purge(ctx)
	return ok(c, http.StatusOK, "buyer deleted, ticket released",
		echo.Map{"compradorId": id, "numeroLiberado": number})
}

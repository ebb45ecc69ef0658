package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// BuyerHandler serves buyer listings and payment marking.
type BuyerHandler struct {
	Raffle RaffleService
	Cache  CacheInvalidator
}

func NewBuyerHandler(r RaffleService, cache CacheInvalidator) *BuyerHandler {
	return &BuyerHandler{Raffle: r, Cache: orNoop(cache)}
}

func (h *BuyerHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	buyers, err := h.Raffle.ListBuyers(ctx)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "", buyers)
}

type paymentReq struct {
	Paid *bool `json:"pagado"`
}

// SetPayment sets or clears the paid flag of a buyer.
func (h *BuyerHandler) SetPayment(c echo.Context) error {
	id, valid := pathID(c, "compradorId")
	if !valid {
		return badRequest(c, "invalid buyer id")
	}
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Paid == nil {
		return badRequest(c, "pagado is required")
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	st, err := h.Raffle.SetPaid(ctx, id, *req.Paid)
	if err != nil {
		return fail(c, err)
	}
	h.Cache.Purge(ctx)
	msg := "payment removed"
	if st.Paid {
		msg = "buyer marked as paid"
	}
	return ok(c, http.StatusOK, msg, st)
}

func (h *BuyerHandler) PaymentStats(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	st, err := h.Raffle.PaymentStats(ctx)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "", st)
}

package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raffle-ticket-sales/internal/model"
)

// RaffleService is the ledger API the ticket, buyer and admin handlers use.
type RaffleService interface {
	ListTickets(ctx context.Context) ([]model.TicketView, error)
	GetTicket(ctx context.Context, id uint64) (model.TicketView, error)
	Stats(ctx context.Context) (model.TicketStats, error)
	Purchase(ctx context.Context, ticketID uint64, data model.BuyerData) (uint64, error)
	ListBuyers(ctx context.Context) ([]model.Buyer, error)
	PaymentStats(ctx context.Context) (model.PaymentStats, error)
	SetPaid(ctx context.Context, buyerID uint64, paid bool) (model.PaymentState, error)
	ResetAll(ctx context.Context) (int64, error)
	ReleaseTicket(ctx context.Context, ticketID uint64) (int, error)
	DeleteBuyer(ctx context.Context, buyerID uint64) (int, error)
}

// TicketHandler serves the public ledger endpoints.
type TicketHandler struct {
	Raffle RaffleService
	Cache  CacheInvalidator
}

func NewTicketHandler(r RaffleService, cache CacheInvalidator) *TicketHandler {
	return &TicketHandler{Raffle: r, Cache: orNoop(cache)}
}

// List returns all tickets with their buyers.
func (h *TicketHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	tickets, err := h.Raffle.ListTickets(ctx)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "", tickets)
}

// Get returns one ticket.
func (h *TicketHandler) Get(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid ticket id")
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	t, err := h.Raffle.GetTicket(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "", t)
}

// Stats returns ticket counts.
func (h *TicketHandler) Stats(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	st, err := h.Raffle.Stats(ctx)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "", st)
}

type purchaseResp struct {
	BuyerID  uint64 `json:"compradorId"`
	TicketID uint64 `json:"numeroId"`
}

// Purchase buys the ticket in the path for the buyer in the body.
func (h *TicketHandler) Purchase(c echo.Context) error {
	id, valid := pathID(c, "id") // ticket number from /purchase/:id
	if !valid {
		return badRequest(c, "invalid ticket id")
	}
	var body model.BuyerData
	if err := c.Bind(&body); err != nil { // malformed JSON
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	buyerID, err := h.Raffle.Purchase(ctx, id, body) // validation and the sold check happen in the service
	if err != nil {
		return fail(c, err) // 400 for taken or invalid, 404 for unknown ticket
	}
	h.Cache.Purge(ctx) // listings and stats changed
	return ok(c, http.StatusCreated, "ticket purchased", purchaseResp{BuyerID: buyerID, TicketID: id})
}

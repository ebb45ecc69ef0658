package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/raffle-ticket-sales/internal/model"
	"github.com/iliyamo/raffle-ticket-sales/internal/queue"
	"github.com/iliyamo/raffle-ticket-sales/internal/repository"
)

// RaffleService owns the ticket ledger: purchases, payment marking and the
// administrative resets.  Each write runs in a single transaction.
type RaffleService struct {
	tickets *repository.TicketRepo
	buyers  *repository.BuyerRepo
	events  EventPublisher
	now     func() time.Time
}

// NewRaffleService wires the service.  events may be nil.
func NewRaffleService(tickets *repository.TicketRepo, buyers *repository.BuyerRepo, events EventPublisher) *RaffleService {
	return &RaffleService{tickets: tickets, buyers: buyers, events: events, now: time.Now}
}

// Initialize seeds the ledger on first start.
func (s *RaffleService) Initialize(ctx context.Context) error {
	seeded, err := s.tickets.Initialize(ctx)
	if err != nil {
		return internalErr("initialize tickets", err)
	}
	if seeded {
		zap.L().Info("ticket ledger seeded", zap.Int("tickets", model.TicketCount))
	}
	return nil
}

func (s *RaffleService) ListTickets(ctx context.Context) ([]model.TicketView, error) {
	out, err := s.tickets.List(ctx)
	if err != nil {
		return nil, internalErr("list tickets", err)
	}
	return out, nil
}

func (s *RaffleService) GetTicket(ctx context.Context, id uint64) (model.TicketView, error) {
	v, err := s.tickets.GetByID(ctx, id)
	if errors.Is(err, repository.ErrTicketNotFound) {
		return v, notFoundErr("ticket not found", err)
	}
	if err != nil {
		return v, internalErr("get ticket", err)
	}
	return v, nil
}

func (s *RaffleService) Stats(ctx context.Context) (model.TicketStats, error) {
	st, err := s.tickets.Stats(ctx)
	if err != nil {
		return st, internalErr("ticket stats", err)
	}
	return st, nil
}

// Purchase assigns a ticket to a buyer.  The ticket row is locked for the
// duration of the transaction, so of two concurrent purchases of the same
// ticket exactly one commits and the other sees it sold.
func (s *RaffleService) Purchase(ctx context.Context, ticketID uint64, data model.BuyerData) (uint64, error) {
	data = data.Normalize()
	if err := data.Validate(); err != nil {
		return 0, validationErr("all buyer fields are required", err, fieldDetails(err)...)
	}

	tx, err := s.tickets.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, internalErr("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := s.tickets.LockTicketTx(ctx, tx, ticketID)
	if errors.Is(err, repository.ErrTicketNotFound) {
		return 0, notFoundErr("ticket not found", err)
	}
	if err != nil {
		return 0, internalErr("lock ticket", err)
	}
	if t.Sold {
		return 0, conflictErr("ticket already sold", repository.ErrAlreadySold)
	}

	buyerID, err := s.buyers.InsertTx(ctx, tx, t.ID, data)
	if errors.Is(err, repository.ErrAlreadySold) {
		return 0, conflictErr("ticket already sold", err)
	}
	if err != nil {
		return 0, internalErr("insert buyer", err)
	}
	if err := s.tickets.MarkSoldTx(ctx, tx, t.ID, true); err != nil {
		return 0, internalErr("mark ticket sold", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, internalErr("commit purchase", err)
	}
	committed = true

	emit(ctx, s.events, queue.LedgerEvent{
		Kind: queue.EventPurchased, TicketID: t.ID, Number: t.Number, BuyerID: buyerID, At: s.now().UTC(),
	})
	return buyerID, nil
}

func (s *RaffleService) ListBuyers(ctx context.Context) ([]model.Buyer, error) {
	out, err := s.buyers.List(ctx)
	if err != nil {
		return nil, internalErr("list buyers", err)
	}
	return out, nil
}

func (s *RaffleService) PaymentStats(ctx context.Context) (model.PaymentStats, error) {
	st, err := s.buyers.PaymentStats(ctx)
	if err != nil {
		return st, internalErr("payment stats", err)
	}
	return st, nil
}

// SetPaid toggles a buyer's payment flag.  fecha_pago is set to the current
// time when paid and cleared otherwise.
func (s *RaffleService) SetPaid(ctx context.Context, buyerID uint64, paid bool) (model.PaymentState, error) {
	st := model.PaymentState{BuyerID: buyerID, Paid: paid}
	if paid {
		at := s.now().UTC().Truncate(time.Second)
		st.PaidAt = &at
	}
	err := s.buyers.SetPaid(ctx, buyerID, paid, st.PaidAt)
	if errors.Is(err, repository.ErrBuyerNotFound) {
		return st, notFoundErr("buyer not found", err)
	}
	if err != nil {
		return st, internalErr("update payment", err)
	}

	emit(ctx, s.events, queue.LedgerEvent{
		Kind: queue.EventPayment, BuyerID: buyerID, Paid: &paid, At: s.now().UTC(),
	})
	return st, nil
}

// ResetAll deletes every buyer and marks every ticket available again.  It
// returns the number of buyers removed.
func (s *RaffleService) ResetAll(ctx context.Context) (int64, error) {
	tx, err := s.tickets.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, internalErr("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	removed, err := s.buyers.DeleteAllTx(ctx, tx)
	if err != nil {
		return 0, internalErr("delete buyers", err)
	}
	if _, err := s.tickets.ReleaseAllTx(ctx, tx); err != nil {
		return 0, internalErr("release tickets", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, internalErr("commit reset", err)
	}
	committed = true

	zap.L().Info("raffle reset", zap.Int64("buyers_removed", removed))
	emit(ctx, s.events, queue.LedgerEvent{Kind: queue.EventReset, At: s.now().UTC()})
	return removed, nil
}

// ReleaseTicket makes one ticket available again, deleting its buyer if it
// has one.  It returns the ticket number.
func (s *RaffleService) ReleaseTicket(ctx context.Context, ticketID uint64) (int, error) {
	tx, err := s.tickets.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, internalErr("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := s.tickets.LockTicketTx(ctx, tx, ticketID)
	if errors.Is(err, repository.ErrTicketNotFound) {
		return 0, notFoundErr("ticket not found", err)
	}
	if err != nil {
		return 0, internalErr("lock ticket", err)
	}
	if _, err := s.buyers.DeleteByTicketTx(ctx, tx, t.ID); err != nil {
		return 0, internalErr("delete buyer", err)
	}
	if err := s.tickets.MarkSoldTx(ctx, tx, t.ID, false); err != nil {
		return 0, internalErr("release ticket", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, internalErr("commit release", err)
	}
	committed = true

	emit(ctx, s.events, queue.LedgerEvent{
		Kind: queue.EventReleased, TicketID: t.ID, Number: t.Number, At: s.now().UTC(),
	})
	return t.Number, nil
}

// DeleteBuyer removes a buyer and frees its ticket.  It returns the number
// of the freed ticket.
func (s *RaffleService) DeleteBuyer(ctx context.Context, buyerID uint64) (int, error) {
	tx, err := s.tickets.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, internalErr("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ticketID, number, err := s.buyers.LockBuyerTx(ctx, tx, buyerID)
	if errors.Is(err, repository.ErrBuyerNotFound) {
		return 0, notFoundErr("buyer not found", err)
	}
	if err != nil {
		return 0, internalErr("lock buyer", err)
	}
	if err := s.buyers.DeleteTx(ctx, tx, buyerID); err != nil {
		return 0, internalErr("delete buyer", err)
	}
	if err := s.tickets.MarkSoldTx(ctx, tx, ticketID, false); err != nil {
		return 0, internalErr("release ticket", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, internalErr("commit delete", err)
	}
	committed = true

	emit(ctx, s.events, queue.LedgerEvent{
		Kind: queue.EventBuyerDeleted, TicketID: ticketID, Number: number, BuyerID: buyerID, At: s.now().UTC(),
	})
	return number, nil
}

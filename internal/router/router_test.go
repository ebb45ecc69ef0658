package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/raffle-ticket-sales/internal/config"
	"github.com/iliyamo/raffle-ticket-sales/internal/handler"
	"github.com/iliyamo/raffle-ticket-sales/internal/middleware"
	"github.com/iliyamo/raffle-ticket-sales/internal/model"
)

type rejectAll struct{}

func (rejectAll) Verify(string) (uint64, error) { return 0, errors.New("rejected") }

func newServer() *echo.Echo {
	e := echo.New()
	Register(e, Deps{
		Tickets: handler.NewTicketHandler(nil, nil),
		Buyers:  handler.NewBuyerHandler(nil, nil),
		Auth:    handler.NewAuthHandler(nil),
		Admin:   handler.NewAdminHandler(nil, nil),
		Config:  handler.NewConfigHandler(nil, nil),
		Tokens:  rejectAll{},
	})
	return e
}

func TestRoutesAreRegistered(t *testing.T) {
	e := newServer()
	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /api/numbers",
		"GET /api/numbers/:id",
		"POST /api/purchase/:id",
		"GET /api/stats",
		"GET /api/buyers",
		"PUT /api/buyers/:compradorId/payment",
		"GET /api/payment-stats",
		"GET /api/health",
		"POST /api/auth/register",
		"POST /api/auth/login",
		"GET /api/users/profile",
		"POST /api/auth/logout",
		"GET /api/sessions",
		"POST /api/sessions/logout-all",
		"GET /api/config",
		"PUT /api/config",
		"PUT /api/config/:campo",
		"POST /api/admin/reset",
		"POST /api/admin/numbers/:numeroId/release",
		"DELETE /api/admin/buyers/:compradorId",
	} {
		assert.True(t, have[want], "missing route %s", want)
	}
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	e := newServer()
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/api/users/profile"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodGet, "/api/sessions"},
		{http.MethodPost, "/api/sessions/logout-all"},
		{http.MethodPut, "/api/config"},
		{http.MethodPut, "/api/config/premio"},
		{http.MethodPost, "/api/admin/reset"},
		{http.MethodPost, "/api/admin/numbers/1/release"},
		{http.MethodDelete, "/api/admin/buyers/1"},
	} {
		req := httptest.NewRequest(r.method, r.path, nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer whatever")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", r.method, r.path)
	}
}

func TestHealthIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ledgerStub sells tickets in memory.
type ledgerStub struct {
	sold int
}

func (l *ledgerStub) ListTickets(context.Context) ([]model.TicketView, error) { return nil, nil }
func (l *ledgerStub) GetTicket(context.Context, uint64) (model.TicketView, error) {
	return model.TicketView{}, nil
}
func (l *ledgerStub) Stats(context.Context) (model.TicketStats, error) {
	return model.TicketStats{Total: model.TicketCount, Sold: l.sold, Available: model.TicketCount - l.sold}, nil
}
func (l *ledgerStub) Purchase(context.Context, uint64, model.BuyerData) (uint64, error) {
	l.sold++
	return uint64(l.sold), nil
}
func (l *ledgerStub) ListBuyers(context.Context) ([]model.Buyer, error)         { return nil, nil }
func (l *ledgerStub) PaymentStats(context.Context) (model.PaymentStats, error) { return model.PaymentStats{}, nil }
func (l *ledgerStub) SetPaid(context.Context, uint64, bool) (model.PaymentState, error) {
	return model.PaymentState{}, nil
}
func (l *ledgerStub) ResetAll(context.Context) (int64, error)           { return 0, nil }
func (l *ledgerStub) ReleaseTicket(context.Context, uint64) (int, error) { return 0, nil }
func (l *ledgerStub) DeleteBuyer(context.Context, uint64) (int, error)   { return 0, nil }

func TestPurchasePurgesCachedReads(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cacheCfg := config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "rifa:cache"}
	purger := middleware.NewCachePurger(cacheCfg, rdb)
	ledger := &ledgerStub{}

	e := echo.New()
	Register(e, Deps{
		Tickets: handler.NewTicketHandler(ledger, purger),
		Buyers:  handler.NewBuyerHandler(ledger, purger),
		Auth:    handler.NewAuthHandler(nil),
		Admin:   handler.NewAdminHandler(ledger, purger),
		Config:  handler.NewConfigHandler(nil, purger),
		Tokens:  rejectAll{},
		Cache:   middleware.NewRedisCache(cacheCfg, rdb),
	})
	stats := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
		return rec
	}

	assert.Equal(t, "MISS", stats().Header().Get("X-Cache"))
	assert.Equal(t, "HIT", stats().Header().Get("X-Cache"))

	body := `{"numero_documento":"1","nombres":"Ana","apellidos":"Ruiz","telefono":"555","correo":"a@b.co"}`
	req := httptest.NewRequest(http.MethodPost, "/api/purchase/5", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	after := stats()
	assert.Equal(t, "MISS", after.Header().Get("X-Cache"))
	assert.Contains(t, after.Body.String(), `"vendidos":1`)
}

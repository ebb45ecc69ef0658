package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/raffle-ticket-sales/internal/middleware"
	"github.com/iliyamo/raffle-ticket-sales/internal/service"
)

// requestTimeout bounds the database work of one request.
const requestTimeout = 5 * time.Second

// Response is the body of every JSON reply.
type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Data    any      `json:"data,omitempty"`
	Details []string `json:"details,omitempty"`
}

// CacheInvalidator drops cached public reads after a ledger write.
type CacheInvalidator interface {
	Purge(ctx context.Context)
}

type noopInvalidator struct{}

func (noopInvalidator) Purge(context.Context) {}

func orNoop(inv CacheInvalidator) CacheInvalidator {
	if inv == nil {
		return noopInvalidator{}
	}
	return inv
}

func ok(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, Response{Error: msg})
}

// statusFor maps an error kind to its HTTP status.  Conflicts are reported as
// 400 to match what existing clients expect for "already sold".
func statusFor(k service.Kind) int {
	switch k {
	case service.KindValidation, service.KindConflict:
		return http.StatusBadRequest
	case service.KindAuth:
		return http.StatusUnauthorized
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail renders err.  Internal failures are logged with the request id and
// answered with a generic message.
func fail(c echo.Context, err error) error {
	kind := service.KindOf(err)
	status := statusFor(kind)
	if kind == service.KindInternal {
		zap.L().Error("request failed",
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.JSON(status, Response{Error: "internal server error"})
	}
	var se *service.Error
	if errors.As(err, &se) {
		return c.JSON(status, Response{Error: se.Message, Details: se.Details})
	}
	return c.JSON(status, Response{Error: http.StatusText(status)})
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func currentUser(c echo.Context) (uint64, error) {
	uid, ok := middleware.UserID(c)
	if !ok {
		return 0, &service.Error{Kind: service.KindAuth, Message: "not authenticated"}
	}
	return uid, nil
}

func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

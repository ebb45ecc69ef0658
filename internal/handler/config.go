package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raffle-ticket-sales/internal/model"
)

// ConfigService reads and edits the raffle configuration.
type ConfigService interface {
	Get(ctx context.Context) (model.RaffleConfig, error)
	Update(ctx context.Context, p model.RaffleConfigPatch) (model.RaffleConfig, error)
	UpdateField(ctx context.Context, name string, raw json.RawMessage) (model.RaffleConfig, error)
}

type ConfigHandler struct {
	Config ConfigService
	Cache  CacheInvalidator
}

func NewConfigHandler(s ConfigService, cache CacheInvalidator) *ConfigHandler {
	return &ConfigHandler{Config: s, Cache: orNoop(cache)}
}

func (h *ConfigHandler) Get(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	cfg, err := h.Config.Get(ctx)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "", cfg)
}

// Update applies the fields present in the body.
func (h *ConfigHandler) Update(c echo.Context) error {
	var p model.RaffleConfigPatch
	if err := c.Bind(&p); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	cfg, err := h.Config.Update(ctx, p)
	if err != nil {
		return fail(c, err)
	}
	h.Cache.Purge(ctx)
	return ok(c, http.StatusOK, "configuration updated", cfg)
}

type fieldReq struct {
	Value json.RawMessage `json:"valor"`
}

// UpdateField sets the single field named in the path from {"valor": ...}.
func (h *ConfigHandler) UpdateField(c echo.Context) error {
	var req fieldReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	cfg, err := h.Config.UpdateField(ctx, c.Param("campo"), req.Value)
	if err != nil {
		return fail(c, err)
	}
	h.Cache.Purge(ctx)
	return ok(c, http.StatusOK, "configuration updated", cfg)
}

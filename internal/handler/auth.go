package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raffle-ticket-sales/internal/model"
	"github.com/iliyamo/raffle-ticket-sales/internal/service"
)

// AuthService is the account and session API.
type AuthService interface {
	Register(ctx context.Context, req service.RegisterRequest) (uint64, error)
	Login(ctx context.Context, username, password string) (service.LoginResult, error)
	Profile(ctx context.Context, userID uint64) (model.User, error)
	Logout(ctx context.Context, userID uint64, sessionToken string) error
	LogoutAll(ctx context.Context, userID uint64) (int64, error)
	Sessions(ctx context.Context, userID uint64) ([]model.Session, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth AuthService
}

func NewAuthHandler(a AuthService) *AuthHandler {
	return &AuthHandler{Auth: a}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type logoutReq struct {
	SessionToken string `json:"sessionToken"`
}

// Register creates an administrator account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	id, err := h.Auth.Register(ctx, req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, "user registered", echo.Map{"userId": id})
}

// Login verifies credentials and returns an access token plus a session
// token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	res, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "login successful", res)
}

// Profile returns the authenticated user.
func (h *AuthHandler) Profile(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	u, err := h.Auth.Profile(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "", u)
}

// Logout revokes the session named in the body.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}
	var req logoutReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Auth.Logout(ctx, uid, req.SessionToken); err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "session closed", nil)
}

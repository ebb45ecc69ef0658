package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/iliyamo/raffle-ticket-sales/internal/model"
	"github.com/iliyamo/raffle-ticket-sales/internal/repository"
	"github.com/iliyamo/raffle-ticket-sales/internal/utils"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

const minPasswordLen = 6

// RegisterRequest is the input of Register.
type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required,
			validation.Match(usernamePattern).Error("must be 3-50 letters, digits or underscores")),
		validation.Field(&r.Password, validation.Required, validation.Length(minPasswordLen, utils.MaxPasswordBytes)),
		validation.Field(&r.PasswordConfirm, validation.Required),
	)
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	AccessToken  string     `json:"token"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	SessionToken string     `json:"sessionToken"`
	User         model.User `json:"user"`
}

// AuthService handles administrator accounts and their sessions.
type AuthService struct {
	users      *repository.UserRepo
	sessions   *repository.SessionRepo
	tokens     *utils.TokenIssuer
	bcryptCost int

	verify    func(hash, plain string) bool
	dummyOnce sync.Once
	dummy     string // hash compared on unknown usernames
}

func NewAuthService(users *repository.UserRepo, sessions *repository.SessionRepo, tokens *utils.TokenIssuer, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		verify:     utils.VerifyPassword,
	}
}

// dummyHash is a bcrypt hash at the configured cost.  Checking a password
// against it makes a miss on the username cost as much as a wrong password.
func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummy, _ = utils.HashPassword("no-such-user-placeholder", s.bcryptCost)
	})
	return s.dummy
}

// Register creates an administrator and returns its id.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (uint64, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := req.Validate(); err != nil {
		return 0, validationErr("invalid registration data", err, fieldDetails(err)...)
	}
	if req.Password != req.PasswordConfirm {
		return 0, validationErr("passwords do not match", nil)
	}

	exists, err := s.users.Exists(ctx, req.Username)
	if err != nil {
		return 0, internalErr("check username", err)
	}
	if exists {
		return 0, conflictErr("username already exists", repository.ErrUsernameExists)
	}

	hash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return 0, internalErr("hash password", err)
	}
	id, err := s.users.Create(ctx, req.Username, hash)
	if errors.Is(err, repository.ErrUsernameExists) {
		return 0, conflictErr("username already exists", err)
	}
	if err != nil {
		return 0, internalErr("create user", err)
	}
	return id, nil
}

// Login checks credentials, issues an access token and opens a session.
// Unknown users and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, validationErr("username and password are required", nil)
	}

	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		s.verify(s.dummyHash(), password)
		return LoginResult{}, authErr("invalid credentials")
	}
	if err != nil {
		return LoginResult{}, internalErr("load user", err)
	}
	if !s.verify(u.PasswordHash, password) {
		return LoginResult{}, authErr("invalid credentials")
	}

	at, err := s.tokens.Issue(u.ID)
	if err != nil {
		return LoginResult{}, internalErr("issue token", err)
	}
	sessionToken, err := utils.NewSessionToken()
	if err != nil {
		return LoginResult{}, internalErr("generate session token", err)
	}
	if err := s.sessions.Create(ctx, u.ID, sessionToken); err != nil {
		return LoginResult{}, internalErr("create session", err)
	}
	return LoginResult{AccessToken: at.Token, ExpiresAt: at.Exp, SessionToken: sessionToken, User: u}, nil
}

// Profile returns the user behind an access token.
func (s *AuthService) Profile(ctx context.Context, userID uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return u, notFoundErr("user not found", err)
	}
	if err != nil {
		return u, internalErr("load user", err)
	}
	return u, nil
}

// Logout revokes one session of the user.
func (s *AuthService) Logout(ctx context.Context, userID uint64, sessionToken string) error {
	sessionToken = strings.TrimSpace(sessionToken)
	if sessionToken == "" {
		return validationErr("sessionToken is required", nil)
	}
	err := s.sessions.Delete(ctx, userID, sessionToken)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return notFoundErr("session not found", err)
	}
	if err != nil {
		return internalErr("delete session", err)
	}
	return nil
}

// LogoutAll revokes every session of the user and returns how many there
// were.  Zero is not an error.
func (s *AuthService) LogoutAll(ctx context.Context, userID uint64) (int64, error) {
	n, err := s.sessions.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, internalErr("delete sessions", err)
	}
	return n, nil
}

// Sessions lists the user's sessions, newest first.
func (s *AuthService) Sessions(ctx context.Context, userID uint64) ([]model.Session, error) {
	out, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, internalErr("list sessions", err)
	}
	return out, nil
}

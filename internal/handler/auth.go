package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticket-booking/internal/config"
	"github.com/iliyamo/cinema-ticket-booking/internal/middleware"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
	"github.com/iliyamo/cinema-ticket-booking/internal/repository"
	"github.com/iliyamo/cinema-ticket-booking/internal/utils"
)

// UserStore is the account persistence used by the auth endpoints.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
	log    *slog.Logger
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore, log *slog.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, log: log}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=191"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

const roleCustomer = "CUSTOMER"

// Register creates a customer account and returns a token pair.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.log, err, http.StatusBadRequest)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return h.internal(c, "hash password", err)
	}
	u := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         roleCustomer,
		IsActive:     true,
	}
	u.ID, err = h.Users.Create(ctx, u)
	if errors.Is(err, repository.ErrConflict) {
		return fail(c, http.StatusConflict, "Email already registered", nil)
	}
	if err != nil {
		return h.internal(c, "create user", err)
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return h.internal(c, "issue tokens", err)
	}
	return ok(c, http.StatusCreated, resp, "Registered")
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.log, err, http.StatusBadRequest)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrUserNotFound) {
		return fail(c, http.StatusUnauthorized, "Invalid credentials", nil)
	}
	if err != nil {
		return h.internal(c, "load user", err)
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "Invalid credentials", nil)
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return h.internal(c, "issue tokens", err)
	}
	return ok(c, http.StatusOK, resp, "Logged in")
}

// Refresh rotates a refresh token: the presented token is revoked and a
// new pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.log, err, http.StatusBadRequest)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))
	userID, err := h.Tokens.ValidateRefresh(ctx, hash, time.Now())
	if errors.Is(err, repository.ErrTokenInvalid) {
		return fail(c, http.StatusUnauthorized, "Invalid refresh token", nil)
	}
	if err != nil {
		return h.internal(c, "validate refresh", err)
	}
	// Only the request that actually revokes the token may rotate it.
	err = h.Tokens.RevokeByHash(ctx, hash)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return fail(c, http.StatusUnauthorized, "Invalid refresh token", nil)
	}
	if err != nil {
		return h.internal(c, "revoke refresh", err)
	}
	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return fail(c, http.StatusUnauthorized, "Invalid refresh token", nil)
	}
	if err != nil {
		return h.internal(c, "load user", err)
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return h.internal(c, "issue tokens", err)
	}
	return ok(c, http.StatusOK, resp, "Token refreshed")
}

// Logout revokes a refresh token.  Access tokens stay valid until they
// expire.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.log, err, http.StatusBadRequest)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken)))
	if errors.Is(err, repository.ErrTokenInvalid) {
		return fail(c, http.StatusUnauthorized, "Invalid refresh token", nil)
	}
	if err != nil {
		return h.internal(c, "revoke refresh", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated identity.
func (h *AuthHandler) Me(c echo.Context) error {
	id, found := middleware.UserID(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Unauthenticated", nil)
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return fail(c, http.StatusUnauthorized, "Unauthenticated", nil)
	}
	if err != nil {
		return h.internal(c, "load user", err)
	}
	return ok(c, http.StatusOK, userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}, "Current user")
}

func (h *AuthHandler) issue(ctx context.Context, u *model.User) (*authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &authResp{
		User:    userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

func (h *AuthHandler) internal(c echo.Context, op string, err error) error {
	h.log.ErrorContext(c.Request().Context(), "auth: "+op+" failed", slog.Any("err", err))
	return fail(c, http.StatusInternalServerError, "Something went wrong", nil)
}

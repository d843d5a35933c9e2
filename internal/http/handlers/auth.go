package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type Registerer interface {
	Register(ctx context.Context, in user.RegisterInput) user.Result
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) user.Result
	Logout(ctx context.Context)
}

type AuthService interface {
	Registerer
	Authenticator
}

// Invalidator drops cached user listings after a write.
type Invalidator interface {
	Delete(key string)
}

type AuthHandler struct {
	accounts AuthService
	cache    Invalidator
}

func NewAuthHandler(accounts AuthService, cache Invalidator) *AuthHandler {
	RegisterValidators()

	return &AuthHandler{
		accounts: accounts,
		cache:    cache,
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	res := h.accounts.Register(ctx.Request.Context(), req.Input())

	if !res.Success {
		RespondResultError(ctx, res)
		return
	}

	if h.cache != nil {
		h.cache.Delete(usersListCacheKey)
	}

	// the new record goes back without its credentials; json drops the hash
	RespondResult(ctx, http.StatusCreated, res)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	res := h.accounts.Login(ctx.Request.Context(), req.Email, req.Password)

	if !res.Success {
		RespondResultError(ctx, res)
		return
	}

	RespondResult(ctx, http.StatusOK, res)
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.accounts.Logout(ctx.Request.Context())

	ctx.Status(http.StatusNoContent)
}

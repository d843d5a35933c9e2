package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const usersListCacheKey = "users:list"

type UsersService interface {
	GetAllUsers(ctx context.Context) ([]user.User, error)
	UpdateUser(ctx context.Context, id string, in user.UpdateInput) user.Result
	DeleteUser(ctx context.Context, id string) user.Result
}

type ListCache interface {
	Get(key string) (any, bool)
	Generation() uint64
	SetIfGeneration(key string, val any, gen uint64) bool
	Delete(key string)
}

type UsersHandler struct {
	users UsersService
	cache ListCache
}

// NewUsersHandler builds the user management handler. cache may be nil.
func NewUsersHandler(users UsersService, cache ListCache) *UsersHandler {
	RegisterValidators()

	return &UsersHandler{users: users, cache: cache}
}

type usersListResponse struct {
	Items []user.User `json:"items"`
	Count int         `json:"count"`
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	var gen uint64

	if h.cache != nil {
		if v, ok := h.cache.Get(usersListCacheKey); ok {
			if resp, ok := v.(usersListResponse); ok {
				RespondJSONWithETag(ctx, http.StatusOK, resp)
				return
			}
		}
		gen = h.cache.Generation()
	}

	users, err := h.users.GetAllUsers(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	resp := usersListResponse{Items: users, Count: len(users)}

	if h.cache != nil {
		h.cache.SetIfGeneration(usersListCacheKey, resp, gen)
	}

	RespondJSONWithETag(ctx, http.StatusOK, resp)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	res := h.users.UpdateUser(ctx.Request.Context(), ctx.Param("id"), req.Input())

	if !res.Success {
		RespondResultError(ctx, res)
		return
	}

	h.invalidate()
	RespondResult(ctx, http.StatusOK, res)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	res := h.users.DeleteUser(ctx.Request.Context(), ctx.Param("id"))

	if !res.Success {
		RespondResultError(ctx, res)
		return
	}

	h.invalidate()
	RespondResult(ctx, http.StatusOK, res)
}

func (h *UsersHandler) invalidate() {
	if h.cache != nil {
		h.cache.Delete(usersListCacheKey)
	}
}

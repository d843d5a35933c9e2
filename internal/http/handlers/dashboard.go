package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type DashboardSource interface {
	CountUsers(ctx context.Context) (int, error)
	CurrentUser() (user.User, bool)
}

type DashboardHandler struct {
	src DashboardSource
}

func NewDashboardHandler(src DashboardSource) *DashboardHandler {
	return &DashboardHandler{src: src}
}

func (h *DashboardHandler) Stats(ctx *gin.Context) {
	n, err := h.src.CountUsers(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	body := gin.H{
		"usersCount": n,
		"loggedIn":   false,
	}

	if current, ok := h.src.CurrentUser(); ok {
		body["loggedIn"] = true
		body["currentUser"] = current
	}

	ctx.JSON(http.StatusOK, body)
}

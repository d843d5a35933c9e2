package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/geocoder89/userhub/internal/session"
	"github.com/gin-gonic/gin"
)

type SessionSource interface {
	State() session.State
	Subscribe(buffer int) (<-chan session.State, func())
}

// StreamObserver is told when a session stream opens and closes.
type StreamObserver interface {
	SessionStreamOpened()
	SessionStreamClosed()
}

type SessionHandler struct {
	session   SessionSource
	observer  StreamObserver
	heartbeat time.Duration
}

func NewSessionHandler(src SessionSource, observer StreamObserver, heartbeat time.Duration) *SessionHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}

	return &SessionHandler{session: src, observer: observer, heartbeat: heartbeat}
}

func (h *SessionHandler) Current(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.session.State())
}

// Stream pushes the session state as server-sent events: the current state
// first, then every login and logout. Comment lines keep idle proxies open.
func (h *SessionHandler) Stream(ctx *gin.Context) {
	states, cancel := h.session.Subscribe(8)
	defer cancel()

	if h.observer != nil {
		h.observer.SessionStreamOpened()
		defer h.observer.SessionStreamClosed()
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	done := ctx.Request.Context().Done()

	ctx.Stream(func(w io.Writer) bool {
		select {
		case st, ok := <-states:
			if !ok {
				return false
			}
			ctx.SSEvent("session", st)
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": ping\n\n")
			return err == nil
		case <-done:
			return false
		}
	})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondResult writes a successful store result.
func RespondResult(ctx *gin.Context, status int, res user.Result) {
	ctx.JSON(status, res)
}

// RespondResultError maps a failed store result onto a status and error code.
// The body keeps the result shape so screens can show the message as is.
func RespondResultError(ctx *gin.Context, res user.Result) {
	status, code := resultStatus(res.Err)

	if status == http.StatusInternalServerError {
		_ = ctx.Error(res.Err)
	}

	ctx.JSON(status, gin.H{
		"success": false,
		"message": res.Message,
		"error": APIError{
			Code:      code,
			Message:   res.Message,
			RequestID: requestIDFrom(ctx),
		},
	})
}

func resultStatus(err error) (int, string) {
	switch {
	case errors.Is(err, user.ErrDuplicateEmail), errors.Is(err, user.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found"
	case errors.Is(err, user.ErrInvalidPassword):
		return http.StatusUnauthorized, "invalid_password"
	case errors.Is(err, user.ErrPasswordTooLong):
		return http.StatusBadRequest, "password_too_long"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

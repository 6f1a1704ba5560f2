// Package handlers implements the HTTP endpoints. Handlers validate input,
// resolve the caller's client session and delegate to the session's
// components or to services; every failure is written as an ErrorResponse.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mokayaj857/vireya/internal/apiclient"
	"github.com/mokayaj857/vireya/internal/http/middleware"
	"github.com/mokayaj857/vireya/internal/session"
)

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go)
	Code string `json:"code" example:"not_found"`
	// Human-readable message, safe to show to users
	Message string `json:"message" example:"resource not found"`
}

// fail aborts with an ErrorResponse. 5xx responses are logged.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Message:   msg,
	})
}

// Fail is fail for the router's fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) { c.JSON(status, body) }

// workspace resolves the :sid route parameter. On failure the response is
// already written and ok is false.
func (h *Handlers) workspace(c *gin.Context) (*session.Workspace, bool) {
	w, err := h.sessions.Get(c.Request.Context(), c.Param(middleware.SessionParam))
	switch {
	case err == nil:
		return w, true
	case errors.Is(err, session.ErrInvalidID):
		fail(c, http.StatusBadRequest, ErrCodeInvalidSession, "session id must be 8-64 characters of [A-Za-z0-9_-]")
	default:
		fail(c, http.StatusServiceUnavailable, ErrCodeInternal, "session unavailable")
	}
	return nil, false
}

// failUpstream maps API client errors: backend HTTP errors keep their
// status when it is a client error and become 502 otherwise.
func failUpstream(c *gin.Context, err error) {
	var he *apiclient.HTTPError
	switch {
	case errors.As(err, &he):
		status := http.StatusBadGateway
		if he.Status >= 400 && he.Status < 500 {
			status = he.Status
		}
		fail(c, status, ErrCodeUpstream, he.Message())
	case apiclient.IsUnreachable(err):
		fail(c, http.StatusBadGateway, ErrCodeUnreachable, "request failed: backend unreachable")
	default:
		fail(c, http.StatusBadGateway, ErrCodeUpstream, err.Error())
	}
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mokayaj857/vireya/internal/apiclient"
	"github.com/mokayaj857/vireya/internal/services"
)

// SupportRequest opens a support ticket.
type SupportRequest struct {
	Subject string `json:"subject" example:"Cannot upload photo"`
	Message string `json:"message" example:"The scan says my image is invalid."`
	Email   string `json:"email,omitempty" example:"jane@example.com"`
}

// passthrough writes the backend payload, or the mapped error.
func passthrough(c *gin.Context, status int, v any, err error) {
	if err != nil {
		failUpstream(c, err)
		return
	}
	if s, isText := v.(string); isText {
		c.String(status, s)
		return
	}
	ok(c, status, v)
}

// Welcome godoc
// @ID          welcome
// @Summary     Backend welcome message
// @Tags        Backend
// @Produce     json
// @Success     200  {object}  map[string]interface{}
// @Failure     502  {object}  handlers.ErrorResponse
// @Router      /welcome [get]
func (h *Handlers) Welcome(c *gin.Context) {
	v, err := h.api.Welcome(c.Request.Context())
	passthrough(c, http.StatusOK, v, err)
}

// AnalyticsSummary godoc
// @ID          analyticsSummary
// @Summary     Backend analytics summary
// @Tags        Backend
// @Produce     json
// @Success     200  {object}  map[string]interface{}
// @Failure     502  {object}  handlers.ErrorResponse
// @Router      /analytics/summary [get]
func (h *Handlers) AnalyticsSummary(c *gin.Context) {
	v, err := h.api.AnalyticsSummary(c.Request.Context())
	passthrough(c, http.StatusOK, v, err)
}

// ContentList godoc
// @ID          contentList
// @Summary     Published content
// @Tags        Backend
// @Produce     json
// @Success     200  {array}   map[string]interface{}
// @Failure     502  {object}  handlers.ErrorResponse
// @Router      /content [get]
func (h *Handlers) ContentList(c *gin.Context) {
	v, err := h.api.ContentList(c.Request.Context())
	passthrough(c, http.StatusOK, v, err)
}

// Overview godoc
// @ID          overview
// @Summary     Landing page bundle
// @Description Welcome, analytics and content fetched concurrently. Failed
// @Description parts are null and listed under errors.
// @Tags        Backend
// @Produce     json
// @Success     200  {object}  services.Overview
// @Router      /overview [get]
func (h *Handlers) Overview(c *gin.Context) {
	ok(c, http.StatusOK, h.insights.Overview(c.Request.Context()))
}

// CreateSupportTicket godoc
// @ID          createSupportTicket
// @Summary     Open a support ticket
// @Tags        Backend
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.SupportRequest  true  "Ticket"
// @Success     201  {object}  map[string]interface{}
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     502  {object}  handlers.ErrorResponse
// @Router      /support [post]
func (h *Handlers) CreateSupportTicket(c *gin.Context) {
	var req SupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	req.Subject, req.Message = strings.TrimSpace(req.Subject), strings.TrimSpace(req.Message)
	if req.Subject == "" || req.Message == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "subject and message are required")
		return
	}
	v, err := h.api.CreateSupportTicket(c.Request.Context(), apiclient.SupportTicket{
		Subject: req.Subject,
		Message: req.Message,
		Email:   strings.TrimSpace(req.Email),
	})
	passthrough(c, http.StatusCreated, v, err)
}

var _ services.Backend = (*apiclient.Client)(nil)

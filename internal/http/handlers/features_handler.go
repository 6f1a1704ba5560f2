package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mokayaj857/vireya/internal/shell"
)

// OpenFeatureRequest selects a feature panel.
type OpenFeatureRequest struct {
	Feature string `json:"feature" binding:"required" example:"scan"`
}

// FeaturesResponse lists the feature catalog.
type FeaturesResponse struct {
	Features []shell.Feature `json:"features"`
}

// ListFeatures godoc
// @ID          listFeatures
// @Summary     Feature catalog
// @Tags        Shell
// @Produce     json
// @Success     200  {object}  handlers.FeaturesResponse
// @Router      /features [get]
func (h *Handlers) ListFeatures(c *gin.Context) {
	ok(c, http.StatusOK, FeaturesResponse{Features: shell.Catalog()})
}

// GetShell godoc
// @ID          getShell
// @Summary     Shell state of a client session
// @Tags        Shell
// @Produce     json
// @Param       sid  path  string  true  "Client session id"
// @Success     200  {object}  shell.State
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /sessions/{sid}/shell [get]
func (h *Handlers) GetShell(c *gin.Context) {
	w, found := h.workspace(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, w.Shell.State())
}

// OpenFeature godoc
// @ID          openFeature
// @Summary     Open a feature panel
// @Description Makes the feature active and closes the picker.
// @Tags        Shell
// @Accept      json
// @Produce     json
// @Param       sid   path  string                        true  "Client session id"
// @Param       body  body  handlers.OpenFeatureRequest   true  "Feature to open"
// @Success     200  {object}  shell.State
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown feature"
// @Router      /sessions/{sid}/shell/open [post]
func (h *Handlers) OpenFeature(c *gin.Context) {
	var req OpenFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "feature is required")
		return
	}
	w, found := h.workspace(c)
	if !found {
		return
	}
	st, err := w.Shell.Open(shell.FeatureID(strings.TrimSpace(req.Feature)))
	if errors.Is(err, shell.ErrUnknownFeature) {
		fail(c, http.StatusNotFound, ErrCodeUnknownFeature, "unknown feature "+req.Feature)
		return
	}
	ok(c, http.StatusOK, st)
}

// CloseFeature godoc
// @ID          closeFeature
// @Summary     Close the active feature
// @Description Clears the active feature and reopens the picker.
// @Tags        Shell
// @Produce     json
// @Param       sid  path  string  true  "Client session id"
// @Success     200  {object}  shell.State
// @Router      /sessions/{sid}/shell/close [post]
func (h *Handlers) CloseFeature(c *gin.Context) {
	w, found := h.workspace(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, w.Shell.Close())
}

// TogglePicker godoc
// @ID          togglePicker
// @Summary     Toggle the feature picker
// @Tags        Shell
// @Produce     json
// @Param       sid  path  string  true  "Client session id"
// @Success     200  {object}  shell.State
// @Router      /sessions/{sid}/shell/picker [post]
func (h *Handlers) TogglePicker(c *gin.Context) {
	w, found := h.workspace(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, w.Shell.TogglePicker())
}

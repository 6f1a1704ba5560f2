package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mokayaj857/vireya/internal/upload"
)

// GetScan godoc
// @ID          getScan
// @Summary     Drug scan state
// @Tags        Scan
// @Produce     json
// @Param       sid  path  string  true  "Client session id"
// @Success     200  {object}  upload.State
// @Router      /sessions/{sid}/scan [get]
func (h *Handlers) GetScan(c *gin.Context) {
	w, found := h.workspace(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, w.Scan.State())
}

// SelectScanFile godoc
// @ID          selectScanFile
// @Summary     Select the image to recognize
// @Description Replaces the current file and its preview. The image must be
// @Description image/* and at most 10MB.
// @Tags        Scan
// @Accept      multipart/form-data
// @Produce     json
// @Param       sid   path      string  true  "Client session id"
// @Param       file  formData  file    true  "Pill or package photo"
// @Success     200  {object}  upload.State
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid file"
// @Failure     413  {object}  handlers.ErrorResponse
// @Router      /sessions/{sid}/scan/file [post]
func (h *Handlers) SelectScanFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, upload.ErrTooLarge.Error())
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "file is required")
		return
	}
	w, found := h.workspace(c)
	if !found {
		return
	}

	src, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot read file")
		return
	}
	defer src.Close()
	// one byte over the cap is enough for validation to reject it
	data, err := io.ReadAll(io.LimitReader(src, h.maxUpload+1))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot read file")
		return
	}

	st, err := w.Scan.SelectFile(&upload.File{
		Name:        filepath.Base(fh.Filename),
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	switch {
	case errors.Is(err, upload.ErrClosed):
		fail(c, http.StatusGone, ErrCodeGone, "session expired, reload to start again")
	case err != nil:
		fail(c, http.StatusBadRequest, ErrCodeInvalidFile, st.Error)
	default:
		ok(c, http.StatusOK, st)
	}
}

// ClearScanFile godoc
// @ID          clearScanFile
// @Summary     Clear the selected image
// @Tags        Scan
// @Produce     json
// @Param       sid  path  string  true  "Client session id"
// @Success     200  {object}  upload.State
// @Router      /sessions/{sid}/scan/file [delete]
func (h *Handlers) ClearScanFile(c *gin.Context) {
	w, found := h.workspace(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, w.Scan.Clear())
}

// SubmitScan godoc
// @ID          submitScan
// @Summary     Recognize the selected image
// @Description Waits for the backend and returns the final state. A failed
// @Description recognition is reported in the state, not as an HTTP error.
// @Tags        Scan
// @Produce     json
// @Param       sid  path  string  true  "Client session id"
// @Success     200  {object}  upload.State
// @Failure     409  {object}  handlers.ErrorResponse  "No file or already submitting"
// @Failure     410  {object}  handlers.ErrorResponse  "Session expired"
// @Router      /sessions/{sid}/scan/submit [post]
func (h *Handlers) SubmitScan(c *gin.Context) {
	w, found := h.workspace(c)
	if !found {
		return
	}
	st, err := w.Scan.Submit(c.Request.Context())
	switch {
	case errors.Is(err, upload.ErrNotSelected):
		fail(c, http.StatusConflict, ErrCodeNoFile, "please select an image first")
	case errors.Is(err, upload.ErrInFlight):
		fail(c, http.StatusConflict, ErrCodeInFlight, err.Error())
	case errors.Is(err, upload.ErrSuperseded):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, upload.ErrClosed):
		fail(c, http.StatusGone, ErrCodeGone, "session expired, reload to start again")
	default:
		ok(c, http.StatusOK, st)
	}
}

// GetPreview godoc
// @ID          getPreview
// @Summary     Preview bytes of a selected image
// @Tags        Scan
// @Produce     image/png
// @Param       token  path  string  true  "Preview token"
// @Success     200  {file}    binary
// @Failure     404  {object}  handlers.ErrorResponse  "Revoked or unknown"
// @Router      /previews/{token} [get]
func (h *Handlers) GetPreview(c *gin.Context) {
	pv, found := h.previews.Open(c.Param("token"))
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "preview not found")
		return
	}
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, pv.ContentType, pv.Data)
}

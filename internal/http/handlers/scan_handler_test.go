package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/mokayaj857/vireya/internal/apiclient"
	"github.com/mokayaj857/vireya/internal/recognition"
	"github.com/mokayaj857/vireya/internal/upload"
)

func TestScan_SelectPreviewSubmit(t *testing.T) {
	h := newHarness(t)

	w := h.upload("pill.png", "image/png", pngMagic)
	if w.Code != http.StatusOK {
		t.Fatalf("select = %d %s", w.Code, w.Body.String())
	}
	st := decode[upload.State](t, w)
	if st.Status != upload.StatusSelected || st.File == nil || st.File.Name != "pill.png" {
		t.Fatalf("state = %+v", st)
	}
	if !strings.HasPrefix(st.PreviewURL, "/api/v1/previews/") {
		t.Fatalf("preview url = %q", st.PreviewURL)
	}

	token := strings.TrimPrefix(st.PreviewURL, "/api/v1/previews/")
	pv := h.do(http.MethodGet, "/previews/"+token, nil)
	if pv.Code != http.StatusOK || pv.Header().Get("Content-Type") != "image/png" || pv.Body.Len() != len(pngMagic) {
		t.Fatalf("preview = %d %q %d", pv.Code, pv.Header().Get("Content-Type"), pv.Body.Len())
	}

	w = h.do(http.MethodPost, "/sessions/"+sid+"/scan/submit", nil)
	st = decode[upload.State](t, w)
	if w.Code != http.StatusOK || st.Status != upload.StatusSucceeded || st.Result == nil || st.Result.DrugName != "Paracetamol" {
		t.Fatalf("submit = %d %+v", w.Code, st)
	}

	w = h.do(http.MethodDelete, "/sessions/"+sid+"/scan/file", nil)
	if st = decode[upload.State](t, w); st.Status != upload.StatusIdle || st.File != nil {
		t.Fatalf("clear = %+v", st)
	}
	expectError(t, h.do(http.MethodGet, "/previews/"+token, nil), http.StatusNotFound, ErrCodeNotFound)
}

func TestScan_RejectsNonImage(t *testing.T) {
	h := newHarness(t)
	expectError(t, h.upload("notes.txt", "text/plain", []byte("hello")), http.StatusBadRequest, ErrCodeInvalidFile)

	st := decode[upload.State](t, h.do(http.MethodGet, "/sessions/"+sid+"/scan", nil))
	if st.Status != upload.StatusFailed || st.Error != upload.ErrInvalidType.Error() {
		t.Fatalf("state = %+v", st)
	}
}

func TestScan_SubmitWithoutFile(t *testing.T) {
	h := newHarness(t)
	expectError(t, h.do(http.MethodPost, "/sessions/"+sid+"/scan/submit", nil), http.StatusConflict, ErrCodeNoFile)
}

func TestScan_MissingFormFile(t *testing.T) {
	h := newHarness(t)
	expectError(t, h.do(http.MethodPost, "/sessions/"+sid+"/scan/file", map[string]string{}), http.StatusBadRequest, ErrCodeBadRequest)
}

func TestScan_RecognitionFailureIsState(t *testing.T) {
	h := newHarness(t)
	h.recognize = func(context.Context, upload.File) (*recognition.Result, error) {
		return nil, &apiclient.HTTPError{Status: http.StatusBadRequest, Body: map[string]any{"detail": "image too blurry"}}
	}
	h.upload("pill.png", "image/png", pngMagic)

	w := h.do(http.MethodPost, "/sessions/"+sid+"/scan/submit", nil)
	st := decode[upload.State](t, w)
	if w.Code != http.StatusOK || st.Status != upload.StatusFailed || st.Error != "image too blurry" {
		t.Fatalf("submit = %d %+v", w.Code, st)
	}

	// a failed submission keeps the file, so it can be retried
	h.recognize = func(context.Context, upload.File) (*recognition.Result, error) {
		return nil, errors.New("still failing")
	}
	st = decode[upload.State](t, h.do(http.MethodPost, "/sessions/"+sid+"/scan/submit", nil))
	if st.Status != upload.StatusFailed || st.File == nil {
		t.Fatalf("retry = %+v", st)
	}
}

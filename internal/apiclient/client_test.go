package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"
)

func newServer(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", opts...)
}

func TestGet_JSONBodyDecoded(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != PathWelcome {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"message":"hello","count":3}`)
	})
	got, err := c.Welcome(context.Background())
	if err != nil {
		t.Fatalf("Welcome: %v", err)
	}
	want := map[string]any{"message": "hello", "count": json.Number("3")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestGet_PlainTextAndEmptyBodies(t *testing.T) {
	body := "pong"
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	})
	got, err := c.Get(context.Background(), "/ping")
	if err != nil || got != "pong" {
		t.Fatalf("text body: got %#v, %v", got, err)
	}

	body = `{"a":1} trailing`
	got, _ = c.Get(context.Background(), "/ping")
	if got != body {
		t.Fatalf("JSON with trailing garbage should stay text, got %#v", got)
	}

	body = ""
	got, err = c.Get(context.Background(), "/ping")
	if err != nil || got != nil {
		t.Fatalf("empty body: got %#v, %v", got, err)
	}
}

func TestHTTPError_JSONBodyPreserved(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"not found"}`)
	})
	_, err := c.Get(context.Background(), "/api/missing/")
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %T %v", err, err)
	}
	if he.Status != 404 {
		t.Fatalf("status = %d", he.Status)
	}
	if !reflect.DeepEqual(he.Body, map[string]any{"detail": "not found"}) {
		t.Fatalf("body = %#v", he.Body)
	}
	if he.Message() != "not found" {
		t.Fatalf("message = %q", he.Message())
	}
	if StatusOf(err) != 404 || IsUnreachable(err) {
		t.Fatal("helpers disagree with error kind")
	}
}

func TestHTTPError_EmptyBodyPlaceholder(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.Get(context.Background(), "/boom")
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if he.Status != 500 || he.Body != "" {
		t.Fatalf("status/body = %d %#v", he.Status, he.Body)
	}
	if he.Message() != "HTTP 500" {
		t.Fatalf("message = %q", he.Message())
	}
}

func TestHTTPError_TextBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	})
	_, err := c.Get(context.Background(), "/x")
	var he *HTTPError
	if !errors.As(err, &he) || he.Body != "upstream down" || he.Message() != "upstream down" {
		t.Fatalf("unexpected error %#v", err)
	}
	if !strings.Contains(err.Error(), "HTTP 502") {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := New(base).Get(context.Background(), PathWelcome)
	if !IsUnreachable(err) {
		t.Fatalf("expected UnreachableError, got %T %v", err, err)
	}
	if StatusOf(err) != 0 {
		t.Fatal("unreachable errors carry no status")
	}
	var ue *UnreachableError
	errors.As(err, &ue)
	if ue.Unwrap() == nil || ue.Method != http.MethodGet {
		t.Fatalf("unexpected %+v", ue)
	}
}

func TestBadPathIsNotUnreachable(t *testing.T) {
	calls := 0
	c := newServer(t, func(http.ResponseWriter, *http.Request) { calls++ })

	_, err := c.Get(context.Background(), "/bad\npath")
	if err == nil || IsUnreachable(err) || StatusOf(err) != 0 {
		t.Fatalf("err = %T %v", err, err)
	}
	if !strings.Contains(err.Error(), "build request") {
		t.Fatalf("err = %v", err)
	}
	if calls != 0 {
		t.Fatalf("server was called %d times", calls)
	}
}

func TestTimeoutOption(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() { close(release); srv.Close() })

	_, err := New(srv.URL, WithTimeout(50*time.Millisecond)).Get(context.Background(), "/slow")
	if !IsUnreachable(err) {
		t.Fatalf("expected timeout to surface as unreachable, got %v", err)
	}
}

func TestPost_JSONBodyAndHeaders(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathSupport || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		if r.Header.Get(HeaderAPIKey) != "k-123" {
			t.Errorf("missing api key header")
		}
		var got SupportTicket
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		if got != (SupportTicket{Subject: "Hi", Message: "Help", Email: "a@b.c"}) {
			t.Errorf("ticket = %+v", got)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":7,"status":"open"}`)
	}, WithHeader(HeaderAPIKey, "k-123"))

	got, err := c.CreateSupportTicket(context.Background(), SupportTicket{Subject: "Hi", Message: "Help", Email: " a@b.c "})
	if err != nil {
		t.Fatalf("CreateSupportTicket: %v", err)
	}
	if m, ok := got.(map[string]any); !ok || m["status"] != "open" {
		t.Fatalf("got %#v", got)
	}
}

func TestPostMultipart_FileAndExtraFields(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		f, hdr, err := r.FormFile(FileField)
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if string(data) != "\xff\xd8\xffimage" || hdr.Filename != "pill.jpg" {
			t.Errorf("file = %q %q", hdr.Filename, data)
		}
		if ct := hdr.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("part content-type = %q", ct)
		}
		if r.FormValue("source") != "scan" {
			t.Errorf("extra field missing")
		}
		_, _ = io.WriteString(w, `{"drugName":"Paracetamol","confidence":0.92}`)
	})
	got, err := c.RecognizeDrug(context.Background(), File{
		Name:        "pill.jpg",
		ContentType: "image/jpeg",
		Content:     strings.NewReader("\xff\xd8\xffimage"),
	}, map[string]string{"source": "scan"})
	if err != nil {
		t.Fatalf("RecognizeDrug: %v", err)
	}
	m := got.(map[string]any)
	if m["drugName"] != "Paracetamol" || m["confidence"] != json.Number("0.92") {
		t.Fatalf("got %#v", m)
	}
}

func TestEndpointPaths(t *testing.T) {
	var seen []string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Path)
		_, _ = io.WriteString(w, "{}")
	})
	ctx := context.Background()
	_, _ = c.AnalyticsSummary(ctx)
	_, _ = c.ContentList(ctx)
	want := []string{PathAnalyticsSummary, PathContent}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("paths = %v", seen)
	}
	if strings.HasSuffix(c.BaseURL(), "/") {
		t.Fatalf("base url not trimmed: %q", c.BaseURL())
	}
}

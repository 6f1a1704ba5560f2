// Package apiclient is a thin HTTP wrapper around the Vireya backend API.
//
// Every call is a single best-effort attempt: no retries and no caching. The
// response body is read in full as text first; a non-empty body is decoded
// as JSON when possible, otherwise the text is returned as is. Non-2xx
// answers become *HTTPError and transport failures become *UnreachableError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// FileField is the multipart field carrying the uploaded file.
const FileField = "file"

// HeaderAPIKey carries the upstream credential when one is configured.
const HeaderAPIKey = "X-API-Key"

var tracer = otel.Tracer("apiclient")

// File is an upload part.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Client talks to one backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
	header  http.Header
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every call. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Add(key, value) }
}

// WithLogger sets the logger used for debug call traces.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client rooted at baseURL. Paths passed to the request
// methods are appended to it verbatim.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		header:  http.Header{},
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the configured base.
func (c *Client) BaseURL() string { return c.baseURL }

// Get issues GET path.
func (c *Client) Get(ctx context.Context, path string) (any, error) {
	return c.do(ctx, http.MethodGet, path, nil, "")
}

// Post issues POST path with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any) (any, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), "application/json")
}

// PostMultipart issues POST path with a multipart body holding file under
// FileField plus the extra string fields.
func (c *Client) PostMultipart(ctx context.Context, path string, file File, extra map[string]string) (any, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FileField, file.Name))
	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if file.Content != nil {
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, fmt.Errorf("copy file part: %w", err)
		}
	}
	for k, v := range extra {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (any, error) {
	url := c.baseURL + path
	ctx, span := tracer.Start(ctx, "apiclient."+strings.ToLower(method))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", url),
	)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unreachable")
		c.log.Debug().Err(err).Str("method", method).Str("url", url).Msg("upstream unreachable")
		return nil, &UnreachableError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, &UnreachableError{Method: method, URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.log.Debug().
		Str("method", method).
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Dur("took", time.Since(start)).
		Msg("upstream call")

	value := decodeBody(string(raw))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if value == nil {
			value = ""
		}
		span.SetStatus(codes.Error, resp.Status)
		return nil, &HTTPError{Status: resp.StatusCode, Body: value}
	}
	return value, nil
}

// decodeBody returns the JSON value of text, the text itself when it is not
// JSON, or nil when it is empty. Numbers stay json.Number.
func decodeBody(text string) any {
	if text == "" {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return text
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return text
	}
	return v
}

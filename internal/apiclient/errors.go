package apiclient

import (
	"errors"
	"fmt"
	"strings"
)

// HTTPError is returned when the upstream answered with a non-2xx status.
// Body holds the decoded JSON value when the response parsed, otherwise the
// raw text ("" for an empty body).
type HTTPError struct {
	Status int
	Body   any
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message())
}

// Message is the most useful human-readable detail the upstream supplied.
// It falls back to "HTTP <status>" when the body carries nothing usable.
func (e *HTTPError) Message() string {
	switch b := e.Body.(type) {
	case string:
		if s := strings.TrimSpace(b); s != "" {
			return s
		}
	case map[string]any:
		for _, k := range []string{"detail", "message", "error"} {
			if s, ok := b[k].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
		if len(b) > 0 {
			return fmt.Sprint(b)
		}
	case nil:
	default:
		return fmt.Sprint(b)
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// UnreachableError is returned when no response was received at all.
type UnreachableError struct {
	Method string
	URL    string
	Err    error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("request failed: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// IsUnreachable reports whether err is, or wraps, an UnreachableError.
func IsUnreachable(err error) bool {
	var ue *UnreachableError
	return errors.As(err, &ue)
}

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

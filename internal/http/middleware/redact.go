package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

// RedactOptions lists extra header names whose values are masked entirely,
// on top of Authorization, Cookie and Set-Cookie.
type RedactOptions struct {
	MaskHeaders []string
}

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Subscription phone numbers: optional +, 7 to 15 digits with separators.
	phoneRE = regexp.MustCompile(`(?:\+|%2[bB])?\d(?:[ .\-()]|%20)*(?:\d(?:[ .\-()]|%20)*){5,13}\d`)
)

type redactor struct {
	masked map[string]bool
}

func newRedactor(opts RedactOptions) redactor {
	m := map[string]bool{"authorization": true, "cookie": true, "set-cookie": true}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			m[h] = true
		}
	}
	return redactor{masked: m}
}

// scrub replaces identifiers in s. UUIDs go first so the phone pattern
// cannot eat their digit runs.
func (r redactor) scrub(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

func (r redactor) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if r.masked[strings.ToLower(k)] {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = r.scrub(strings.Join(vv, ", "))
	}
	return out
}

package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client's retry key on chat sends.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // message id recorded for the key
	ctxKeyRateBypass = "rate.bypass"
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the key validated by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s, _ := c.Value(ctxKeyIdemKey).(string)
	return s, s != ""
}

// ReplayOf returns the message id a previous request with the same key
// produced, when there is one.
func ReplayOf(c *gin.Context) (string, bool) {
	s, _ := c.Value(ctxKeyIdemReplay).(string)
	return s, s != ""
}

// IdempotencyOptions tunes key validation. Zero values pick a 200 byte cap
// and a token-character pattern.
type IdempotencyOptions struct {
	MaxLen  int
	Pattern *regexp.Regexp
}

// ReplayLookup finds the message id stored for (sessionID, key). Expired or
// missing records report false.
type ReplayLookup func(ctx context.Context, sessionID, key string) (messageID string, ok bool)

// IdempotencyValidator checks the Idempotency-Key header of unsafe requests
// and stashes it. When lookup knows the key for the request's session, the
// request is marked as a replay and exempted from rate limiting; the handler
// decides what to answer.
func IdempotencyValidator(opts IdempotencyOptions, lookup ReplayLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if sid := c.Param(SessionParam); lookup != nil && sid != "" {
			if msgID, ok := lookup(c.Request.Context(), sid, key); ok {
				c.Set(ctxKeyIdemReplay, msgID)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

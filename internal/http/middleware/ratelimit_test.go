package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/time/rate"
)

func TestKeyFuncs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var ipKey, sidKey, plainKey string
	r.GET("/sessions/:sid/x", func(c *gin.Context) {
		ipKey, sidKey = KeyByIP()(c), KeyBySession()(c)
	})
	r.GET("/features", func(c *gin.Context) { plainKey = KeyBySession()(c) })

	req := httptest.NewRequest(http.MethodGet, "/sessions/tab-12345678/x", nil)
	req.RemoteAddr = net.JoinHostPort("203.0.113.9", "12345")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/features", nil))

	if ipKey != "ip:203.0.113.9" || sidKey != "sid:tab-12345678" || plainKey != "" {
		t.Fatalf("ip=%q sid=%q plain=%q", ipKey, sidKey, plainKey)
	}
}

func TestGetVisitor_ReuseAndSweep(t *testing.T) {
	rl := NewRateLimiter("t", 2, 0, KeyByIP())
	if rl.burst != 1 {
		t.Fatalf("burst = %d", rl.burst)
	}
	lim := rl.getVisitor("k1")
	if rl.getVisitor("k1") != lim {
		t.Fatal("limiter not reused")
	}

	rl.mu.Lock()
	rl.visitors["old"] = &visitor{limiter: rate.NewLimiter(1, 1), lastSeen: time.Now().Add(-time.Hour)}
	rl.lookups = 4999
	rl.mu.Unlock()
	_ = rl.getVisitor("new")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["old"]; ok {
		t.Fatal("idle bucket survived sweep")
	}
	if _, ok := rl.visitors["new"]; !ok {
		t.Fatal("new bucket missing")
	}
}

func TestHandler_LimitsPerSessionAndBypassesReplays(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter("session-test", 0.5, 1, KeyBySession())

	r := gin.New()
	r.Use(RequestID())
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Replay") != "" {
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	})
	r.Use(rl.Handler())
	r.POST("/sessions/:sid/chat/messages", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	post := func(sid string, replay bool) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions/"+sid+"/chat/messages", nil)
		if replay {
			req.Header.Set("X-Replay", "1")
		}
		r.ServeHTTP(w, req)
		return w
	}

	base := testutil.ToFloat64(rateLimited.WithLabelValues("session-test"))
	if w := post("tab-aaaaaaaa", false); w.Code != http.StatusAccepted {
		t.Fatalf("first = %d", w.Code)
	}
	w := post("tab-aaaaaaaa", false)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second = %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("Retry-After = %q", got)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["code"] != "rate_limited" || body["request_id"] == "" {
		t.Fatalf("body = %s", w.Body.String())
	}
	if w := post("tab-bbbbbbbb", false); w.Code != http.StatusAccepted {
		t.Fatalf("other session = %d", w.Code)
	}
	if w := post("tab-aaaaaaaa", true); w.Code != http.StatusAccepted {
		t.Fatalf("replay = %d", w.Code)
	}
	if got := testutil.ToFloat64(rateLimited.WithLabelValues("session-test")) - base; got != 1 {
		t.Fatalf("rejections = %v", got)
	}
}

package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Upstream.BaseURL != "http://127.0.0.1:8000" {
		t.Fatalf("base url = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Timeout != 0 || cfg.Chat.ReplyTimeout != 0 {
		t.Fatalf("timeouts should default to none: %+v %+v", cfg.Upstream, cfg.Chat)
	}
	if cfg.Chat.ReplyDelay != 1200*time.Millisecond {
		t.Fatalf("reply delay = %v", cfg.Chat.ReplyDelay)
	}
	if cfg.Chat.Location == nil || cfg.Chat.Location.String() != "UTC" {
		t.Fatalf("location = %v", cfg.Chat.Location)
	}
	if cfg.UploadMaxBytes != 10<<20 {
		t.Fatalf("upload max = %d", cfg.UploadMaxBytes)
	}
	if cfg.MaxBodyBytes() != 11<<20 {
		t.Fatalf("max body = %d", cfg.MaxBodyBytes())
	}
	if cfg.Chat.HistoryContext != 10 {
		t.Fatalf("history = %d", cfg.Chat.HistoryContext)
	}
	if cfg.APIBasePath != "/api/v1" || cfg.GinMode != "release" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_OverridesAndNormalization(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("GIN_MODE", "weird")
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("API_BASE_PATH", "api/v2/")
	t.Setenv("API_BASE_URL", "https://api.vireya.example/")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("API_KEY", " secret ")
	t.Setenv("REPLY_DELAY", "10ms")
	t.Setenv("REPLY_TIMEOUT", "2s")
	t.Setenv("CHAT_TIMEZONE", "Africa/Nairobi")
	t.Setenv("UPLOAD_MAX_BYTES", "2048")
	t.Setenv("SESSION_IDLE_TTL", "5m")
	t.Setenv("RATE_RPS", "x")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8088" || cfg.GinMode != "release" || cfg.LogLevel != "warn" || !cfg.LogPretty {
		t.Fatalf("server/logging fields: %+v", cfg)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Fatalf("base path = %q", cfg.APIBasePath)
	}
	if cfg.Upstream.BaseURL != "https://api.vireya.example" || cfg.Upstream.Timeout != 5*time.Second || cfg.Upstream.APIKey != "secret" {
		t.Fatalf("upstream = %+v", cfg.Upstream)
	}
	if cfg.Chat.ReplyDelay != 10*time.Millisecond || cfg.Chat.ReplyTimeout != 2*time.Second {
		t.Fatalf("chat = %+v", cfg.Chat)
	}
	if cfg.Chat.Location.String() != "Africa/Nairobi" {
		t.Fatalf("location = %v", cfg.Chat.Location)
	}
	if cfg.UploadMaxBytes != 2048 || cfg.SessionIdleTTL != 5*time.Minute {
		t.Fatalf("upload/session = %d %v", cfg.UploadMaxBytes, cfg.SessionIdleTTL)
	}
	if cfg.RateRPS != 5.0 {
		t.Fatalf("rate rps should fall back to default, got %v", cfg.RateRPS)
	}
	if want := []string{"https://a.com", "http://b"}; !reflect.DeepEqual(cfg.CORS.AllowedOrigins, want) {
		t.Fatalf("origins = %#v", cfg.CORS.AllowedOrigins)
	}
	if cfg.OTEL.SampleRatio != 0.25 {
		t.Fatalf("sample ratio = %v", cfg.OTEL.SampleRatio)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		env     map[string]string
		wantSub string
	}{
		{map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{map[string]string{"READ_TIMEOUT": "-1s"}, "timeouts"},
		{map[string]string{"MAX_HEADER_BYTES": "-5"}, "MAX_HEADER_BYTES"},
		{map[string]string{"API_BASE_URL": "ftp://x"}, "API_BASE_URL"},
		{map[string]string{"API_BASE_URL": "/relative"}, "API_BASE_URL"},
		{map[string]string{"API_TIMEOUT": "-1s"}, "API_TIMEOUT"},
		{map[string]string{"REPLY_DELAY": "-1ms"}, "REPLY_DELAY"},
		{map[string]string{"CHAT_TIMEZONE": "Mars/Olympus"}, "CHAT_TIMEZONE"},
		{map[string]string{"SUBSCRIPTION_HISTORY": "0"}, "SUBSCRIPTION_HISTORY"},
		{map[string]string{"UPLOAD_MAX_BYTES": "0"}, "UPLOAD_MAX_BYTES"},
		{map[string]string{"SESSION_IDLE_TTL": "-1m"}, "SESSION_IDLE_TTL"},
		{map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{map[string]string{"HSTS_MAX_AGE": "-1h"}, "HSTS_MAX_AGE"},
		{map[string]string{"IDEMPOTENCY_TTL": "-1h"}, "IDEMPOTENCY_TTL"},
		{map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		for k, v := range tc.env {
			t.Setenv(k, v)
		}
		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), tc.wantSub) {
			t.Fatalf("env %v: expected error containing %q, got %v", tc.env, tc.wantSub, err)
		}
		for k := range tc.env {
			t.Setenv(k, "")
		}
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{"": "/", " ": "/", "api": "/api", "/api/": "/api", "///": "/", "/": "/"}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetbool_UnknownFallsBack(t *testing.T) {
	t.Setenv("FLAG_X", "maybe")
	if !getbool("FLAG_X", true) {
		t.Fatal("unknown value should fall back to default")
	}
	t.Setenv("FLAG_X", "off")
	if getbool("FLAG_X", true) {
		t.Fatal("off should be false")
	}
}

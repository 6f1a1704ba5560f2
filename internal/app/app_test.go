package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mokayaj857/vireya/internal/chat"
	"github.com/mokayaj857/vireya/internal/config"
	"github.com/mokayaj857/vireya/internal/domain"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("DB_PATH", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	t.Setenv("REPLY_DELAY", "1ms")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func TestNew_WorkspacePersistsChatLog(t *testing.T) {
	a, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	w, err := a.Sessions.Get(ctx, "tab-00000001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := w.Chat.SendUserMessage(ctx, "I have anxiety"); err != nil {
		t.Fatalf("send: %v", err)
	}
	w.Chat.Wait()

	saved, err := chat.NewJSONPort(w.Storage).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// welcome + user + reply
	if len(saved) != 3 || saved[2].Sender != domain.SenderAI {
		t.Fatalf("saved log = %+v", saved)
	}
}

func TestNew_CustomTopicsFile(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "topics.yaml")
	doc := "topics:\n  - name: pregnancy\n    keywords: [pregnant]\nfallback: [general-health]\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg.Chat.TopicsFile = path

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	if got := a.Topics.Names(); len(got) != 2 || got[0] != "pregnancy" || got[1] != "general-health" {
		t.Fatalf("topics = %v", got)
	}
}

func TestNew_BadTopicsFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Chat.TopicsFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error")
	}
}

func TestPreviewPath(t *testing.T) {
	a := &App{Config: config.Config{APIBasePath: "/api/v1"}}
	if got := a.PreviewPath("abc"); got != "/api/v1/previews/abc" {
		t.Fatalf("got %q", got)
	}
}

func TestSweepInterval(t *testing.T) {
	cases := map[time.Duration]time.Duration{
		time.Second:     time.Second,
		8 * time.Second: 2 * time.Second,
		time.Hour:       5 * time.Minute,
	}
	for ttl, want := range cases {
		if got := sweepInterval(ttl); got != want {
			t.Errorf("sweepInterval(%v) = %v, want %v", ttl, got, want)
		}
	}
}

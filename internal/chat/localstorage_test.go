package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mokayaj857/vireya/internal/domain"
	"github.com/mokayaj857/vireya/internal/repo"
)

func TestStore_FreshLocalStorageIsNotALoadFailure(t *testing.T) {
	db, err := repo.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()), repo.Options{Silent: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	kv := repo.LocalStorage{DB: db, SessionID: "tab-fresh-01"}

	before := testutil.ToFloat64(persistFailures.WithLabelValues("load"))
	s := newTestStore(t, NewJSONPort(kv), Options{})
	if got := testutil.ToFloat64(persistFailures.WithLabelValues("load")) - before; got != 0 {
		t.Fatalf("load failures counted: %v", got)
	}
	if msgs := s.Messages(); len(msgs) != 1 || msgs[0].ID != domain.WelcomeMessageID {
		t.Fatalf("messages = %+v", msgs)
	}

	// a stored log still round-trips through the same storage
	if _, err := s.Append(context.Background(), domain.ChatMessage{Text: "hello", Sender: domain.SenderUser}); err != nil {
		t.Fatalf("append: %v", err)
	}
	again := newTestStore(t, NewJSONPort(kv), Options{})
	if n := len(again.Messages()); n != 2 {
		t.Fatalf("reloaded %d messages", n)
	}
	if got := testutil.ToFloat64(persistFailures.WithLabelValues("load")) - before; got != 0 {
		t.Fatalf("load failures counted after reload: %v", got)
	}
}

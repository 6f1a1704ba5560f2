package repo

import (
	"context"
	"testing"
	"time"

	"github.com/mokayaj857/vireya/internal/domain"
)

func TestCreateAndListSubscriptions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	phone := "+254700000000"

	first := &domain.Subscription{
		SessionID:   "s1",
		PhoneNumber: &phone,
		Language:    "sw",
		Type:        domain.SubscriptionDaily,
		Topics:      []string{"contraception", "mental"},
		History: []domain.ChatMessage{
			{ID: "1", Text: "pill questions", Sender: domain.SenderUser, Timestamp: "2024-05-01T10:00:00Z"},
		},
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	}
	if err := CreateSubscription(ctx, db, first); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated id")
	}
	second := &domain.Subscription{SessionID: "s1", Language: "en", Type: domain.SubscriptionDaily}
	if err := CreateSubscription(ctx, db, second); err != nil {
		t.Fatalf("CreateSubscription 2: %v", err)
	}
	_ = CreateSubscription(ctx, db, &domain.Subscription{SessionID: "s2", Language: "fr", Type: domain.SubscriptionDaily})

	got, err := ListSubscriptions(ctx, db, "s1")
	if err != nil {
		t.Fatalf("ListSubscriptions: %v", err)
	}
	if len(got) != 2 || got[0].ID != second.ID || got[1].ID != first.ID {
		t.Fatalf("unexpected order/len: %+v", got)
	}
	old := got[1]
	if old.PhoneNumber == nil || *old.PhoneNumber != phone {
		t.Fatalf("phone not persisted: %+v", old.PhoneNumber)
	}
	if len(old.Topics) != 2 || old.Topics[1] != "mental" {
		t.Fatalf("topics not persisted: %v", old.Topics)
	}
	if len(old.History) != 1 || old.History[0].Text != "pill questions" {
		t.Fatalf("history not persisted: %v", old.History)
	}
}

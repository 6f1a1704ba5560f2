package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mokayaj857/vireya/internal/domain"
)

// CreateSubscription assigns an id and creation time when missing and
// inserts the row.
func CreateSubscription(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(sub).Error
}

// ListSubscriptions returns a session's subscriptions, newest first.
func ListSubscriptions(ctx context.Context, db *gorm.DB, sessionID string) ([]domain.Subscription, error) {
	var out []domain.Subscription
	err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

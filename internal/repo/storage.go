package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mokayaj857/vireya/internal/domain"
)

// ErrEmptyKey is returned when a storage key is blank.
var ErrEmptyKey = errors.New("storage key must not be empty")

// GetItem returns the value stored under key for a session. A missing key
// yields an error matching both ErrNotFound and domain.ErrNoItem.
func GetItem(ctx context.Context, db *gorm.DB, sessionID, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrEmptyKey
	}
	var item domain.StorageItem
	err := db.WithContext(ctx).
		Where("session_id = ? AND key = ?", sessionID, key).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %w", domain.ErrNoItem, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return item.Value, nil
}

// SetItem inserts or replaces the value stored under key for a session.
func SetItem(ctx context.Context, db *gorm.DB, sessionID, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	item := domain.StorageItem{SessionID: sessionID, Key: key, Value: value}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&item).Error
}

// RemoveItem deletes key for a session. Removing a missing key is not an error.
func RemoveItem(ctx context.Context, db *gorm.DB, sessionID, key string) error {
	return db.WithContext(ctx).
		Where("session_id = ? AND key = ?", sessionID, key).
		Delete(&domain.StorageItem{}).Error
}

// ListKeys returns the keys held by a session in lexical order.
func ListKeys(ctx context.Context, db *gorm.DB, sessionID string) ([]string, error) {
	var keys []string
	err := db.WithContext(ctx).
		Model(&domain.StorageItem{}).
		Where("session_id = ?", sessionID).
		Order("key ASC").
		Pluck("key", &keys).Error
	return keys, err
}

// LocalStorage binds the storage functions to one client session, giving the
// getItem/setItem surface the chat store persists through.
type LocalStorage struct {
	DB        *gorm.DB
	SessionID string
}

// GetItem implements chat.KeyValue.
func (s LocalStorage) GetItem(ctx context.Context, key string) (string, error) {
	return GetItem(ctx, s.DB, s.SessionID, key)
}

// SetItem implements chat.KeyValue.
func (s LocalStorage) SetItem(ctx context.Context, key, value string) error {
	return SetItem(ctx, s.DB, s.SessionID, key, value)
}

// RemoveItem deletes key from this session's storage.
func (s LocalStorage) RemoveItem(ctx context.Context, key string) error {
	return RemoveItem(ctx, s.DB, s.SessionID, key)
}

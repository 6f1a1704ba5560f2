package domain

import (
	"errors"
	"time"
)

// ErrNoItem reports a key that holds no value.
var ErrNoItem = errors.New("storage item not found")

// StorageItem is one key/value entry of a client session's local storage.
// The pair (session_id, key) is unique; values are opaque strings.
type StorageItem struct {
	SessionID string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Key       string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Value     string    `gorm:"type:TEXT NOT NULL"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index"`
}

// TableName implements the GORM tabler interface.
func (StorageItem) TableName() string { return "local_storage" }

package domain

import "time"

// SubscriptionDaily is the only subscription type offered today.
const SubscriptionDaily = "daily_recommendations"

// Subscription records an opt-in to personalised health recommendations,
// together with the conversation context it was created from.
type Subscription struct {
	ID          string        `gorm:"type:char(36);primaryKey" json:"id"`
	SessionID   string        `gorm:"type:TEXT NOT NULL;index" json:"session_id"`
	PhoneNumber *string       `gorm:"type:TEXT" json:"phone_number,omitempty"`
	Language    string        `gorm:"type:varchar(8);not null" json:"language"`
	Type        string        `gorm:"type:varchar(32);not null" json:"subscription_type"`
	Topics      []string      `gorm:"serializer:json;type:TEXT" json:"topics"`
	History     []ChatMessage `gorm:"serializer:json;type:TEXT" json:"search_history"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

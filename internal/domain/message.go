// Package domain defines the core types shared by the chat, storage and
// transport layers. Persistent models are mapped by GORM; ChatMessage is the
// JSON shape kept in local storage and sent to browsers.
package domain

import (
	"strings"
	"time"
)

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Valid reports whether s is one of the known senders.
func (s Sender) Valid() bool { return s == SenderUser || s == SenderAI }

// WelcomeMessageID is the id of the message seeded into an empty log.
const WelcomeMessageID = "welcome"

// WelcomeText greets the user on first visit.
const WelcomeText = "👋 Hi — I'm your AI health assistant. Ask me anything."

// TimestampLayout is the wire and storage layout of ChatMessage.Timestamp.
const TimestampLayout = time.RFC3339Nano

// ChatMessage is one entry of the append-only chat log.
type ChatMessage struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Sender    Sender `json:"sender"`
	Timestamp string `json:"timestamp"`
}

// Time parses the message timestamp. Logs written by older clients may use
// millisecond precision; RFC 3339 covers both.
func (m ChatMessage) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, strings.TrimSpace(m.Timestamp))
}

// FormatTimestamp renders t in the layout used for ChatMessage.Timestamp.
func FormatTimestamp(t time.Time) string { return t.UTC().Format(TimestampLayout) }

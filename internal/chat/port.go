package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/mokayaj857/vireya/internal/domain"
)

// Local storage keys.
const (
	MessagesKey = "vh_messages"
	SidebarKey  = "vh_sidebar_open"
)

// ErrNoLog is returned by a Port that holds no saved log.
var ErrNoLog = errors.New("no saved chat log")

// Port persists the whole chat log. Implementations may fail; the store
// treats load failures as "nothing saved" and ignores save failures.
type Port interface {
	Load(ctx context.Context) ([]domain.ChatMessage, error)
	Save(ctx context.Context, msgs []domain.ChatMessage) error
}

// KeyValue is the local-storage surface a JSONPort writes through. GetItem
// reports a missing key with an error matching domain.ErrNoItem.
type KeyValue interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
}

// JSONPort stores the log as one JSON array under Key.
type JSONPort struct {
	KV  KeyValue
	Key string
}

// NewJSONPort returns a port writing under MessagesKey.
func NewJSONPort(kv KeyValue) JSONPort { return JSONPort{KV: kv, Key: MessagesKey} }

// Load implements Port. A value that is not a JSON array of messages is
// reported as an error so the caller can fall back to a fresh log.
func (p JSONPort) Load(ctx context.Context) ([]domain.ChatMessage, error) {
	raw, err := p.KV.GetItem(ctx, p.key())
	if errors.Is(err, domain.ErrNoItem) {
		return nil, ErrNoLog
	}
	if err != nil {
		return nil, err
	}
	var msgs []domain.ChatMessage
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, err
	}
	if msgs == nil {
		return nil, ErrNoLog
	}
	return msgs, nil
}

// Save implements Port.
func (p JSONPort) Save(ctx context.Context, msgs []domain.ChatMessage) error {
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	b, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	return p.KV.SetItem(ctx, p.key(), string(b))
}

func (p JSONPort) key() string {
	if p.Key == "" {
		return MessagesKey
	}
	return p.Key
}

// MemoryPort keeps the log in memory. Set LoadErr or SaveErr to simulate a
// broken storage backend.
type MemoryPort struct {
	mu      sync.Mutex
	msgs    []domain.ChatMessage
	saved   bool
	saves   int
	LoadErr error
	SaveErr error
}

// NewMemoryPort returns a port preloaded with msgs; nil means nothing saved.
func NewMemoryPort(msgs []domain.ChatMessage) *MemoryPort {
	p := &MemoryPort{}
	if msgs != nil {
		p.msgs = append([]domain.ChatMessage(nil), msgs...)
		p.saved = true
	}
	return p
}

// Load implements Port.
func (p *MemoryPort) Load(context.Context) ([]domain.ChatMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.LoadErr != nil {
		return nil, p.LoadErr
	}
	if !p.saved {
		return nil, ErrNoLog
	}
	return append([]domain.ChatMessage(nil), p.msgs...), nil
}

// Save implements Port.
func (p *MemoryPort) Save(_ context.Context, msgs []domain.ChatMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	if p.SaveErr != nil {
		return p.SaveErr
	}
	p.msgs = append([]domain.ChatMessage(nil), msgs...)
	p.saved = true
	return nil
}

// Saved returns a copy of the last saved log.
func (p *MemoryPort) Saved() []domain.ChatMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ChatMessage(nil), p.msgs...)
}

// Saves counts Save calls, failed ones included.
func (p *MemoryPort) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

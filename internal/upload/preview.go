package upload

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Preview is an in-memory copy of a selected image, served back to the
// browser under an unguessable token until revoked.
type Preview struct {
	Token       string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// PreviewRegistry creates and revokes previews.
type PreviewRegistry interface {
	Create(f File, contentType string) string
	Revoke(token string) bool
}

// PreviewStore is the process-wide PreviewRegistry.
type PreviewStore struct {
	mu      sync.RWMutex
	items   map[string]Preview
	created int
	revoked int
}

// NewPreviewStore returns an empty store.
func NewPreviewStore() *PreviewStore {
	return &PreviewStore{items: map[string]Preview{}}
}

// Create registers a preview of f and returns its token.
func (p *PreviewStore) Create(f File, contentType string) string {
	tok := uuid.NewString()
	p.mu.Lock()
	p.items[tok] = Preview{Token: tok, ContentType: contentType, Data: f.Data, CreatedAt: time.Now().UTC()}
	p.created++
	p.mu.Unlock()
	previewsLive.Inc()
	return tok
}

// Revoke releases a preview. It reports false if the token was unknown or
// already revoked.
func (p *PreviewStore) Revoke(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.items[token]; !ok {
		return false
	}
	delete(p.items, token)
	p.revoked++
	previewsLive.Dec()
	return true
}

// Open returns a live preview.
func (p *PreviewStore) Open(token string) (Preview, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pv, ok := p.items[token]
	return pv, ok
}

// Stats reports how many previews were created, revoked and are still live.
func (p *PreviewStore) Stats() (created, revoked, live int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.created, p.revoked, len(p.items)
}

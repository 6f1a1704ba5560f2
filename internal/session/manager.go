// Package session owns the per-tab state of the presentation layer. Each
// client session id maps to a Workspace holding one feature shell, one chat
// store and one upload session. Idle workspaces are evicted and closed, so
// late continuations of an evicted session never touch live state.
package session

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mokayaj857/vireya/internal/chat"
	"github.com/mokayaj857/vireya/internal/shell"
	"github.com/mokayaj857/vireya/internal/upload"
)

// ErrInvalidID is returned for session ids that are not 8-64 characters of
// letters, digits, '-' or '_'.
var ErrInvalidID = errors.New("invalid session id")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

var activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "vireya_sessions_active",
	Help: "Client sessions currently held in memory.",
})

func init() { prometheus.MustRegister(activeSessions) }

// Workspace is the state of one client session.
type Workspace struct {
	ID      string
	Shell   *shell.Shell
	Chat    *chat.Store
	Scan    *upload.Session
	Storage chat.KeyValue

	lastSeen time.Time
	cleanup  []func()
}

// OnClose registers fn to run when the workspace is evicted or the manager
// shuts down.
func (w *Workspace) OnClose(fn func()) { w.cleanup = append(w.cleanup, fn) }

func (w *Workspace) close() {
	if w.Chat != nil {
		w.Chat.Close()
	}
	if w.Scan != nil {
		w.Scan.Close()
	}
	for _, fn := range w.cleanup {
		fn()
	}
}

// Builder assembles a fresh workspace for id. The manager initializes its
// chat store.
type Builder func(id string) *Workspace

// Manager hands out workspaces by id.
type Manager struct {
	build Builder
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	items     map[string]*Workspace
	lastSweep time.Time
	closed    bool
}

// NewManager returns a manager evicting workspaces idle longer than ttl.
func NewManager(build Builder, ttl time.Duration) *Manager {
	return &Manager{build: build, ttl: ttl, now: time.Now, items: map[string]*Workspace{}}
}

// ValidID reports whether id is an acceptable session id.
func ValidID(id string) bool { return idPattern.MatchString(id) }

// Get returns the workspace for id, creating and initializing it on first
// use. Each call counts as activity.
func (m *Manager) Get(ctx context.Context, id string) (*Workspace, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, errors.New("session manager closed")
	}
	now := m.now()
	evicted := m.sweepLocked(now, false)
	w, ok := m.items[id]
	if ok {
		w.lastSeen = now
		m.mu.Unlock()
		closeAll(evicted)
		return w, nil
	}
	m.mu.Unlock()
	closeAll(evicted)

	// build outside the lock: Initialize reads storage
	fresh := m.build(id)
	if fresh.Chat != nil {
		fresh.Chat.Initialize(ctx)
	}

	m.mu.Lock()
	if w, ok := m.items[id]; ok {
		// lost a race with another request for the same id
		w.lastSeen = now
		m.mu.Unlock()
		fresh.close()
		return w, nil
	}
	fresh.ID = id
	fresh.lastSeen = now
	m.items[id] = fresh
	activeSessions.Set(float64(len(m.items)))
	m.mu.Unlock()
	return fresh, nil
}

// Len returns the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Sweep evicts idle workspaces now and returns how many were closed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	evicted := m.sweepLocked(m.now(), true)
	m.mu.Unlock()
	closeAll(evicted)
	return len(evicted)
}

// sweepLocked removes expired workspaces. Unless forced it runs at most
// once per ttl/2. Caller holds m.mu and must close the result after
// unlocking.
func (m *Manager) sweepLocked(now time.Time, force bool) []*Workspace {
	if !force && now.Sub(m.lastSweep) < m.ttl/2 {
		return nil
	}
	m.lastSweep = now
	var out []*Workspace
	for id, w := range m.items {
		if now.Sub(w.lastSeen) > m.ttl {
			delete(m.items, id)
			out = append(out, w)
		}
	}
	if len(out) > 0 {
		activeSessions.Set(float64(len(m.items)))
	}
	return out
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

// Close evicts every workspace. Later Get calls fail.
func (m *Manager) Close() {
	m.mu.Lock()
	all := make([]*Workspace, 0, len(m.items))
	for _, w := range m.items {
		all = append(all, w)
	}
	m.items = map[string]*Workspace{}
	m.closed = true
	activeSessions.Set(0)
	m.mu.Unlock()
	closeAll(all)
}

func closeAll(ws []*Workspace) {
	for _, w := range ws {
		w.close()
	}
}

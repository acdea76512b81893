package session

import (
	"sync"
	"time"

	"github.com/nebula-retail/storefront/internal/cart"
	"github.com/nebula-retail/storefront/internal/obs"
)

type entry struct {
	store     *cart.Store
	expiresAt time.Time
}

// Manager owns the session id to cart store mapping. Exactly one cart store
// exists per session; it is created empty on first touch and discarded when
// the session expires. Nothing is persisted — a sweep simply drops expired
// entries.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

// NewManager builds a manager whose sessions live for ttl after their last
// touch. A non-positive ttl falls back to 24 hours.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Cart returns the session's cart store, creating an empty one for a new or
// expired session. Every call renews the session TTL.
func (m *Manager) Cart(sessionID string) *cart.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	e, ok := m.sessions[sessionID]
	if !ok || !e.expiresAt.After(now) {
		e = &entry{store: cart.New()}
		m.sessions[sessionID] = e
		m.updateGaugeLocked()
	}
	e.expiresAt = now.Add(m.ttl)
	return e.store
}

// Sweep drops expired sessions and reports how many were evicted.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	evicted := 0
	for id, e := range m.sessions {
		if !e.expiresAt.After(now) {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.updateGaugeLocked()
	}
	return evicted
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SetNow overrides the clock. Intended for tests.
func (m *Manager) SetNow(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if now != nil {
		m.now = now
	}
}

func (m *Manager) updateGaugeLocked() {
	if obs.ActiveSessions != nil {
		obs.ActiveSessions.Set(float64(len(m.sessions)))
	}
}

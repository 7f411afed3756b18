package cart

import (
	"context"
	"sync"

	"github.com/Divy2095/Foodie/internal/kvstore"
)

// Session is one user's live cart bound to its storage mirror.
type Session struct {
	Store *Store
	Sync  *Synchronizer
}

// Save persists the current entries through the synchronizer. Every
// mutation goes through here so storage never lags the store.
func (s *Session) Save(ctx context.Context) error {
	return s.Sync.Save(ctx, s.Store.Snapshot())
}

// Manager hands out one Session per user, restoring saved state from
// the storage scopes on first touch.
type Manager struct {
	mu       sync.Mutex
	durable  kvstore.Store
	session  kvstore.Store
	sessions map[string]*Session
}

func NewManager(durable, session kvstore.Store) *Manager {
	return &Manager{
		durable:  durable,
		session:  session,
		sessions: make(map[string]*Session),
	}
}

// Session returns the user's cart session, loading it from storage the
// first time the user is seen by this process.
func (m *Manager) Session(ctx context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	sy := NewSynchronizer(m.durable, m.session, userID)
	entries, err := sy.Load(ctx)
	if err != nil {
		return nil, err
	}
	st := NewStore()
	st.Restore(entries)

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}
	s := &Session{Store: st, Sync: sy}
	m.sessions[userID] = s
	return s, nil
}

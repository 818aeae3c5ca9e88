package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mediscript/instructions-api/interfaces"
)

// Manager tracks live sessions and their shared transient store.
type Manager struct {
	mu          sync.RWMutex
	store       *Store
	vocab       interfaces.VocabularyLookup
	defaultLang string
	sessions    map[uuid.UUID]*Session
}

// NewManager creates a manager backed by the given store.
func NewManager(store *Store, vocab interfaces.VocabularyLookup, defaultLang string) *Manager {
	return &Manager{
		store:       store,
		vocab:       vocab,
		defaultLang: defaultLang,
		sessions:    make(map[uuid.UUID]*Session),
	}
}

// Create starts a new session with one default tab.
func (m *Manager) Create() *Session {
	s := newSession(m.store, m.vocab, m.defaultLang)
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

// Get returns a live session by id.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Restore rebuilds a session's tabs from its stored snapshot, as after
// a page reload. The session id must still be live.
func (m *Manager) Restore(id uuid.UUID) (*Session, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	s.restore()
	return s, nil
}

// Delete ends a session and drops its stored state.
func (m *Manager) Delete(id uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		m.store.Delete(s.id.String())
	}
}

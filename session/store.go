// Package session manages multi-prescription editing sessions: the
// ordered medication tabs, their controllers, and the cross-page
// transient storage they are snapshotted into on every change.
package session

import (
	"encoding/json"
	"sync"
)

// Fixed storage keys.
const (
	KeyMedicationTabs = "medicationTabs"
	KeyActivePatient  = "activePatient"
)

// Store is the transient storage collaborator: opaque read/write of
// serialized values under fixed string keys, scoped per session. It
// survives page navigation within a session but not a process restart.
type Store struct {
	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: make(map[string]map[string]json.RawMessage)}
}

// Put writes a value under the session's key, replacing any previous
// value.
func (s *Store) Put(sessionID, key string, value json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.data[sessionID]
	if !ok {
		bucket = make(map[string]json.RawMessage)
		s.data[sessionID] = bucket
	}
	// Copy so later mutations of the caller's buffer cannot leak in.
	bucket[key] = append(json.RawMessage(nil), value...)
}

// Get reads a value; the second return reports presence.
func (s *Store) Get(sessionID, key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.data[sessionID]
	if !ok {
		return nil, false
	}
	value, ok := bucket[key]
	if !ok {
		return nil, false
	}
	return append(json.RawMessage(nil), value...), true
}

// Delete drops everything stored for a session.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
}

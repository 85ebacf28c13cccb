package memory

import (
	"sync"

	"ieee-quiz/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Store
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Store),
	}
}

func (s *SessionStore) GetOrCreate(sessionID string, reducer app.Reducer) *app.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if store, ok := s.sessions[sessionID]; ok {
		return store
	}
	store := app.NewStore(sessionID, reducer)
	s.sessions[sessionID] = store
	return store
}

func (s *SessionStore) Get(sessionID string) (*app.Store, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	store, ok := s.sessions[sessionID]
	return store, ok
}

// Touch is a no-op: in-memory sessions never expire.
func (s *SessionStore) Touch(string) {}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

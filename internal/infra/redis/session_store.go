package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"ieee-quiz/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Quiz state stays in the local map; Redis only carries a liveness key per
// session with a TTL that is refreshed on every event, so operators can see
// which sessions are being played.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Store
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(sessionID), time.Now().UTC().Format(time.RFC3339), s.ttl).Err()
	return store
}

func (s *SessionStore) Get(sessionID string) (*app.Store, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	store, ok := s.sessions[sessionID]
	return store, ok
}

func (s *SessionStore) Touch(sessionID string) {
	if s.ttl <= 0 {
		return
	}
	_ = s.client.Expire(context.Background(), s.key(sessionID), s.ttl).Err()
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return
	}
	delete(s.sessions, sessionID)
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// LiveSessions counts the liveness keys currently present in Redis,
// including ones written by other processes.
func (s *SessionStore) LiveSessions(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, err
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

const keyPrefix = "quiz:session:"

func (s *SessionStore) key(sessionID string) string {
	return keyPrefix + sessionID
}

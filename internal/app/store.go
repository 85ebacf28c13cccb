package app

import (
	"sync"

	"ieee-quiz/internal/domain"
)

// Store owns the state of one quiz session. Dispatch calls are serialized so
// no two reductions overlap.
type Store struct {
	id      string
	reducer Reducer

	mu          sync.RWMutex
	state       domain.State
	subscribers map[chan domain.State]struct{}
}

// NewStore creates a store in the reducer's initial state.
func NewStore(id string, reducer Reducer) *Store {
	return &Store{
		id:          id,
		reducer:     reducer,
		state:       reducer.InitialState(),
		subscribers: make(map[chan domain.State]struct{}),
	}
}

// ID returns the session id.
func (s *Store) ID() string {
	return s.id
}

// State returns the current snapshot.
func (s *Store) State() domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch reduces ev into the current state, notifies subscribers and
// returns the new state.
func (s *Store) Dispatch(ev domain.Event) domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.reducer.Reduce(s.state, ev)
	s.broadcastLocked()
	return s.state
}

// Subscribe returns a channel that receives the current state followed by
// every subsequent state. The caller must invoke cancel to release it.
func (s *Store) Subscribe() (<-chan domain.State, func()) {
	ch := make(chan domain.State, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.state
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close releases every subscriber.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Store) broadcastLocked() {
	for ch := range s.subscribers {
		select {
		case ch <- s.state:
		default:
			// A slow subscriber loses the oldest snapshot instead of blocking dispatch.
			select {
			case <-ch:
			default:
			}
			ch <- s.state
		}
	}
}

package directory

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultStateCapacity = 10000
	defaultStateIdleTTL  = 12 * time.Hour
)

// Store keeps one State per browser session. Tokens are not owned here: they
// live in the session cookie and are copied into the State on each request,
// so an evicted entry only loses the cache and star selection.
//
// Entries expire idleTTL after their last Get. When the store is full the
// least recently used entry is evicted.
type Store struct {
	mu     sync.Mutex
	states *expirable.LRU[string, *State]
}

// NewStore creates a Store holding at most capacity states. Zero values pick
// the defaults.
func NewStore(capacity int, idleTTL time.Duration) *Store {
	if capacity <= 0 {
		capacity = defaultStateCapacity
	}
	if idleTTL <= 0 {
		idleTTL = defaultStateIdleTTL
	}
	return &Store{states: expirable.NewLRU[string, *State](capacity, nil, idleTTL)}
}

// Get returns the state for sessionID, creating it on first use, and restarts
// its idle timer.
func (s *Store) Get(sessionID string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states.Get(sessionID)
	if !ok {
		st = &State{}
	}
	s.states.Add(sessionID, st)
	return st
}

// Lookup returns the state for sessionID without creating one.
func (s *Store) Lookup(sessionID string) (*State, bool) {
	return s.states.Get(sessionID)
}

// Len returns the number of tracked sessions.
func (s *Store) Len() int {
	return s.states.Len()
}

package directory

import (
	"sync"

	"finitefield.org/toolfinder/internal/catalog"
)

// MaxRating is the number of positions in the star widget.
const MaxRating = 5

// State is the per-visitor application state: the bearer token, the star
// selection of the open review form and the admin tool cache. Requests of one
// visitor may run concurrently, so every access goes through mu.
type State struct {
	mu             sync.Mutex
	token          string
	selectedRating int
	tools          []catalog.Tool
}

// Token returns the current bearer token, empty in guest mode.
func (s *State) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken replaces the in-memory token.
func (s *State) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// IsAdmin reports whether a token is held.
func (s *State) IsAdmin() bool {
	return s.Token() != ""
}

// SelectedRating returns the star selection of the review form.
func (s *State) SelectedRating() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedRating
}

func (s *State) setRating(n int) int {
	if n < 0 {
		n = 0
	}
	if n > MaxRating {
		n = MaxRating
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedRating = n
	return n
}

// replaceTools swaps the cache for a fresh snapshot.
func (s *State) replaceTools(tools []catalog.Tool) {
	snapshot := make([]catalog.Tool, len(tools))
	copy(snapshot, tools)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools = snapshot
}

// CachedTools returns a copy of the admin tool cache.
func (s *State) CachedTools() []catalog.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Tool, len(s.tools))
	copy(out, s.tools)
	return out
}

func (s *State) lookupTool(id catalog.ID) (catalog.Tool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tool := range s.tools {
		if tool.ID == id {
			return tool, true
		}
	}
	return catalog.Tool{}, false
}

// Stars returns which of the star positions are lit for rating: position i is
// active when i < rating.
func Stars(rating int) [MaxRating]bool {
	var stars [MaxRating]bool
	for i := range stars {
		stars[i] = i < rating
	}
	return stars
}

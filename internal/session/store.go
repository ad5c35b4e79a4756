package session

import (
	"sync"

	"github.com/jcallaghan/sessionlink/internal/model"
)

// Store holds the process-wide authenticated-user state. Only the login
// orchestrator writes it, on a successful exchange; concurrent success
// paths may both commit and the last write wins.
type Store struct {
	mu   sync.RWMutex
	user *model.User
}

// New creates an empty session store
func New() *Store {
	return &Store{}
}

// SetUser commits the authenticated user
func (s *Store) SetUser(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// User returns the currently authenticated user, or nil
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether a user has been committed
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Clear resets the store to the unauthenticated state
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

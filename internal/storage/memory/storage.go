package memory

import (
	"context"
	"sync"

	"github.com/jcallaghan/sessionlink/internal/model"
	"github.com/jcallaghan/sessionlink/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	lastEmail    string
	hasLastEmail bool
	hostTokens   map[string]string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		hostTokens: make(map[string]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Last-used email operations

func (s *Storage) SaveLastEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastEmail = email
	s.hasLastEmail = true
	return nil
}

func (s *Storage) GetLastEmail(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasLastEmail {
		return "", model.ErrEmailNotFound
	}
	return s.lastEmail, nil
}

// Host token operations

func (s *Storage) SaveHostToken(ctx context.Context, host, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hostTokens[host] = token
	return nil
}

func (s *Storage) GetHostToken(ctx context.Context, host string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.hostTokens[host]
	if !ok {
		return "", model.ErrHostTokenNotFound
	}
	return token, nil
}

func (s *Storage) DeleteHostToken(ctx context.Context, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hostTokens, host)
	return nil
}

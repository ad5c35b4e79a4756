package credentials

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jcallaghan/sessionlink/internal/model"
	"github.com/jcallaghan/sessionlink/internal/storage"
)

// Store holds the in-progress email/password for a login attempt.
// The email is written through to persistent storage on every change so
// it survives restarts; the password only ever lives in memory.
// No validation happens here, that is the orchestrator's job.
type Store struct {
	storage storage.Store
	logger  *slog.Logger

	mu       sync.Mutex
	email    string
	loaded   bool
	password string
}

// New creates a credential store backed by the given storage
func New(store storage.Store, logger *slog.Logger) *Store {
	return &Store{
		storage: store,
		logger:  logger.With(slog.String("component", "credentials")),
	}
}

// Email returns the in-progress email, falling back to the last
// persisted value (or empty when none was ever saved)
func (s *Store) Email(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.loaded = true
		email, err := s.storage.GetLastEmail(ctx)
		switch {
		case err == nil:
			s.email = email
		case errors.Is(err, model.ErrEmailNotFound):
			// First run, nothing persisted yet
		default:
			s.logger.Warn("could not load persisted email", slog.String("error", err.Error()))
		}
	}

	return s.email
}

// SetEmail updates the email and persists it immediately. The new value
// is visible to subsequent reads even if persistence fails.
func (s *Store) SetEmail(ctx context.Context, email string) {
	s.mu.Lock()
	s.email = email
	s.loaded = true
	s.mu.Unlock()

	if err := s.storage.SaveLastEmail(ctx, email); err != nil {
		s.logger.Warn("could not persist email", slog.String("error", err.Error()))
	}
}

// SetPassword updates the in-memory password. Never persisted.
func (s *Store) SetPassword(password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.password = password
}

// Password returns the in-progress password
func (s *Store) Password() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.password
}

// ClearPassword wipes the in-memory password
func (s *Store) ClearPassword() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.password = ""
}

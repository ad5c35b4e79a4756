package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jcallaghan/sessionlink/internal/model"
	"github.com/jcallaghan/sessionlink/internal/storage"
)

// Storage persists credentials to a JSON file in the user's data dir.
// This is the default backend for the CLI, where values must survive
// process restarts without any external service.
type Storage struct {
	path string

	mu sync.Mutex
}

type fileData struct {
	LastEmail  *string           `json:"last_email,omitempty"`
	HostTokens map[string]string `json:"host_tokens,omitempty"`
}

// New creates a file storage backed by the given path. The parent
// directory is created on first write.
func New(path string) *Storage {
	return &Storage{path: path}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Last-used email operations

func (s *Storage) SaveLastEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(func(d *fileData) {
		d.LastEmail = &email
	})
}

func (s *Storage) GetLastEmail(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return "", err
	}
	if data.LastEmail == nil {
		return "", model.ErrEmailNotFound
	}
	return *data.LastEmail, nil
}

// Host token operations

func (s *Storage) SaveHostToken(ctx context.Context, host, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(func(d *fileData) {
		if d.HostTokens == nil {
			d.HostTokens = make(map[string]string)
		}
		d.HostTokens[host] = token
	})
}

func (s *Storage) GetHostToken(ctx context.Context, host string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return "", err
	}
	token, ok := data.HostTokens[host]
	if !ok {
		return "", model.ErrHostTokenNotFound
	}
	return token, nil
}

func (s *Storage) DeleteHostToken(ctx context.Context, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(func(d *fileData) {
		delete(d.HostTokens, host)
	})
}

// load reads the data file; a missing file reads as empty data
func (s *Storage) load() (*fileData, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileData{}, nil
		}
		return nil, err
	}

	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// update applies a mutation and writes the file back atomically enough
// for a single-user credential file
func (s *Storage) update(fn func(*fileData)) error {
	data, err := s.load()
	if err != nil {
		return err
	}

	fn(data)

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(s.path, raw, 0600)
}

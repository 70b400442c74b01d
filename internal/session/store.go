package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists the bearer token in a single file, the client-side analogue
// of the browser's localStorage key. The session manager is the only writer;
// the API client reads through the TokenSource interface.
type Store struct {
	mu    sync.RWMutex
	path  string
	token string
}

// NewStore loads any previously persisted token. A missing file just means
// no session.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	s.token = strings.TrimSpace(string(raw))
	return s, nil
}

// Token returns the current token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Save persists the token durably before exposing it to readers.
func (s *Store) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	s.token = token
	return nil
}

// Clear forgets the token in memory and on disk.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}

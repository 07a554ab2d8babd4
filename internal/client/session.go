package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// sessionFilePermissions is the permission mode for the session file.
// The file holds a raw bearer token, so it is owner-only.
const sessionFilePermissions = 0600

// sessionFile is the on-disk shape of a persisted session.
type sessionFile struct {
	Token string `json:"token"`
}

// Session is a file-persisted store for a single bearer token.
//
// All methods are safe for concurrent use.
type Session struct {
	mu    sync.Mutex
	path  string
	token string
}

// NewSession opens a session backed by the given file path. An existing
// file is loaded; a missing one starts the session logged out.
func NewSession(path string) (*Session, error) {
	s := &Session{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	s.token = f.Token

	return s, nil
}

// Token returns the cached raw token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken stores a token and persists it to disk.
func (s *Session) SetToken(raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(sessionFile{Token: raw})
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating session directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, sessionFilePermissions); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}

	s.token = raw
	return nil
}

// Clear forgets the token and removes the session file. Clearing an
// already-empty session is a no-op.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a token is cached. It is a pure
// presence check; the token may already be revoked server-side.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

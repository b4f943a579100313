package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Credentials are what the CLI keeps between invocations.
type Credentials struct {
	Session string    `json:"session,omitempty"`
	IDToken string    `json:"id_token,omitempty"`
	Expiry  time.Time `json:"expiry,omitempty"`
}

// Empty reports whether nothing is stored.
func (c *Credentials) Empty() bool {
	return c.Session == "" && c.IDToken == ""
}

// TokenExpired reports whether the ID token is past its expiry.
func (c *Credentials) TokenExpired(now time.Time) bool {
	return c.IDToken != "" && !c.Expiry.IsZero() && now.After(c.Expiry)
}

// TokenStore persists Credentials as a JSON file readable only by the user.
type TokenStore struct {
	path string
}

// NewTokenStore uses path, or the default location when path is empty.
func NewTokenStore(path string) (*TokenStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "timetrack", "credentials.json")
	}
	return &TokenStore{path: path}, nil
}

func (s *TokenStore) Path() string {
	return s.path
}

// Load returns the stored credentials. A missing file yields empty ones.
func (s *TokenStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Credentials{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return &creds, nil
}

func (s *TokenStore) Save(creds *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(s.path), err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	return os.Rename(tmp, s.path)
}

// Clear removes the file. Clearing a missing file is not an error.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", s.path, err)
	}
	return nil
}

// Package session caches the signed-in session between CLI invocations.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"taskflow/internal/backend"
)

// ErrNoSession is returned when no cached session exists.
var ErrNoSession = errors.New("not signed in")

// Cache stores one session as a JSON file with user-only permissions.
type Cache struct {
	path string
}

// NewCache uses the given path, or the default location when empty.
func NewCache(path string) (*Cache, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "taskflow", "session.json")
	}
	return &Cache{path: path}, nil
}

func (c *Cache) Save(s *backend.Session) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (c *Cache) Load() (*backend.Session, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s backend.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.UserID == "" || s.AccessToken == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (c *Cache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Package flasher persists the dashboard banner message in a small JSON file.
package flasher

import (
	"encoding/json"
	"os"
	"sync"
)

// Message is the configurable dashboard banner.
type Message struct {
	Message string `json:"message"`
	Active  bool   `json:"active"`
}

var defaultMessage = Message{Message: "Welcome to HUC Dashboard", Active: true}

// Store reads and writes the banner config file. Concurrent handlers share
// one store, so file access is serialized.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the stored message, or the default when no file exists yet.
func (s *Store) Get() Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		return defaultMessage
	}
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return defaultMessage
	}
	return m
}

func (s *Store) Update(m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

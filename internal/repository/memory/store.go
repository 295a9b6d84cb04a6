package memory

import (
	"context"
	"sync"

	"github.com/arklim/dispatch-console-auth/internal/repository"
)

// Store is an in-memory key-value scope. It backs the tab-scoped storage in
// production (one instance per tab) and both scopes in deterministic tests.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore constructs an empty scope.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Get returns the value for key, or repository.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return value, nil
}

// Set stores the value under key, replacing any previous value.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Clear removes every key in the scope.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]string)
	return nil
}

// Len reports how many keys the scope currently holds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.values)
}

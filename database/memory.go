package database

import (
	"context"
	"sync"
	"time"

	"silicorex/models"
)

// MemoryLoginStore keeps logins in process memory. It backs local runs
// without DATABASE_URL and handler tests.
type MemoryLoginStore struct {
	mu     sync.RWMutex
	logins map[string]models.Login
}

// NewMemoryLoginStore returns an empty store.
func NewMemoryLoginStore() *MemoryLoginStore {
	return &MemoryLoginStore{logins: make(map[string]models.Login)}
}

// Find implements LoginStore.
func (s *MemoryLoginStore) Find(_ context.Context, username string) (*models.Login, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.logins[username]
	if !ok {
		return nil, ErrLoginNotFound
	}
	return &l, nil
}

// Create implements LoginStore.
func (s *MemoryLoginStore) Create(_ context.Context, login *models.Login) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logins[login.Username]; ok {
		return ErrLoginExists
	}
	if login.CreatedAt.IsZero() {
		login.CreatedAt = time.Now().UTC()
	}
	s.logins[login.Username] = *login
	return nil
}

// TouchLogin implements LoginStore.
func (s *MemoryLoginStore) TouchLogin(_ context.Context, username string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logins[username]
	if !ok {
		return ErrLoginNotFound
	}
	l.LastLoginAt = &at
	s.logins[username] = l
	return nil
}

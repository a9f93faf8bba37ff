package store

import (
	"context"
	"sync"
	"time"

	"tixgate/internal/domain/session/model"
)

type memoryStore struct {
	mutex   sync.RWMutex
	cred    model.Credential
	present bool
	ttl     time.Duration
	savedAt time.Time
}

// NewMemory builds an in-memory session store. Useful for tests and for
// terminals that must not persist credentials across restarts.
func NewMemory(cfg Config) Store {
	return &memoryStore{ttl: cfg.TTL}
}

func (s *memoryStore) Save(_ context.Context, cred model.Credential) error {
	now := time.Now()
	if cred.SavedAt.IsZero() {
		cred.SavedAt = now
	}

	s.mutex.Lock()
	s.cred = cred
	s.present = true
	s.savedAt = now
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) Load(_ context.Context) (model.Credential, bool, error) {
	s.mutex.RLock()
	cred, present, savedAt := s.cred, s.present, s.savedAt
	s.mutex.RUnlock()

	if !present {
		return model.Credential{}, false, nil
	}
	if s.ttl > 0 && time.Since(savedAt) > s.ttl {
		return model.Credential{}, false, nil
	}
	return cred, true, nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	s.mutex.Lock()
	s.cred = model.Credential{}
	s.present = false
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) Close(context.Context) error {
	return nil
}

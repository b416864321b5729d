package otp

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

type memoryEntry struct {
	code      string
	expiresAt time.Time
}

// InMemoryStore keeps codes in a map. Used in tests and when Redis is not
// configured.
type InMemoryStore struct {
	mu    sync.Mutex
	codes map[string]memoryEntry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{codes: make(map[string]memoryEntry)}
}

func (s *InMemoryStore) Save(_ context.Context, phone, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = memoryEntry{code: code, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *InMemoryStore) Consume(_ context.Context, phone, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.codes[phone]
	if !ok || time.Now().After(entry.expiresAt) {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(entry.code), []byte(code)) != 1 {
		return false, nil
	}
	delete(s.codes, phone)
	return true, nil
}

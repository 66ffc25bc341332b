package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

type memoryRecord struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is an in-memory implementation of the Store interface
type MemoryStore struct {
	records map[string]memoryRecord
	now     func() time.Time
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

var _ ports.Store = (*MemoryStore)(nil)

// Set stores value under key, expiring it after ttl when ttl is positive
func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := memoryRecord{value: value}
	if ttl > 0 {
		rec.expiresAt = s.now().Add(ttl)
	}
	s.records[key] = rec

	return nil
}

// Get returns the value for key
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	rec, exists := s.records[key]
	s.mu.RUnlock()

	if !exists {
		return "", core.ErrNotFound
	}

	if !rec.expiresAt.IsZero() && !s.now().Before(rec.expiresAt) {
		s.mu.Lock()
		// Only delete if the record hasn't been replaced meanwhile
		if current, ok := s.records[key]; ok && current.expiresAt.Equal(rec.expiresAt) {
			delete(s.records, key)
		}
		s.mu.Unlock()
		return "", core.ErrNotFound
	}

	return rec.value, nil
}

// Delete removes key
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// Len returns the number of stored records, expired or not
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

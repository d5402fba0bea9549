// Package idempotency de-duplicates client requests carrying an
// Idempotency-Key header.
package idempotency

import (
	"context"
	"sync"
	"time"
)

// Store records keys for a limited time. Acquire reports false when the key
// is already held.
type Store interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Memory is a process-local Store for single-instance deployments and tests.
type Memory struct {
	mu   sync.Mutex
	keys map[string]time.Time
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{keys: make(map[string]time.Time), now: time.Now}
}

func (m *Memory) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	if exp, ok := m.keys[key]; ok && now.Before(exp) {
		return false, nil
	}

	m.keys[key] = now.Add(ttl)

	// Expired keys are swept lazily.
	for k, exp := range m.keys {
		if !now.Before(exp) {
			delete(m.keys, k)
		}
	}

	return true, nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.keys, key)

	return nil
}

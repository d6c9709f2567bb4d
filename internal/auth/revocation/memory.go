package revocation

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Store. Expired entries are pruned on write.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	clock   Clock
}

type MemoryOption func(*Memory)

func WithMemoryClock(clock Clock) MemoryOption {
	return func(m *Memory) {
		if clock != nil {
			m.clock = clock
		}
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Put(_ context.Context, jti string, ttl time.Duration) error {
	if err := validate(jti, ttl); err != nil {
		return err
	}
	now := m.clock()
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, exp := range m.entries {
		if !now.Before(exp) {
			delete(m.entries, k)
		}
	}
	m.entries[jti] = now.Add(ttl)
	return nil
}

func (m *Memory) Contains(_ context.Context, jti string) (bool, error) {
	defer observe("memory", time.Now())
	m.mu.RLock()
	exp, ok := m.entries[jti]
	m.mu.RUnlock()
	return ok && m.clock().Before(exp), nil
}

// Len returns the number of entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

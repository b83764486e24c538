package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type entry struct {
	data     []byte
	expireAt time.Time
}

// Memory is an in-process store, used when no Redis is configured and in tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (m *Memory) expired(e entry) bool {
	return !e.expireAt.IsZero() && m.now().After(e.expireAt)
}

func (m *Memory) Get(ctx context.Context, key string, v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || m.expired(e) {
		return ErrNotFound
	}
	return json.Unmarshal(e.data, v)
}

func (m *Memory) Set(ctx context.Context, key string, v any, expireAt time.Time) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = entry{data: data, expireAt: expireAt}
	return nil
}

// SetTTL stores v; a zero ttl keeps the key without expiry.
func (m *Memory) SetTTL(ctx context.Context, key string, v any, ttl time.Duration) error {
	var expireAt time.Time
	if ttl > 0 {
		expireAt = m.now().Add(ttl)
	}
	return m.Set(ctx, key, v, expireAt)
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || m.expired(e) {
		return false, nil
	}
	return true, nil
}

// Len returns the number of stored keys, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// Memory is a process-local Cache used in dev and tests.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	Now   func() time.Time
}

// NewMemory constructs an empty Memory cache.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryEntry), Now: time.Now}
}

func (m *Memory) Get(ctx context.Context, key string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	entry, ok := m.items[key]
	if ok && !m.Now().Before(entry.expiresAt) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return ErrMiss
	}
	return json.Unmarshal(entry.payload, dst)
}

func (m *Memory) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memoryEntry{payload: payload, expiresAt: m.Now().Add(ttl)}
	return nil
}

var _ Cache = (*Memory)(nil)

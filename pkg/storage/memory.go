package storage

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process Store. Inject simulates a write from another
// instance and is what tests use to drive storage events.
type Memory struct {
	subscribers
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	if !ok || m.expired(entry) {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) SetWithExpiry(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) GetFresh(ctx context.Context, key string) (string, bool, error) {
	return m.Get(ctx, key)
}

// Inject writes key as if another instance had done it and notifies subscribers.
// An empty value with removed=true deletes the key.
func (m *Memory) Inject(key, value string, removed bool) {
	m.mu.Lock()
	old := m.entries[key].value
	if removed {
		delete(m.entries, key)
	} else {
		m.entries[key] = memoryEntry{value: value}
	}
	m.mu.Unlock()
	m.emit(Event{Key: key, OldValue: old, NewValue: value, Removed: removed})
}

func (m *Memory) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt)
}

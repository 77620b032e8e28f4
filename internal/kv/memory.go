// internal/kv/memory.go
//
// In-memory implementation of the kv.Store interface.
// Used in development and tests, or when durability is not required.
//
// Characteristics:
//   - Counters and sets live in plain maps keyed by the full KV key.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Implements Voter, so add-then-increment is atomic under the write lock.

package kv

import (
	"context"
	"sync"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex                   // guards counters and sets
	counters map[string]int64               // INCR/GET keys
	sets     map[string]map[string]struct{} // SADD/SISMEMBER keys
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		counters: make(map[string]int64),
		sets:     make(map[string]map[string]struct{}),
	}
}

// Incr bumps the counter at key and returns the new value.
func (m *memory) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	return m.counters[key], nil
}

// SAdd adds member to the set at key; true if it was not there before.
func (m *memory) SAdd(ctx context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saddLocked(key, member), nil
}

// GetInt returns the counter at key, 0 when missing.
func (m *memory) GetInt(ctx context.Context, key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[key], nil
}

// SIsMember reports whether member is in the set at key.
func (m *memory) SIsMember(ctx context.Context, key, member string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sets[key][member]
	return ok, nil
}

// AddAndIncr adds member to setKey and, only if newly added, bumps counterKey.
func (m *memory) AddAndIncr(ctx context.Context, setKey, member, counterKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saddLocked(setKey, member) {
		return false, nil
	}
	m.counters[counterKey]++
	return true, nil
}

func (m *memory) Close() error { return nil }

func (m *memory) saddLocked(key, member string) bool {
	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]struct{})
		m.sets[key] = set
	}
	if _, ok := set[member]; ok {
		return false
	}
	set[member] = struct{}{}
	return true
}

package kv

import (
	"context"
	"errors"
	"sync"
)

// ErrInjected is the error returned by Memory when a fault is injected.
var ErrInjected = errors.New("kv: injected fault")

// Memory is an in-process Store. It is the default fake in tests and can be
// selected with KV_BACKEND=memory for throwaway runs.
//
// FailGets and FailSets make every subsequent Get or Set fail with
// ErrInjected, which lets callers exercise degraded-storage paths.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte

	FailGets bool
	FailSets bool

	gets, sets int
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.FailGets {
		return nil, false, ErrInjected
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.FailSets {
		return ErrInjected
	}
	v := make([]byte, len(raw))
	copy(v, raw)
	m.data[key] = v
	return nil
}

// Raw returns a copy of the bytes stored under key without counting a read.
func (m *Memory) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

// Put stores raw bytes under key without counting a write. Tests use it to
// seed malformed values.
func (m *Memory) Put(key string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(raw))
	copy(v, raw)
	m.data[key] = v
}

// Counts reports how many Get and Set calls the store has served.
func (m *Memory) Counts() (gets, sets int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets, m.sets
}

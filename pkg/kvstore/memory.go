package kvstore

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-process Store used by tests and ephemeral tooling.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: map[string]json.RawMessage{}}
}

func (m *Memory) Get(_ context.Context, key string, dest any) error {
	m.mu.RLock()
	raw, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return ErrKeyNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (m *Memory) Set(_ context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = payload
	m.mu.Unlock()
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

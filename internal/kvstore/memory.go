package kvstore

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps values as encoded JSON so callers never share memory
// with what is stored, same as a remote backend.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (m *MemoryStore) ReadValue(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.values[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return decodeInto(key, raw, dst)
}

func (m *MemoryStore) ReadValues(_ context.Context, keys []string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		if raw, ok := m.values[key]; ok {
			out[key] = append(json.RawMessage(nil), raw...)
		}
	}
	return out, nil
}

func (m *MemoryStore) UpsertItems(_ context.Context, items []Item) error {
	encoded, err := encodeItems(items)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range items {
		if item.op() == OpDelete {
			delete(m.values, item.Key)
			continue
		}
		m.values[item.Key] = encoded[i]
	}
	return nil
}

// Keys lists what is stored, for debugging and tests.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}

package store

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-process KV with the same JSON round-trip semantics as
// SQLite. FailPut and FailGet inject errors.
type Memory struct {
	mu     sync.Mutex
	lockMu sync.Mutex
	data   map[string][]byte

	FailGet error
	FailPut error
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGet != nil {
		return false, m.FailGet
	}
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *Memory) Put(_ context.Context, key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut != nil {
		return m.FailPut
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *Memory) Lock(context.Context) (func(), error) {
	m.lockMu.Lock()
	return m.lockMu.Unlock, nil
}

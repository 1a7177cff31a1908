package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
)

// Memory is a map-backed Store used by tests and ephemeral shells
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an in-memory store populated with the default schema
func NewMemory() *Memory {
	return &Memory{data: Defaults()}
}

// Get returns a copy of the value stored under key
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return cloneBytes(v), nil
}

// Set replaces the value stored under key
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !sonic.Valid(value) {
		return fmt.Errorf("%s: %w", key, ErrInvalidValue)
	}
	m.mu.Lock()
	m.data[key] = cloneBytes(value)
	m.mu.Unlock()
	return nil
}

// Delete removes key, restoring its default if it has one
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if def, ok := Defaults()[key]; ok {
		m.data[key] = def
		return nil
	}
	delete(m.data, key)
	return nil
}

// Keys lists stored keys in sorted order
func (m *Memory) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

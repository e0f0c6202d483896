package services

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryCache is an in-memory implementation of Cache for testing.
// It stores values in a map and ignores expirations. Error hooks let
// tests simulate storage failures per operation.
type MemoryCache struct {
	mu     sync.Mutex
	values map[string]string

	// Optional error hooks. When set, the operation fails with the
	// returned error instead of touching the map.
	GetErrFunc func(key string) error
	SetErrFunc func(key string) error
}

// Ensure MemoryCache implements Cache interface
var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		values: make(map[string]string),
	}
}

func (m *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetErrFunc != nil {
		if err := m.SetErrFunc(key); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = fmt.Sprintf("%v", value)
	return nil
}

func (m *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetErrFunc != nil {
		if err := m.GetErrFunc(key); err != nil {
			return "", err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *MemoryCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *MemoryCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		if _, ok := m.values[key]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryCache) Close() error {
	return nil
}

func (m *MemoryCache) WaitForConnection(ctx context.Context) error {
	return nil
}

// Len returns the number of stored keys
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

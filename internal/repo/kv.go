// Package repo contains the durable key-value stores behind the daily pick.
// Each backend has its own file; all of them satisfy KV.
// No business logic lives here, only storage access.
package repo

import (
	"context"
	"sync"
)

// KV is a minimal string key-value store. Get reports false for a missing
// key; a missing key is never an error.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Closer is implemented by backends holding a connection or file handle.
type Closer interface {
	Close() error
}

// MemoryKV is a process-local KV. Values do not survive a restart.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV constructs an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
